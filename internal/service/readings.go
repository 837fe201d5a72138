// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"math"
	"time"

	"github.com/sensorhub/search-proxy/internal/domain/model"
)

type station struct {
	name     string
	lat, lon float64
	// offset shifts the daily temperature curve
	offset float64
}

var stations = []station{
	{name: "berlin", lat: 52.52, lon: 13.40, offset: 0},
	{name: "hamburg", lat: 53.55, lon: 9.99, offset: -1.5},
	{name: "munich", lat: 48.14, lon: 11.58, offset: 1},
	{name: "cologne", lat: 50.94, lon: 6.96, offset: 0.5},
}

// GenerateReadings returns count synthetic readings one minute apart, the
// newest at end truncated to the minute. Stations take turns, and the same
// arguments always produce the same readings so reseeding overwrites.
func GenerateReadings(count int, end time.Time) []model.SensorReading {
	end = end.UTC().Truncate(time.Minute)

	readings := make([]model.SensorReading, 0, count)
	for i := 0; i < count; i++ {
		at := end.Add(-time.Duration(i) * time.Minute)
		s := stations[i%len(stations)]

		minuteOfDay := float64(at.Hour()*60 + at.Minute())
		// coldest around 03:00, warmest around 15:00
		temperature := 10 + s.offset - 6*math.Cos(2*math.Pi*(minuteOfDay-180)/1440)

		readings = append(readings, model.SensorReading{
			ID:          fmt.Sprintf("%s-%s", s.name, at.Format("20060102T1504")),
			Timestamp:   at,
			Temperature: math.Round(temperature*10) / 10,
			Lat:         s.lat,
			Lon:         s.lon,
			Suggest:     []string{s.name},
		})
	}
	return readings
}
