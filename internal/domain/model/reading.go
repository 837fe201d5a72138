// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"encoding/json"
	"time"
)

// SensorReading is one temperature observation of a station
type SensorReading struct {
	// ID is the document id; it is not part of the stored body
	ID          string
	Timestamp   time.Time
	Temperature float64
	Lat         float64
	Lon         float64
	// Suggest feeds the completion suggester
	Suggest []string
}

type readingDocument struct {
	Timestamp string `json:"timestamp"`
	Sensors   struct {
		Temperature struct {
			ObservationValue float64 `json:"observation_value"`
		} `json:"temperature"`
	} `json:"sensors"`
	Location struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
	Suggest []string `json:"suggest,omitempty"`
}

// MarshalJSON writes the indexed document body
func (r SensorReading) MarshalJSON() ([]byte, error) {
	var d readingDocument
	d.Timestamp = r.Timestamp.UTC().Format(time.RFC3339)
	d.Sensors.Temperature.ObservationValue = r.Temperature
	d.Location.Lat = r.Lat
	d.Location.Lon = r.Lon
	d.Suggest = r.Suggest
	return json.Marshal(d)
}
