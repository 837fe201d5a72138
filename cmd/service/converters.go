// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/sensorhub/search-proxy/internal/domain/model"
	"github.com/sensorhub/search-proxy/pkg/constants"
	"github.com/sensorhub/search-proxy/pkg/errors"
)

// paramsToBucketCriteria converts the path and query parameters of a bucket
// request to domain criteria
func paramsToBucketCriteria(vars map[string]string, query url.Values) (model.BucketCriteria, error) {
	criteria := model.BucketCriteria{
		Index:     vars["indexName"],
		Interval:  vars["interval"],
		Metric:    vars["metricType"],
		TimeRange: parseTimeRange(query.Get("time")),
	}

	geoBox, err := parseGeoBox(query.Get("location"))
	if err != nil {
		return criteria, err
	}
	criteria.GeoBox = geoBox

	return criteria, nil
}

// parseTimeRange reads "from,to" and keeps both bounds verbatim. Any other
// number of values leaves the range empty so the default window applies.
func parseTimeRange(value string) model.TimeRange {
	if value == "" {
		return model.TimeRange{}
	}
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return model.TimeRange{}
	}
	return model.TimeRange{
		From: parts[0],
		To:   parts[1],
	}
}

// parseGeoBox reads "topLeftLat,topLeftLon,bottomRightLat,bottomRightLon".
// Any other number of values means no geo filter.
func parseGeoBox(value string) (*model.GeoBox, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil, nil
	}

	coordinates := make([]float64, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.NewValidation(fmt.Sprintf("invalid location coordinate [%s]", part), err)
		}
		// ParseFloat accepts NaN and Inf, which no geo box can hold
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.NewValidation(fmt.Sprintf("location coordinate [%s] is not a finite number", part))
		}
		coordinates[i] = f
	}

	return &model.GeoBox{
		TopLeftLat:     coordinates[0],
		TopLeftLon:     coordinates[1],
		BottomRightLat: coordinates[2],
		BottomRightLon: coordinates[3],
	}, nil
}

// paramsToSeedRequest reads the target index and reading count of a test
// data request, falling back to the defaults when absent
func paramsToSeedRequest(query url.Values) (string, int, error) {
	index := query.Get("index")
	if index == "" {
		index = constants.DefaultSeedIndex
	}

	count := constants.DefaultSeedCount
	if value := query.Get("count"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", 0, errors.NewValidation(fmt.Sprintf("invalid count [%s]", value), err)
		}
		count = n
	}
	if count < 1 || count > constants.MaxDocuments {
		return "", 0, errors.NewValidation(fmt.Sprintf("count must be between 1 and %d", constants.MaxDocuments))
	}
	return index, count, nil
}
