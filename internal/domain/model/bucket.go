// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

// TimeRange bounds the timestamp filter with engine date-math expressions.
type TimeRange struct {
	// From is the inclusive lower bound (gte)
	From string
	// To is the inclusive upper bound (lte)
	To string
}

// IsZero reports whether no bound was supplied.
func (t TimeRange) IsZero() bool {
	return t.From == "" && t.To == ""
}

// GeoBox is a lat/lon bounding box given by its top-left and bottom-right corners.
type GeoBox struct {
	TopLeftLat     float64
	TopLeftLon     float64
	BottomRightLat float64
	BottomRightLon float64
}

// BucketCriteria holds the inputs of a time-bucketed metric aggregation.
type BucketCriteria struct {
	// Index to aggregate over
	Index string
	// Interval is the histogram bucket width, passed through to the engine (e.g. "1h")
	Interval string
	// Metric names the engine metric aggregation (e.g. "avg", "max")
	Metric string
	// TimeRange restricts the documents; zero means the trailing hour
	TimeRange TimeRange
	// GeoBox optionally restricts documents to a region
	GeoBox *GeoBox
}

// Bucket is one histogram bucket of an aggregation result.
type Bucket struct {
	Timestamp string   `json:"timestamp"`
	Value     *float64 `json:"value"`
}
