// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package opensearch

import (
	"encoding/json"

	"github.com/sensorhub/search-proxy/internal/domain/model"
	"github.com/sensorhub/search-proxy/pkg/constants"
	"github.com/sensorhub/search-proxy/pkg/errors"
)

// BuildBucketQuery assembles the date histogram request for the given
// criteria. The timestamp range always applies; a geo box is added next to it
// under a bool must clause so both constraints hold.
func BuildBucketQuery(criteria model.BucketCriteria) map[string]any {
	return map[string]any{
		"size": 0,
		"query": map[string]any{
			"constant_score": map[string]any{
				"filter": bucketFilter(criteria.TimeRange, criteria.GeoBox),
			},
		},
		"aggs": map[string]any{
			constants.BucketAggregation: map[string]any{
				"date_histogram": map[string]any{
					"field":    constants.TimestampField,
					"interval": criteria.Interval,
				},
				"aggs": map[string]any{
					constants.MetricAggregation: map[string]any{
						criteria.Metric: map[string]any{
							"field": constants.MetricField,
						},
					},
				},
			},
		},
	}
}

func bucketFilter(timeRange model.TimeRange, box *model.GeoBox) map[string]any {
	rangeClause := rangeFilter(timeRange)
	if box == nil {
		return rangeClause
	}
	return map[string]any{
		"bool": map[string]any{
			"must": []any{rangeClause, geoBoundingBoxFilter(*box)},
		},
	}
}

func rangeFilter(timeRange model.TimeRange) map[string]any {
	from, to := timeRange.From, timeRange.To
	if from == "" {
		from = constants.DefaultTimeFrom
	}
	if to == "" {
		to = constants.DefaultTimeTo
	}
	return map[string]any{
		"range": map[string]any{
			constants.TimestampField: map[string]any{
				"gte": from,
				"lte": to,
			},
		},
	}
}

func geoBoundingBoxFilter(box model.GeoBox) map[string]any {
	return map[string]any{
		"geo_bounding_box": map[string]any{
			constants.LocationField: map[string]any{
				"top_left": map[string]any{
					"lat": box.TopLeftLat,
					"lon": box.TopLeftLon,
				},
				"bottom_right": map[string]any{
					"lat": box.BottomRightLat,
					"lon": box.BottomRightLon,
				},
			},
		},
	}
}

type bucketAggregations struct {
	AggPerTime *struct {
		Buckets *[]aggregationBucket `json:"buckets"`
	} `json:"agg_per_time"`
}

type aggregationBucket struct {
	KeyAsString string `json:"key_as_string"`
	Type        *struct {
		Value *float64 `json:"value"`
	} `json:"type"`
}

// ReshapeBuckets flattens the aggregations section of a bucket query response
// into timestamp/value pairs, preserving bucket order.
func ReshapeBuckets(aggregations json.RawMessage) ([]model.Bucket, error) {
	if len(aggregations) == 0 {
		return nil, errors.NewMalformedResponse("search response has no aggregations")
	}

	var parsed bucketAggregations
	if err := json.Unmarshal(aggregations, &parsed); err != nil {
		return nil, errors.NewMalformedResponse("failed to decode aggregations", err)
	}
	if parsed.AggPerTime == nil || parsed.AggPerTime.Buckets == nil {
		return nil, errors.NewMalformedResponse("aggregations lack " + constants.BucketAggregation + ".buckets")
	}

	buckets := make([]model.Bucket, 0, len(*parsed.AggPerTime.Buckets))
	for _, b := range *parsed.AggPerTime.Buckets {
		if b.Type == nil {
			return nil, errors.NewMalformedResponse("bucket " + b.KeyAsString + " lacks the " + constants.MetricAggregation + " metric")
		}
		buckets = append(buckets, model.Bucket{
			Timestamp: b.KeyAsString,
			Value:     b.Type.Value,
		})
	}
	return buckets, nil
}
