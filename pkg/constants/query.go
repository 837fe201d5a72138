// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

const (

	// DefaultPageSize is the default number of results per page for queries
	DefaultPageSize = 100

	// MaxDocuments is the number of documents returned when an index is fetched as a whole
	MaxDocuments = 10000

	// DefaultSeedIndex and DefaultSeedCount drive the test data route
	DefaultSeedIndex = "weather"
	DefaultSeedCount = 10000

	// NonceSize is the secretbox nonce length used by page tokens
	NonceSize = 24
)

// Document fields the proxy queries on.
const (
	TimestampField = "timestamp"
	MetricField    = "sensors.temperature.observation_value"
	LocationField  = "location"
	SuggestField   = "suggest"
)

const (
	// BucketAggregation names the date histogram in aggregation requests
	BucketAggregation = "agg_per_time"
	// MetricAggregation names the metric nested under each bucket
	MetricAggregation = "type"
	// SuggestionName names the completion suggester
	SuggestionName = "docsuggest"

	// DefaultTimeFrom and DefaultTimeTo bound the trailing one hour window
	DefaultTimeFrom = "now-1h/m"
	DefaultTimeTo   = "now/m"
)
