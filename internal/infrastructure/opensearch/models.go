// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package opensearch

import (
	"encoding/json"

	"github.com/sensorhub/search-proxy/pkg/httpclient"
)

// Config represents OpenSearch configuration
type Config struct {
	// URL of the cluster; a bare host:port gets an http scheme
	URL string `json:"url"`
	// Username and Password enable basic auth when both are set
	Username string `json:"username"`
	Password string `json:"password"`
	// Transport tunes the connection to the cluster
	Transport httpclient.Config `json:"-"`
}

// SearchResponse represents the OpenSearch search response
type SearchResponse struct {
	Hits         Hits            `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations,omitempty"`
	// Raw is the undecoded response body
	Raw json.RawMessage `json:"-"`
}

// Hits represents the hits in the search response
type Hits struct {
	Total Total `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Total represents the total number of hits
type Total struct {
	Value int `json:"value"`
}

// UnmarshalJSON accepts both the object form and the bare number older
// clusters return.
func (t *Total) UnmarshalJSON(data []byte) error {
	var value int
	if err := json.Unmarshal(data, &value); err == nil {
		t.Value = value
		return nil
	}

	type total Total
	var object total
	if err := json.Unmarshal(data, &object); err != nil {
		return err
	}
	*t = Total(object)
	return nil
}

// Hit represents a single search result hit
type Hit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
	Sort   []any           `json:"sort,omitempty"`
}

// CatIndex is one row of the _cat/indices listing
type CatIndex struct {
	Index  string `json:"index"`
	Health string `json:"health"`
}

// BulkResponse is the body of a _bulk request
type BulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]BulkItem `json:"items"`
}

// BulkItem is the outcome of one bulk action
type BulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// ErrorResponse is the body OpenSearch returns with a failed request
type ErrorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

type documentsTemplateData struct {
	Size      int
	SortField string
}

type searchTemplateData struct {
	Size        int
	SortField   string
	Query       string
	SearchAfter string
}

type suggestTemplateData struct {
	SuggestionName string
	SuggestField   string
	Text           string
}
