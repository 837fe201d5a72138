// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import "encoding/json"

// SearchCriteria encapsulates a free-form document search on one index
type SearchCriteria struct {
	// Index to search
	Index string
	// Query is a raw query clause; empty means match_all
	Query json.RawMessage
	// SearchAfter is the decoded cursor of the previous page
	SearchAfter []any
	// Opaque token for pagination
	PageToken *string
	// Pagesize for pagination
	PageSize int
}

// SearchResult contains one page of documents
type SearchResult struct {
	// Documents are the _source bodies of the hits
	Documents []json.RawMessage `json:"documents"`
	// Opaque token if more results are available
	PageToken *string `json:"page_token,omitempty"`
	// Total number of matching documents
	Total int `json:"total"`
}
