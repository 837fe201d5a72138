// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"
	"encoding/json"

	"github.com/sensorhub/search-proxy/internal/domain/model"
)

// IndexSearcher defines the behavior of the backing search engine.
// This abstraction allows different search implementations (OpenSearch, mock)
// without the domain layer knowing about specific implementations
type IndexSearcher interface {
	// ListIndices returns the name and health of every index
	ListIndices(ctx context.Context) ([]model.IndexInfo, error)

	// FetchDocuments returns the most recent documents of an index
	FetchDocuments(ctx context.Context, index string) ([]json.RawMessage, error)

	// AggregateBuckets runs a time-bucketed metric aggregation
	AggregateBuckets(ctx context.Context, criteria model.BucketCriteria) ([]model.Bucket, error)

	// SearchDocuments runs a paged free-form query
	SearchDocuments(ctx context.Context, criteria model.SearchCriteria) (*model.SearchResult, error)

	// DocumentExists reports whether a document id exists in an index
	DocumentExists(ctx context.Context, index, id string) (bool, error)

	// Suggest runs a fuzzy completion suggestion and returns the raw engine response
	Suggest(ctx context.Context, index, input string) (json.RawMessage, error)

	// BulkIndex writes readings into an index, creating it when missing, and
	// returns the number of documents indexed
	BulkIndex(ctx context.Context, index string, readings []model.SensorReading) (int, error)

	// IsReady checks if the search service is ready
	IsReady(ctx context.Context) error
}
