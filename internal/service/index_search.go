// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sensorhub/search-proxy/internal/domain/model"
	"github.com/sensorhub/search-proxy/internal/domain/port"
	"github.com/sensorhub/search-proxy/pkg/errors"
	"github.com/sensorhub/search-proxy/pkg/global"
	"github.com/sensorhub/search-proxy/pkg/paging"
)

// IndexSearch handles index-related business operations
// It depends on abstractions (interfaces) rather than concrete implementations
type IndexSearch struct {
	searcher port.IndexSearcher
}

// ListIndices returns every index known to the search engine
func (s *IndexSearch) ListIndices(ctx context.Context) ([]model.IndexInfo, error) {
	slog.DebugContext(ctx, "listing indices")

	indices, err := s.searcher.ListIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indices failed: %w", err)
	}
	return indices, nil
}

// FetchDocuments returns the most recent documents of an index
func (s *IndexSearch) FetchDocuments(ctx context.Context, index string) ([]json.RawMessage, error) {
	if err := requireValue("index name", index); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "fetching documents", "index", index)

	documents, err := s.searcher.FetchDocuments(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("fetch documents failed: %w", err)
	}
	return documents, nil
}

// AggregateBuckets performs a time-bucketed metric aggregation after validating the criteria
func (s *IndexSearch) AggregateBuckets(ctx context.Context, criteria model.BucketCriteria) ([]model.Bucket, error) {

	slog.DebugContext(ctx, "starting bucket aggregation",
		"index", criteria.Index,
		"interval", criteria.Interval,
		"metric", criteria.Metric,
		"time_from", criteria.TimeRange.From,
		"time_to", criteria.TimeRange.To,
		"geo_box", criteria.GeoBox != nil,
	)

	if err := s.validateBucketCriteria(criteria); err != nil {
		slog.With("error", err).ErrorContext(ctx, "bucket criteria validation failed")
		return nil, err
	}

	buckets, err := s.searcher.AggregateBuckets(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("bucket aggregation failed: %w", err)
	}
	return buckets, nil
}

// SearchDocuments runs a paged query; a page token replaces the search_after cursor
func (s *IndexSearch) SearchDocuments(ctx context.Context, criteria model.SearchCriteria) (*model.SearchResult, error) {
	if err := requireValue("index name", criteria.Index); err != nil {
		return nil, err
	}

	criteria.Query = bytes.TrimSpace(criteria.Query)
	if len(criteria.Query) > 0 {
		// the clause is spliced into the request body, so it has to be a single object
		if !json.Valid(criteria.Query) || criteria.Query[0] != '{' {
			return nil, errors.NewValidation("query must be a JSON object")
		}
	}

	if criteria.PageToken != nil && *criteria.PageToken != "" {
		searchAfter, err := paging.DecodePageToken(ctx, *criteria.PageToken, global.PageTokenSecret(ctx))
		if err != nil {
			slog.With("error", err).ErrorContext(ctx, "page token rejected")
			return nil, err
		}
		criteria.SearchAfter = searchAfter
	}

	slog.DebugContext(ctx, "validated search criteria, proceeding with search",
		"index", criteria.Index,
		"paged", len(criteria.SearchAfter) > 0,
	)

	result, err := s.searcher.SearchDocuments(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search operation failed: %w", err)
	}
	return result, nil
}

// DocumentExists reports whether a document id exists in an index
func (s *IndexSearch) DocumentExists(ctx context.Context, index, id string) (bool, error) {
	if err := requireValue("index name", index); err != nil {
		return false, err
	}
	if err := requireValue("document id", id); err != nil {
		return false, err
	}

	exists, err := s.searcher.DocumentExists(ctx, index, id)
	if err != nil {
		return false, fmt.Errorf("document exists check failed: %w", err)
	}
	return exists, nil
}

// Suggest returns completion suggestions for the input text
func (s *IndexSearch) Suggest(ctx context.Context, index, input string) (json.RawMessage, error) {
	if err := requireValue("index name", index); err != nil {
		return nil, err
	}
	if err := requireValue("suggest input", input); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "requesting suggestions", "index", index, "input", input)

	response, err := s.searcher.Suggest(ctx, index, input)
	if err != nil {
		return nil, fmt.Errorf("suggest failed: %w", err)
	}
	return response, nil
}

// BulkIndex writes readings into an index
func (s *IndexSearch) BulkIndex(ctx context.Context, index string, readings []model.SensorReading) (int, error) {
	if err := requireValue("index name", index); err != nil {
		return 0, err
	}
	if len(readings) == 0 {
		return 0, errors.NewValidation("at least one reading is required")
	}

	slog.InfoContext(ctx, "bulk indexing readings", "index", index, "count", len(readings))

	indexed, err := s.searcher.BulkIndex(ctx, index, readings)
	if err != nil {
		return indexed, fmt.Errorf("bulk index failed: %w", err)
	}
	return indexed, nil
}

// IsReady checks if the backing search engine is ready
func (s *IndexSearch) IsReady(ctx context.Context) error {
	return s.searcher.IsReady(ctx)
}

// validateBucketCriteria validates the bucket criteria according to business rules
func (s *IndexSearch) validateBucketCriteria(criteria model.BucketCriteria) error {
	if err := requireValue("index name", criteria.Index); err != nil {
		return err
	}
	if err := requireValue("interval", criteria.Interval); err != nil {
		return err
	}
	return requireValue("metric type", criteria.Metric)
}

func requireValue(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidation(fmt.Sprintf("%s is required", name))
	}
	return nil
}

// NewIndexSearch creates a new IndexSearch instance
func NewIndexSearch(searcher port.IndexSearcher) port.IndexSearcher {
	return &IndexSearch{
		searcher: searcher,
	}
}
