// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/sensorhub/search-proxy/internal/domain/model"
	"github.com/sensorhub/search-proxy/internal/domain/port"
	"github.com/sensorhub/search-proxy/pkg/constants"
	"github.com/sensorhub/search-proxy/pkg/errors"
	"github.com/sensorhub/search-proxy/pkg/global"
	"github.com/sensorhub/search-proxy/pkg/httpclient"
	"github.com/sensorhub/search-proxy/pkg/paging"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

var templateFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

var (
	fetchDocumentsTemplate  = template.Must(template.New("fetchDocuments").Funcs(templateFuncs).Parse(fetchDocumentsSource))
	searchDocumentsTemplate = template.Must(template.New("searchDocuments").Funcs(templateFuncs).Parse(searchDocumentsSource))
	suggestTemplate         = template.Must(template.New("suggest").Funcs(templateFuncs).Parse(suggestSource))
)

// OpenSearchSearcher implements the IndexSearcher port for OpenSearch
type OpenSearchSearcher struct {
	client OpenSearchClientRetriever
}

// OpenSearchClientRetriever defines the interface for OpenSearch operations
// This allows for easy mocking and testing
type OpenSearchClientRetriever interface {
	Search(ctx context.Context, index string, query []byte) (*SearchResponse, error)
	CatIndices(ctx context.Context) ([]CatIndex, error)
	Exists(ctx context.Context, index, id string) (bool, error)
	Bulk(ctx context.Context, index string, body []byte) (*BulkResponse, error)
	Ping(ctx context.Context) error
}

// ListIndices implements the IndexSearcher interface
func (os *OpenSearchSearcher) ListIndices(ctx context.Context) ([]model.IndexInfo, error) {
	indices, err := os.client.CatIndices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indices: %w", err)
	}

	result := make([]model.IndexInfo, 0, len(indices))
	for _, index := range indices {
		result = append(result, model.IndexInfo{
			Name:   index.Index,
			Health: index.Health,
		})
	}
	return result, nil
}

// FetchDocuments implements the IndexSearcher interface
func (os *OpenSearchSearcher) FetchDocuments(ctx context.Context, index string) ([]json.RawMessage, error) {
	query, err := render(ctx, fetchDocumentsTemplate, documentsTemplateData{
		Size:      constants.MaxDocuments,
		SortField: constants.TimestampField,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render query: %w", err)
	}

	response, err := os.client.Search(ctx, index, query)
	if err != nil {
		return nil, fmt.Errorf("opensearch search failed: %w", err)
	}

	return sources(response.Hits.Hits), nil
}

// AggregateBuckets implements the IndexSearcher interface
func (os *OpenSearchSearcher) AggregateBuckets(ctx context.Context, criteria model.BucketCriteria) ([]model.Bucket, error) {
	slog.DebugContext(ctx, "executing opensearch bucket aggregation",
		"index", criteria.Index,
		"interval", criteria.Interval,
		"metric", criteria.Metric,
		"geo_box", criteria.GeoBox != nil,
	)

	query, err := json.Marshal(BuildBucketQuery(criteria))
	if err != nil {
		return nil, errors.NewUnexpected("failed to marshal bucket query", err)
	}

	response, err := os.client.Search(ctx, criteria.Index, query)
	if err != nil {
		return nil, fmt.Errorf("opensearch aggregation failed: %w", err)
	}

	buckets, err := ReshapeBuckets(response.Aggregations)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "opensearch bucket aggregation completed",
		"buckets_count", len(buckets),
	)
	return buckets, nil
}

// SearchDocuments implements the IndexSearcher interface
func (os *OpenSearchSearcher) SearchDocuments(ctx context.Context, criteria model.SearchCriteria) (*model.SearchResult, error) {
	data := searchTemplateData{
		Size:      criteria.PageSize,
		SortField: constants.TimestampField,
		Query:     string(bytes.TrimSpace(criteria.Query)),
	}
	if data.Size <= 0 {
		data.Size = constants.DefaultPageSize
	}
	if len(criteria.SearchAfter) > 0 {
		searchAfter, err := json.Marshal(criteria.SearchAfter)
		if err != nil {
			return nil, errors.NewValidation("invalid search_after cursor", err)
		}
		data.SearchAfter = string(searchAfter)
	}

	query, err := render(ctx, searchDocumentsTemplate, data)
	if err != nil {
		return nil, errors.NewValidation("invalid search query", err)
	}

	response, err := os.client.Search(ctx, criteria.Index, query)
	if err != nil {
		return nil, fmt.Errorf("opensearch search failed: %w", err)
	}

	result := &model.SearchResult{
		Documents: sources(response.Hits.Hits),
		Total:     response.Hits.Total.Value,
	}

	// a full page means there may be more results
	if hits := response.Hits.Hits; len(hits) == data.Size && len(hits[len(hits)-1].Sort) > 0 {
		pageToken, errEncode := paging.EncodePageToken(hits[len(hits)-1].Sort, global.PageTokenSecret(ctx))
		if errEncode != nil {
			slog.ErrorContext(ctx, "failed to encode page token", "error", errEncode)
			return nil, errEncode
		}
		result.PageToken = &pageToken
	}

	return result, nil
}

// DocumentExists implements the IndexSearcher interface
func (os *OpenSearchSearcher) DocumentExists(ctx context.Context, index, id string) (bool, error) {
	exists, err := os.client.Exists(ctx, index, id)
	if err != nil {
		return false, fmt.Errorf("opensearch exists check failed: %w", err)
	}
	return exists, nil
}

// Suggest implements the IndexSearcher interface
func (os *OpenSearchSearcher) Suggest(ctx context.Context, index, input string) (json.RawMessage, error) {
	query, err := render(ctx, suggestTemplate, suggestTemplateData{
		SuggestionName: constants.SuggestionName,
		SuggestField:   constants.SuggestField,
		Text:           input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render query: %w", err)
	}

	response, err := os.client.Search(ctx, index, query)
	if err != nil {
		return nil, fmt.Errorf("opensearch suggest failed: %w", err)
	}
	return response.Raw, nil
}

// BulkIndex implements the IndexSearcher interface
func (os *OpenSearchSearcher) BulkIndex(ctx context.Context, index string, readings []model.SensorReading) (int, error) {
	body, err := bulkBody(readings)
	if err != nil {
		return 0, errors.NewUnexpected("failed to encode bulk body", err)
	}

	response, err := os.client.Bulk(ctx, index, body)
	if err != nil {
		return 0, fmt.Errorf("opensearch bulk failed: %w", err)
	}

	indexed := 0
	var failure error
	for _, item := range response.Items {
		for _, result := range item {
			if result.Error == nil {
				indexed++
				continue
			}
			if failure == nil {
				failure = fmt.Errorf("document %s: %s: %s", result.ID, result.Error.Type, result.Error.Reason)
			}
		}
	}
	if failure != nil {
		slog.ErrorContext(ctx, "opensearch bulk partially failed",
			"index", index,
			"indexed", indexed,
			"requested", len(readings),
			"error", failure,
		)
		return indexed, errors.NewUnexpected(fmt.Sprintf("indexed %d of %d documents", indexed, len(readings)), failure)
	}
	return indexed, nil
}

// bulkBody writes one index action and one source line per reading
func bulkBody(readings []model.SensorReading) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, reading := range readings {
		action := map[string]map[string]string{"index": {"_id": reading.ID}}
		if err := encoder.Encode(action); err != nil {
			return nil, err
		}
		if err := encoder.Encode(reading); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// IsReady implements the IndexSearcher interface
func (os *OpenSearchSearcher) IsReady(ctx context.Context) error {
	if err := os.client.Ping(ctx); err != nil {
		return errors.NewServiceUnavailable("opensearch is not ready", err)
	}
	return nil
}

// render executes a query template and checks that the result is valid JSON
func render(ctx context.Context, tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.ErrorContext(ctx, "failed to render query template", "template", tmpl.Name(), "error", err)
		return nil, err
	}

	// Marshal compacts the document and rejects invalid JSON
	query, err := json.Marshal(json.RawMessage(buf.Bytes()))
	if err != nil {
		slog.ErrorContext(ctx, "rendered query is not valid JSON", "template", tmpl.Name(), "error", err)
		return nil, err
	}
	return query, nil
}

func sources(hits []Hit) []json.RawMessage {
	documents := make([]json.RawMessage, 0, len(hits))
	for _, hit := range hits {
		documents = append(documents, hit.Source)
	}
	return documents
}

// normalizeURL accepts the host:port form used by ESHOST.
func normalizeURL(address string) string {
	if strings.Contains(address, "://") {
		return address
	}
	return "http://" + address
}

// NewSearcher returns a new OpenSearchSearcher implementation
func NewSearcher(ctx context.Context, config Config) (port.IndexSearcher, error) {

	if config.URL == "" {
		slog.ErrorContext(ctx, "opensearch URL is required")
		return nil, errors.NewValidation("opensearch URL is required")
	}

	opensearchClient, errOpensearchClient := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: []string{normalizeURL(config.URL)},
			Username:  config.Username,
			Password:  config.Password,
			Transport: httpclient.NewTransport(config.Transport),
			// one upstream call per request, failures surface to the caller
			DisableRetry: true,
		},
	})
	if errOpensearchClient != nil {
		slog.ErrorContext(ctx, "failed to create OpenSearch client", "error", errOpensearchClient)
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", errOpensearchClient)
	}

	return NewSearcherWithClient(&httpClient{client: opensearchClient}), nil
}

// NewSearcherWithClient wraps an existing client, mainly for tests
func NewSearcherWithClient(client OpenSearchClientRetriever) *OpenSearchSearcher {
	return &OpenSearchSearcher{client: client}
}
