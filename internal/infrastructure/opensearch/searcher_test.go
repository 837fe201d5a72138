// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package opensearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sensorhub/search-proxy/internal/domain/model"
	"github.com/sensorhub/search-proxy/pkg/constants"
	"github.com/sensorhub/search-proxy/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// MockOpenSearchClient is a mock implementation of OpenSearchClientRetriever
type MockOpenSearchClient struct {
	searchResponse *SearchResponse
	searchError    error
	indices        []CatIndex
	existing       map[string]bool
	pingError      error
	bulkResponse   *BulkResponse

	lastIndex string
	lastQuery []byte
}

func NewMockOpenSearchClient() *MockOpenSearchClient {
	return &MockOpenSearchClient{existing: map[string]bool{}}
}

func (m *MockOpenSearchClient) Search(ctx context.Context, index string, query []byte) (*SearchResponse, error) {
	m.lastIndex = index
	m.lastQuery = query
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.searchResponse, nil
}

func (m *MockOpenSearchClient) CatIndices(ctx context.Context) ([]CatIndex, error) {
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.indices, nil
}

func (m *MockOpenSearchClient) Exists(ctx context.Context, index, id string) (bool, error) {
	if m.searchError != nil {
		return false, m.searchError
	}
	return m.existing[index+"/"+id], nil
}

func (m *MockOpenSearchClient) Bulk(ctx context.Context, index string, body []byte) (*BulkResponse, error) {
	m.lastIndex = index
	m.lastQuery = body
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.bulkResponse, nil
}

func (m *MockOpenSearchClient) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *MockOpenSearchClient) SetSearchResponse(response *SearchResponse) {
	m.searchResponse = response
}

func (m *MockOpenSearchClient) SetSearchError(err error) {
	m.searchError = err
}

// lastQueryDocument decodes the query sent with the last search
func (m *MockOpenSearchClient) lastQueryDocument(t *testing.T) map[string]any {
	t.Helper()
	var document map[string]any
	assert.NoError(t, json.Unmarshal(m.lastQuery, &document))
	return document
}

func TestOpenSearchSearcherListIndices(t *testing.T) {
	mockClient := NewMockOpenSearchClient()
	mockClient.indices = []CatIndex{
		{Index: "weather", Health: "green"},
		{Index: "sensors", Health: "yellow"},
	}

	indices, err := NewSearcherWithClient(mockClient).ListIndices(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []model.IndexInfo{
		{Name: "weather", Health: "green"},
		{Name: "sensors", Health: "yellow"},
	}, indices)
}

func TestOpenSearchSearcherListIndicesError(t *testing.T) {
	mockClient := NewMockOpenSearchClient()
	mockClient.SetSearchError(errors.NewServiceUnavailable("down"))

	indices, err := NewSearcherWithClient(mockClient).ListIndices(context.Background())

	assert.Nil(t, indices)
	assert.ErrorAs(t, err, &errors.ServiceUnavailable{})
}

func TestOpenSearchSearcherFetchDocuments(t *testing.T) {
	mockClient := NewMockOpenSearchClient()
	mockClient.SetSearchResponse(&SearchResponse{
		Hits: Hits{
			Total: Total{Value: 2},
			Hits: []Hit{
				{ID: "b", Source: json.RawMessage(`{"timestamp":"2020-01-02"}`)},
				{ID: "a", Source: json.RawMessage(`{"timestamp":"2020-01-01"}`)},
			},
		},
	})

	documents, err := NewSearcherWithClient(mockClient).FetchDocuments(context.Background(), "weather")

	assert.NoError(t, err)
	assert.Equal(t, []json.RawMessage{
		json.RawMessage(`{"timestamp":"2020-01-02"}`),
		json.RawMessage(`{"timestamp":"2020-01-01"}`),
	}, documents)

	assert.Equal(t, "weather", mockClient.lastIndex)
	assert.JSONEq(t, `{
		"size": 10000,
		"sort": [{"timestamp": {"order": "desc"}}],
		"query": {"match_all": {}}
	}`, string(mockClient.lastQuery))
}

func TestOpenSearchSearcherAggregateBuckets(t *testing.T) {
	tests := []struct {
		name          string
		response      *SearchResponse
		searchError   error
		expected      []model.Bucket
		expectedError any
	}{
		{
			name: "reshapes buckets",
			response: &SearchResponse{
				Aggregations: json.RawMessage(`{"agg_per_time": {"buckets": [{"key_as_string": "2020-01-01", "type": {"value": 3.5}}]}}`),
			},
			expected: []model.Bucket{{Timestamp: "2020-01-01", Value: floatPtr(3.5)}},
		},
		{
			name:          "missing aggregations is malformed",
			response:      &SearchResponse{},
			expectedError: &errors.MalformedResponse{},
		},
		{
			name:          "engine rejection is propagated",
			searchError:   errors.NewValidation("unknown aggregation type [bogus]"),
			expectedError: &errors.Validation{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := NewMockOpenSearchClient()
			mockClient.SetSearchResponse(tc.response)
			mockClient.SetSearchError(tc.searchError)

			buckets, err := NewSearcherWithClient(mockClient).AggregateBuckets(context.Background(), model.BucketCriteria{
				Index:    "weather",
				Interval: "1h",
				Metric:   "avg",
			})

			if tc.expectedError != nil {
				assert.Error(t, err)
				assert.ErrorAs(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, buckets)

			document := mockClient.lastQueryDocument(t)
			assert.Equal(t, float64(0), document["size"])
			assert.Contains(t, document, "aggs")
		})
	}
}

func TestOpenSearchSearcherSearchDocuments(t *testing.T) {
	fullPage := func(size int) []Hit {
		hits := make([]Hit, size)
		for i := range hits {
			hits[i] = Hit{
				ID:     fmt.Sprintf("doc-%d", i),
				Source: json.RawMessage(fmt.Sprintf(`{"n":%d}`, i)),
				Sort:   []any{float64(1000 - i), fmt.Sprintf("doc-%d", i)},
			}
		}
		return hits
	}

	tests := []struct {
		name            string
		criteria        model.SearchCriteria
		hits            []Hit
		expectPageToken bool
		expectedQuery   map[string]any
	}{
		{
			name:     "empty query defaults to match_all",
			criteria: model.SearchCriteria{Index: "weather", PageSize: 5},
			hits:     fullPage(2),
			expectedQuery: map[string]any{
				"match_all": map[string]any{},
			},
		},
		{
			name: "custom query is embedded",
			criteria: model.SearchCriteria{
				Index:    "weather",
				Query:    json.RawMessage(`{"term": {"station": "berlin"}}`),
				PageSize: 5,
			},
			hits: fullPage(1),
			expectedQuery: map[string]any{
				"term": map[string]any{"station": "berlin"},
			},
		},
		{
			name:            "full page issues a page token",
			criteria:        model.SearchCriteria{Index: "weather", PageSize: 3},
			hits:            fullPage(3),
			expectPageToken: true,
			expectedQuery: map[string]any{
				"match_all": map[string]any{},
			},
		},
	}

	t.Setenv("PAGE_TOKEN_SECRET", "searcher-test-secret")

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := NewMockOpenSearchClient()
			mockClient.SetSearchResponse(&SearchResponse{
				Hits: Hits{Total: Total{Value: 42}, Hits: tc.hits},
			})

			result, err := NewSearcherWithClient(mockClient).SearchDocuments(context.Background(), tc.criteria)

			assert.NoError(t, err)
			assert.Len(t, result.Documents, len(tc.hits))
			assert.Equal(t, 42, result.Total)
			if tc.expectPageToken {
				assert.NotNil(t, result.PageToken)
			} else {
				assert.Nil(t, result.PageToken)
			}

			document := mockClient.lastQueryDocument(t)
			assert.Equal(t, tc.expectedQuery, document["query"])
			assert.Equal(t, float64(tc.criteria.PageSize), document["size"])
			assert.NotContains(t, document, "search_after")
		})
	}
}

func TestOpenSearchSearcherSearchDocumentsSearchAfter(t *testing.T) {
	mockClient := NewMockOpenSearchClient()
	mockClient.SetSearchResponse(&SearchResponse{})

	_, err := NewSearcherWithClient(mockClient).SearchDocuments(context.Background(), model.SearchCriteria{
		Index:       "weather",
		SearchAfter: []any{float64(1577836800000), "doc-9"},
	})

	assert.NoError(t, err)
	document := mockClient.lastQueryDocument(t)
	assert.Equal(t, []any{float64(1577836800000), "doc-9"}, document["search_after"])
	assert.Equal(t, float64(constants.DefaultPageSize), document["size"])
}

func TestOpenSearchSearcherSearchDocumentsInvalidQuery(t *testing.T) {
	mockClient := NewMockOpenSearchClient()

	_, err := NewSearcherWithClient(mockClient).SearchDocuments(context.Background(), model.SearchCriteria{
		Index: "weather",
		Query: json.RawMessage(`{"term": `),
	})

	assert.ErrorAs(t, err, &errors.Validation{})
	assert.Nil(t, mockClient.lastQuery)
}

func TestOpenSearchSearcherDocumentExists(t *testing.T) {
	mockClient := NewMockOpenSearchClient()
	mockClient.existing["weather/1"] = true
	searcher := NewSearcherWithClient(mockClient)

	exists, err := searcher.DocumentExists(context.Background(), "weather", "1")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = searcher.DocumentExists(context.Background(), "weather", "2")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestOpenSearchSearcherSuggest(t *testing.T) {
	raw := json.RawMessage(`{"took":1,"suggest":{"docsuggest":[{"text":"berln","options":[{"text":"berlin"}]}]}}`)
	mockClient := NewMockOpenSearchClient()
	mockClient.SetSearchResponse(&SearchResponse{Raw: raw})

	result, err := NewSearcherWithClient(mockClient).Suggest(context.Background(), "weather", "berln \"quoted\"")

	assert.NoError(t, err)
	assert.Equal(t, raw, result)
	assert.JSONEq(t, `{
		"suggest": {
			"docsuggest": {
				"text": "berln \"quoted\"",
				"completion": {"field": "suggest", "fuzzy": true}
			}
		}
	}`, string(mockClient.lastQuery))
}

func TestOpenSearchSearcherIsReady(t *testing.T) {
	mockClient := NewMockOpenSearchClient()
	searcher := NewSearcherWithClient(mockClient)

	assert.NoError(t, searcher.IsReady(context.Background()))

	mockClient.pingError = fmt.Errorf("connection refused")
	err := searcher.IsReady(context.Background())
	assert.ErrorAs(t, err, &errors.ServiceUnavailable{})
}

func TestOpenSearchSearcherBulkIndex(t *testing.T) {
	readings := []model.SensorReading{
		{ID: "berlin-1", Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Temperature: 2.5, Lat: 52.52, Lon: 13.4},
		{ID: "berlin-2", Timestamp: time.Date(2020, 1, 1, 0, 1, 0, 0, time.UTC), Temperature: 3, Lat: 52.52, Lon: 13.4},
	}
	indexed := func(id string) map[string]BulkItem {
		return map[string]BulkItem{"index": {ID: id, Status: 201}}
	}

	tests := []struct {
		name            string
		response        *BulkResponse
		clientError     error
		expectedIndexed int
		expectedError   any
	}{
		{
			name:            "all documents indexed",
			response:        &BulkResponse{Items: []map[string]BulkItem{indexed("berlin-1"), indexed("berlin-2")}},
			expectedIndexed: 2,
		},
		{
			name: "rejected item",
			response: func() *BulkResponse {
				rejected := BulkItem{ID: "berlin-2", Status: 400}
				rejected.Error = &struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				}{Type: "mapper_parsing_exception", Reason: "failed to parse field [location]"}
				return &BulkResponse{Errors: true, Items: []map[string]BulkItem{indexed("berlin-1"), {"index": rejected}}}
			}(),
			expectedIndexed: 1,
			expectedError:   &errors.Unexpected{},
		},
		{
			name:          "cluster down",
			clientError:   errors.NewServiceUnavailable("down"),
			expectedError: &errors.ServiceUnavailable{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := NewMockOpenSearchClient()
			mockClient.bulkResponse = tc.response
			mockClient.SetSearchError(tc.clientError)

			count, err := NewSearcherWithClient(mockClient).BulkIndex(context.Background(), "weather", readings)

			assert.Equal(t, tc.expectedIndexed, count)
			if tc.expectedError != nil {
				assert.ErrorAs(t, err, tc.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "weather", mockClient.lastIndex)
		})
	}
}

func TestBulkBody(t *testing.T) {
	body, err := bulkBody([]model.SensorReading{
		{ID: "munich-1", Timestamp: time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC), Temperature: 7.5, Lat: 48.14, Lon: 11.58, Suggest: []string{"munich"}},
	})
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
	if assert.Len(t, lines, 2) {
		assert.JSONEq(t, `{"index": {"_id": "munich-1"}}`, lines[0])
		assert.JSONEq(t, `{
			"timestamp": "2020-01-01T12:00:00Z",
			"sensors": {"temperature": {"observation_value": 7.5}},
			"location": {"lat": 48.14, "lon": 11.58},
			"suggest": ["munich"]
		}`, lines[1])
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:9200", normalizeURL("127.0.0.1:9200"))
	assert.Equal(t, "https://search.local:9200", normalizeURL("https://search.local:9200"))
}
