// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sensorhub/search-proxy/internal/domain/model"
	"github.com/sensorhub/search-proxy/pkg/constants"
	"github.com/sensorhub/search-proxy/pkg/errors"
	"github.com/sensorhub/search-proxy/pkg/global"
	"github.com/sensorhub/search-proxy/pkg/paging"
)

// bucketKeyLayout mirrors the key_as_string format of the search engine
const bucketKeyLayout = "2006-01-02T15:04:05.000Z"

// source returns the stored body of a reading
func source(reading model.SensorReading) json.RawMessage {
	b, _ := json.Marshal(reading)
	return b
}

// MockIndexSearcher is an in-memory implementation of IndexSearcher for local
// development and tests. Query clauses and date math are not interpreted.
type MockIndexSearcher struct {
	mu       sync.RWMutex
	indices  map[string][]model.SensorReading
	readyErr error
}

// NewMockIndexSearcher creates a new mock searcher with a small "weather" index
func NewMockIndexSearcher() *MockIndexSearcher {
	m := &MockIndexSearcher{
		indices: make(map[string][]model.SensorReading),
	}

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	stations := []struct {
		name     string
		lat, lon float64
	}{
		{"berlin", 52.52, 13.40},
		{"hamburg", 53.55, 9.99},
		{"munich", 48.14, 11.58},
	}
	for i := 0; i < 12; i++ {
		station := stations[i%len(stations)]
		m.AddDocument("weather", model.SensorReading{
			ID:          fmt.Sprintf("reading-%02d", i),
			Timestamp:   start.Add(time.Duration(i) * 20 * time.Minute),
			Temperature: 2.0 + float64(i)*0.5,
			Lat:         station.lat,
			Lon:         station.lon,
			Suggest:     []string{station.name},
		})
	}
	return m
}

// AddDocument adds a document to an index, creating the index on first use
func (m *MockIndexSearcher) AddDocument(index string, document model.SensorReading) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indices[index] = append(m.indices[index], document)
}

// BulkIndex implements the IndexSearcher interface. A reading with a known id
// replaces the stored one.
func (m *MockIndexSearcher) BulkIndex(ctx context.Context, index string, readings []model.SensorReading) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	documents := m.indices[index]
	positions := make(map[string]int, len(documents))
	for i, d := range documents {
		positions[d.ID] = i
	}
	for _, reading := range readings {
		if i, ok := positions[reading.ID]; ok {
			documents[i] = reading
			continue
		}
		positions[reading.ID] = len(documents)
		documents = append(documents, reading)
	}
	m.indices[index] = documents

	slog.DebugContext(ctx, "mock bulk index completed", "index", index, "documents", len(readings))
	return len(readings), nil
}

// SetReadyError makes IsReady fail with err
func (m *MockIndexSearcher) SetReadyError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readyErr = err
}

// sorted returns a copy of the index ordered by timestamp desc, id asc.
// Callers must hold the read lock.
func (m *MockIndexSearcher) sorted(name string) ([]model.SensorReading, error) {
	documents, ok := m.indices[name]
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("no such index [%s]", name))
	}
	result := make([]model.SensorReading, len(documents))
	copy(result, documents)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// ListIndices implements the IndexSearcher interface with mock data
func (m *MockIndexSearcher) ListIndices(ctx context.Context) ([]model.IndexInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.IndexInfo, 0, len(m.indices))
	for name := range m.indices {
		result = append(result, model.IndexInfo{Name: name, Health: "green"})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// FetchDocuments implements the IndexSearcher interface with mock data
func (m *MockIndexSearcher) FetchDocuments(ctx context.Context, index string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	documents, err := m.sorted(index)
	if err != nil {
		return nil, err
	}
	if len(documents) > constants.MaxDocuments {
		documents = documents[:constants.MaxDocuments]
	}

	result := make([]json.RawMessage, 0, len(documents))
	for _, d := range documents {
		result = append(result, source(d))
	}
	return result, nil
}

// AggregateBuckets implements the IndexSearcher interface with mock data.
// Intervals must be Go durations; only RFC 3339 time bounds are honored.
func (m *MockIndexSearcher) AggregateBuckets(ctx context.Context, criteria model.BucketCriteria) ([]model.Bucket, error) {
	slog.DebugContext(ctx, "executing mock bucket aggregation",
		"index", criteria.Index,
		"interval", criteria.Interval,
		"metric", criteria.Metric,
	)

	interval, err := time.ParseDuration(criteria.Interval)
	if err != nil || interval <= 0 {
		return nil, errors.NewValidation(fmt.Sprintf("unsupported interval [%s]", criteria.Interval))
	}
	reduce, ok := reducers[criteria.Metric]
	if !ok {
		return nil, errors.NewValidation(fmt.Sprintf("unknown aggregation type [%s]", criteria.Metric))
	}

	m.mu.RLock()
	documents, err := m.sorted(criteria.Index)
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	from, hasFrom := parseBound(criteria.TimeRange.From)
	to, hasTo := parseBound(criteria.TimeRange.To)

	grouped := make(map[time.Time][]float64)
	var first, last time.Time
	for _, d := range documents {
		if (hasFrom && d.Timestamp.Before(from)) || (hasTo && d.Timestamp.After(to)) {
			continue
		}
		if criteria.GeoBox != nil && !inBox(*criteria.GeoBox, d.Lat, d.Lon) {
			continue
		}
		key := d.Timestamp.UTC().Truncate(interval)
		if len(grouped) == 0 || key.Before(first) {
			first = key
		}
		if len(grouped) == 0 || key.After(last) {
			last = key
		}
		grouped[key] = append(grouped[key], d.Temperature)
	}

	buckets := []model.Bucket{}
	if len(grouped) == 0 {
		return buckets, nil
	}
	for key := first; !key.After(last); key = key.Add(interval) {
		buckets = append(buckets, model.Bucket{
			Timestamp: key.Format(bucketKeyLayout),
			Value:     reduce(grouped[key]),
		})
	}
	return buckets, nil
}

// SearchDocuments implements the IndexSearcher interface with mock data.
// Every query behaves like match_all.
func (m *MockIndexSearcher) SearchDocuments(ctx context.Context, criteria model.SearchCriteria) (*model.SearchResult, error) {
	m.mu.RLock()
	documents, err := m.sorted(criteria.Index)
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	pageSize := criteria.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	start := 0
	if len(criteria.SearchAfter) > 0 {
		if len(criteria.SearchAfter) != 2 {
			return nil, errors.NewValidation("invalid search_after cursor")
		}
		millis, okMillis := criteria.SearchAfter[0].(float64)
		id, okID := criteria.SearchAfter[1].(string)
		if !okMillis || !okID {
			return nil, errors.NewValidation("invalid search_after cursor")
		}
		after := time.UnixMilli(int64(millis))
		start = sort.Search(len(documents), func(i int) bool {
			d := documents[i]
			return d.Timestamp.Before(after) || (d.Timestamp.Equal(after) && d.ID > id)
		})
	}

	end := min(start+pageSize, len(documents))
	page := documents[start:end]

	result := &model.SearchResult{
		Documents: make([]json.RawMessage, 0, len(page)),
		Total:     len(documents),
	}
	for _, d := range page {
		result.Documents = append(result.Documents, source(d))
	}

	if len(page) == pageSize && end < len(documents) {
		lastDoc := page[len(page)-1]
		cursor := []any{float64(lastDoc.Timestamp.UnixMilli()), lastDoc.ID}
		token, err := paging.EncodePageToken(cursor, global.PageTokenSecret(ctx))
		if err != nil {
			return nil, err
		}
		result.PageToken = &token
	}
	return result, nil
}

// DocumentExists implements the IndexSearcher interface with mock data
func (m *MockIndexSearcher) DocumentExists(ctx context.Context, index, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.indices[index] {
		if d.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type suggestOption struct {
	Text string `json:"text"`
	ID   string `json:"_id"`
}

type suggestEntry struct {
	Text    string          `json:"text"`
	Offset  int             `json:"offset"`
	Length  int             `json:"length"`
	Options []suggestOption `json:"options"`
}

// Suggest implements the IndexSearcher interface with case-insensitive prefix matching
func (m *MockIndexSearcher) Suggest(ctx context.Context, index, input string) (json.RawMessage, error) {
	m.mu.RLock()
	documents, err := m.sorted(index)
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	entry := suggestEntry{Text: input, Length: len(input), Options: []suggestOption{}}
	prefix := strings.ToLower(input)
	seen := make(map[string]bool)
	for _, d := range documents {
		for _, s := range d.Suggest {
			if strings.HasPrefix(strings.ToLower(s), prefix) && !seen[s] {
				seen[s] = true
				entry.Options = append(entry.Options, suggestOption{Text: s, ID: d.ID})
			}
		}
	}

	response := map[string]any{
		"suggest": map[string][]suggestEntry{
			constants.SuggestionName: {entry},
		},
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return nil, errors.NewUnexpected("failed to marshal suggestions", err)
	}
	return raw, nil
}

// IsReady implements the IndexSearcher interface
func (m *MockIndexSearcher) IsReady(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readyErr
}

func parseBound(value string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func inBox(box model.GeoBox, lat, lon float64) bool {
	return lat <= box.TopLeftLat && lat >= box.BottomRightLat &&
		lon >= box.TopLeftLon && lon <= box.BottomRightLon
}

func floatPtr(f float64) *float64 {
	return &f
}

// reducers compute a metric over the values of one bucket. Empty buckets
// yield null, except sum and value_count which yield 0.
var reducers = map[string]func([]float64) *float64{
	"avg": func(values []float64) *float64 {
		if len(values) == 0 {
			return nil
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		return floatPtr(sum / float64(len(values)))
	},
	"min": func(values []float64) *float64 {
		if len(values) == 0 {
			return nil
		}
		result := math.Inf(1)
		for _, v := range values {
			result = math.Min(result, v)
		}
		return floatPtr(result)
	},
	"max": func(values []float64) *float64 {
		if len(values) == 0 {
			return nil
		}
		result := math.Inf(-1)
		for _, v := range values {
			result = math.Max(result, v)
		}
		return floatPtr(result)
	},
	"sum": func(values []float64) *float64 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		return floatPtr(sum)
	},
	"value_count": func(values []float64) *float64 {
		return floatPtr(float64(len(values)))
	},
}
