// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sensorhub/search-proxy/internal/domain/model"
	"github.com/sensorhub/search-proxy/internal/domain/port"
	"github.com/sensorhub/search-proxy/internal/metrics"
	usecase "github.com/sensorhub/search-proxy/internal/service"
	"github.com/sensorhub/search-proxy/pkg/constants"
	"github.com/sensorhub/search-proxy/pkg/errors"

	goahttp "goa.design/goa/v3/http"
)

const helpPage = `<h1>Search API is running</h1>
<p>Possible API calls:</p>
<ul>
<li>GET /api/indices</li>
<li>GET /api/indices/<i>indexName</i></li>
<li>GET /api/indices/<i>indexName</i>/bucket/<i>interval</i>/agr/<i>metricType</i>?time=<i>from</i>,<i>to</i>&amp;location=<i>topLeftLat</i>,<i>topLeftLon</i>,<i>bottomRightLat</i>,<i>bottomRightLon</i></li>
<li>POST /api/indices/<i>indexName</i>/search?page_token=<i>token</i></li>
<li>GET /api/indices/<i>indexName</i>/docs/<i>docId</i></li>
<li>GET /api/indices/<i>indexName</i>/suggest/<i>input</i></li>
<li>GET /api/test?index=<i>indexName</i>&amp;count=<i>count</i></li>
</ul>`

// MountPoint holds information about the mounted endpoints.
type MountPoint struct {
	// Method is the name of the service method served by the mounted HTTP handler.
	Method string
	// Verb is the HTTP method used to match requests to the mounted handler.
	Verb string
	// Pattern is the HTTP request path pattern used to match requests to the
	// mounted handler.
	Pattern string

	handler http.HandlerFunc
}

// Server lists the search proxy endpoint HTTP handlers.
type Server struct {
	Mounts []*MountPoint

	searcher port.IndexSearcher
	mux      goahttp.Muxer
}

// NewServer instantiates HTTP handlers for all the search proxy endpoints.
func NewServer(searcher port.IndexSearcher, mux goahttp.Muxer) *Server {
	s := &Server{
		searcher: searcher,
		mux:      mux,
	}
	s.Mounts = []*MountPoint{
		{"Help", http.MethodGet, constants.APIPrefix, s.help},
		{"Help", http.MethodGet, constants.APIPrefix + "/", s.help},
		{"ListIndices", http.MethodGet, constants.APIPrefix + "/indices", s.listIndices},
		{"FetchDocuments", http.MethodGet, constants.APIPrefix + "/indices/{indexName}", s.fetchDocuments},
		{"AggregateBuckets", http.MethodGet, constants.APIPrefix + "/indices/{indexName}/bucket/{interval}/agr/{metricType}", s.aggregateBuckets},
		{"SearchDocuments", http.MethodPost, constants.APIPrefix + "/indices/{indexName}/search", s.searchDocuments},
		{"DocumentExists", http.MethodGet, constants.APIPrefix + "/indices/{indexName}/docs/{docId}", s.documentExists},
		{"Suggest", http.MethodGet, constants.APIPrefix + "/indices/{indexName}/suggest/{input}", s.suggest},
		{"SeedTestData", http.MethodGet, constants.APIPrefix + "/test", s.seedTestData},
		{"Livez", http.MethodGet, "/livez", s.livez},
		{"Readyz", http.MethodGet, "/readyz", s.readyz},
	}
	return s
}

// Mount configures the mux to serve the search proxy endpoints. Every
// handler records request metrics labelled with its pattern.
func Mount(mux goahttp.Muxer, s *Server) {
	for _, m := range s.Mounts {
		mux.Handle(m.Verb, m.Pattern, metrics.Middleware(m.Pattern)(m.handler).ServeHTTP)
	}
}

func (s *Server) help(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, helpPage)
}

func (s *Server) listIndices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	indices, err := s.searcher.ListIndices(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	encode(ctx, w, http.StatusOK, indices)
}

func (s *Server) fetchDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := s.mux.Vars(r)

	documents, err := s.searcher.FetchDocuments(ctx, params["indexName"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	encode(ctx, w, http.StatusOK, documents)
}

func (s *Server) aggregateBuckets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	criteria, err := paramsToBucketCriteria(s.mux.Vars(r), r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	buckets, err := s.searcher.AggregateBuckets(ctx, criteria)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	encode(ctx, w, http.StatusOK, buckets)
}

func (s *Server) searchDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := s.mux.Vars(r)

	var query json.RawMessage
	if err := goahttp.RequestDecoder(r).Decode(&query); err != nil && !stderrors.Is(err, io.EOF) {
		writeError(ctx, w, errors.NewValidation("invalid request body", err))
		return
	}

	criteria := model.SearchCriteria{
		Index:    params["indexName"],
		Query:    query,
		PageSize: constants.DefaultPageSize,
	}
	if token := r.URL.Query().Get("page_token"); token != "" {
		criteria.PageToken = &token
	}

	result, err := s.searcher.SearchDocuments(ctx, criteria)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	encode(ctx, w, http.StatusOK, result)
}

func (s *Server) documentExists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := s.mux.Vars(r)

	exists, err := s.searcher.DocumentExists(ctx, params["indexName"], params["docId"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	encode(ctx, w, http.StatusOK, exists)
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := s.mux.Vars(r)

	response, err := s.searcher.Suggest(ctx, params["indexName"], params["input"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	encode(ctx, w, http.StatusOK, response)
}

// seedTestData fills an index with generated sensor readings.
func (s *Server) seedTestData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	index, count, err := paramsToSeedRequest(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	indexed, err := s.searcher.BulkIndex(ctx, index, usecase.GenerateReadings(count, time.Now()))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	encode(ctx, w, http.StatusOK, map[string]int{"indexed": indexed})
}

// Check if the service is alive.
func (s *Server) livez(w http.ResponseWriter, r *http.Request) {
	slog.DebugContext(r.Context(), "livez")
	writeText(w, http.StatusOK, "OK")
}

// Check if the service is able to take inbound requests.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.searcher.IsReady(ctx); err != nil {
		slog.WarnContext(ctx, "service not ready", "error", err)
		writeText(w, http.StatusServiceUnavailable, "NOT READY")
		return
	}
	writeText(w, http.StatusOK, "OK")
}

// encode writes v as JSON with the goa response encoder.
func encode(ctx context.Context, w http.ResponseWriter, status int, v any) {
	ctx = context.WithValue(ctx, goahttp.ContentTypeKey, "application/json")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := goahttp.ResponseEncoder(ctx, w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	result := wrapError(ctx, err)
	encode(ctx, w, result.Status, result)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
