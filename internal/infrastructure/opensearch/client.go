// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sensorhub/search-proxy/internal/metrics"
	"github.com/sensorhub/search-proxy/pkg/errors"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

type httpClient struct {
	client *opensearchapi.Client
}

func (c *httpClient) Search(ctx context.Context, index string, query []byte) (*SearchResponse, error) {

	slog.DebugContext(ctx, "executing opensearch search",
		"index", index,
		"query", string(query),
	)

	searchRequest := &opensearchapi.SearchReq{
		Indices: []string{index},
		Body:    bytes.NewReader(query),
	}

	var raw json.RawMessage
	if _, err := c.do(ctx, "search", searchRequest, &raw); err != nil {
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.NewMalformedResponse("failed to decode search response", err)
	}
	result.Raw = raw

	slog.DebugContext(ctx, "opensearch search returned",
		"index", index,
		"hits", len(result.Hits.Hits),
		"total_hits", result.Hits.Total.Value,
	)
	return &result, nil
}

func (c *httpClient) CatIndices(ctx context.Context) ([]CatIndex, error) {
	catRequest := &opensearchapi.CatIndicesReq{
		Header: http.Header{"Accept": []string{"application/json"}},
	}

	var indices []CatIndex
	if _, err := c.do(ctx, "cat_indices", catRequest, &indices); err != nil {
		return nil, err
	}
	return indices, nil
}

func (c *httpClient) Exists(ctx context.Context, index, id string) (bool, error) {
	existsRequest := &opensearchapi.DocumentExistsReq{
		Index:      index,
		DocumentID: id,
	}

	status, err := c.do(ctx, "exists", existsRequest, nil)
	if status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *httpClient) Bulk(ctx context.Context, index string, body []byte) (*BulkResponse, error) {
	bulkRequest := &opensearchapi.BulkReq{
		Index: index,
		Body:  bytes.NewReader(body),
	}

	var result BulkResponse
	if _, err := c.do(ctx, "bulk", bulkRequest, &result); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "opensearch bulk returned",
		"index", index,
		"items", len(result.Items),
		"errors", result.Errors,
	)
	return &result, nil
}

func (c *httpClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, "ping", &opensearchapi.PingReq{}, nil)
	return err
}

// do performs the request and classifies any failure into the pkg/errors
// taxonomy. It returns the HTTP status when the cluster answered.
func (c *httpClient) do(ctx context.Context, operation string, req opensearch.Request, out any) (int, error) {
	start := time.Now()

	response, errDo := c.client.Client.Do(ctx, req, out)
	status := 0
	if response != nil {
		status = response.StatusCode
		if response.Body != nil {
			defer response.Body.Close()
		}
	}

	err := classifyError(operation, response, errDo)
	metrics.ObserveUpstream(operation, start, err)
	if err != nil && status != http.StatusNotFound {
		slog.ErrorContext(ctx, "opensearch request failed",
			"operation", operation,
			"status", status,
			"error", err,
		)
	}
	return status, err
}

// classifyError maps transport failures and engine error statuses to the
// error types the HTTP layer turns into responses.
func classifyError(operation string, response *opensearch.Response, err error) error {
	if response == nil {
		if err == nil {
			return nil
		}
		return errors.NewServiceUnavailable("search engine is unreachable", err)
	}

	if !response.IsError() {
		if err != nil {
			return errors.NewMalformedResponse(fmt.Sprintf("failed to decode %s response", operation), err)
		}
		return nil
	}

	reason := engineReason(response)
	switch {
	case response.StatusCode == http.StatusBadRequest:
		return errors.NewValidation("search engine rejected the request", reason)
	case response.StatusCode == http.StatusNotFound:
		return errors.NewNotFound("index or document not found", reason)
	case response.StatusCode == http.StatusTooManyRequests,
		response.StatusCode >= http.StatusBadGateway && response.StatusCode <= http.StatusGatewayTimeout:
		return errors.NewServiceUnavailable("search engine is unavailable", reason)
	default:
		return errors.NewUnexpected(fmt.Sprintf("search engine %s failed", operation), reason)
	}
}

// engineReason extracts the error reason from a failed response body.
func engineReason(response *opensearch.Response) error {
	status := fmt.Errorf("status %d", response.StatusCode)
	if response.Body == nil {
		return status
	}

	body, err := io.ReadAll(response.Body)
	if err != nil || len(body) == 0 {
		return status
	}

	var engineError ErrorResponse
	if err := json.Unmarshal(body, &engineError); err != nil || engineError.Error.Reason == "" {
		return fmt.Errorf("status %d: %s", response.StatusCode, string(body))
	}
	return fmt.Errorf("%s: %s", engineError.Error.Type, engineError.Error.Reason)
}
