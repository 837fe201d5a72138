// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package httpclient

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

// loggingTransport logs every upstream round trip at debug level
type loggingTransport struct {
	next http.RoundTripper
}

// RoundTrip executes a single request, there is no retry
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		slog.DebugContext(req.Context(), "upstream request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start),
			"error", err,
		)
		return nil, err
	}

	slog.DebugContext(req.Context(), "upstream request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

// NewTransport creates the round tripper used to reach the search cluster
func NewTransport(config Config) http.RoundTripper {
	defaults := DefaultConfig()
	if config.ResponseTimeout <= 0 {
		config.ResponseTimeout = defaults.ResponseTimeout
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaults.DialTimeout
	}
	if config.MaxIdleConnsPerHost <= 0 {
		config.MaxIdleConnsPerHost = defaults.MaxIdleConnsPerHost
	}

	return &loggingTransport{
		next: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
			ResponseHeaderTimeout: config.ResponseTimeout,
			DialContext:           (&net.Dialer{Timeout: config.DialTimeout}).DialContext,
		},
	}
}
