// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sensorhub/search-proxy/cmd/service"
	"github.com/sensorhub/search-proxy/internal/domain/port"
	"github.com/sensorhub/search-proxy/internal/metrics"
	"github.com/sensorhub/search-proxy/internal/middleware"

	"goa.design/clue/debug"
	goahttp "goa.design/goa/v3/http"
)

// newHandler builds the mux with every endpoint mounted and wraps it in the
// middleware chain.
func newHandler(ctx context.Context, searcher port.IndexSearcher, dbg bool) http.Handler {

	// Build the service HTTP request multiplexer and mount debug and profiler
	// endpoints in debug mode.
	var mux goahttp.Muxer
	{
		mux = goahttp.NewMuxer()
		if dbg {
			// Mount pprof handlers for memory profiling under /debug/pprof.
			debug.MountPprofHandlers(debug.Adapt(mux))
			// Mount /debug endpoint to enable or disable debug logs at runtime.
			debug.MountDebugLogEnabler(debug.Adapt(mux))
		}
	}

	server := service.NewServer(searcher, mux)
	service.Mount(mux, server)
	mux.Handle(http.MethodGet, "/metrics", metrics.Handler().ServeHTTP)

	for _, m := range server.Mounts {
		slog.InfoContext(ctx, "HTTP endpoint mounted",
			"method", m.Method,
			"verb", m.Verb,
			"pattern", m.Pattern,
		)
	}

	var handler http.Handler = mux

	// CORS answers preflights directly; the request ID wraps it so those
	// responses carry an ID too
	handler = middleware.CORSMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)

	if dbg {
		// Log query and response bodies if debug logs are enabled.
		handler = debug.HTTP()(handler)
	}

	return handler
}

// handleHTTPServer starts configures and starts a HTTP server on the given
// URL. It shuts down the server if any error is received in the error channel.
func handleHTTPServer(ctx context.Context, host string, searcher port.IndexSearcher, wg *sync.WaitGroup, errc chan error, dbg bool) {

	handler := newHandler(ctx, searcher, dbg)

	// Start HTTP server using default configuration, change the code to
	// configure the server as required by your service.
	srv := &http.Server{Addr: host, Handler: handler, ReadHeaderTimeout: time.Second * 60}

	(*wg).Add(1)
	go func() {
		defer (*wg).Done()

		// Start HTTP server in a separate goroutine.
		go func() {
			slog.InfoContext(ctx, "HTTP server listening", "host", host)
			errc <- srv.ListenAndServe()
		}()

		<-ctx.Done()
		slog.InfoContext(ctx, "shutting down HTTP server", "host", host)

		// Shutdown gracefully with a 30s timeout.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to shutdown HTTP server", "error", err)
		}
	}()
}
