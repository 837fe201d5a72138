// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/sensorhub/search-proxy/internal/domain/port"
	"github.com/sensorhub/search-proxy/internal/infrastructure/mock"
	"github.com/sensorhub/search-proxy/internal/infrastructure/opensearch"
	usecase "github.com/sensorhub/search-proxy/internal/service"
	"github.com/sensorhub/search-proxy/pkg/httpclient"
)

const defaultSearchHost = "127.0.0.1:9200"

// SearcherImpl injects the index searcher implementation, wrapped in the
// validating use-case layer
func SearcherImpl(ctx context.Context) port.IndexSearcher {

	var (
		indexSearcher port.IndexSearcher
		err           error
	)

	// Search source implementation configuration
	searchSource := os.Getenv("SEARCH_SOURCE")
	if searchSource == "" {
		searchSource = "opensearch"
	}

	searchHost := os.Getenv("ESHOST")
	if searchHost == "" {
		searchHost = defaultSearchHost
	}

	transportConfig := httpclient.DefaultConfig()
	if searchTimeout := os.Getenv("ESTIMEOUT"); searchTimeout != "" {
		timeout, errParse := time.ParseDuration(searchTimeout)
		if errParse != nil {
			log.Fatalf("invalid ESTIMEOUT duration %s: %v", searchTimeout, errParse)
		}
		transportConfig.ResponseTimeout = timeout
	}

	switch searchSource {
	case "mock":
		slog.InfoContext(ctx, "initializing mock index searcher")
		indexSearcher = mock.NewMockIndexSearcher()

	case "opensearch":
		slog.InfoContext(ctx, "initializing opensearch index searcher",
			"host", searchHost,
			"timeout", transportConfig.ResponseTimeout,
		)
		opensearchConfig := opensearch.Config{
			URL:       searchHost,
			Username:  os.Getenv("ESUSER"),
			Password:  os.Getenv("ESPASSWORD"),
			Transport: transportConfig,
		}

		indexSearcher, err = opensearch.NewSearcher(ctx, opensearchConfig)
		if err != nil {
			log.Fatalf("failed to initialize OpenSearch searcher: %v", err)
		}

	default:
		log.Fatalf("unsupported search implementation: %s", searchSource)
	}

	return usecase.NewIndexSearch(indexSearcher)
}
