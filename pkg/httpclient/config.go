// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package httpclient

import (
	"time"
)

// Config holds the configuration for the upstream HTTP transport
type Config struct {
	// ResponseTimeout bounds the wait for response headers
	ResponseTimeout time.Duration

	// DialTimeout bounds connection establishment
	DialTimeout time.Duration

	// MaxIdleConnsPerHost is the keep-alive pool size per upstream host
	MaxIdleConnsPerHost int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		ResponseTimeout:     30 * time.Second,
		DialTimeout:         3 * time.Second,
		MaxIdleConnsPerHost: 10,
	}
}
