// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

type requestIDHeaderType string

// RequestIDHeader is the header name for the request ID
const RequestIDHeader requestIDHeaderType = "X-REQUEST-ID"

const (
	// APIPrefix is the path prefix every proxy route is mounted under
	APIPrefix = "/api"

	// AllowOriginHeader is the CORS header set on every response
	AllowOriginHeader = "Access-Control-Allow-Origin"
)
