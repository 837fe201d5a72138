// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/sensorhub/search-proxy/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name                 string
		inputError           error
		expectedName         string
		expectedStatus       int
		expectedErrorMessage string
	}{
		{
			name:                 "validation error",
			inputError:           pkgerrors.NewValidation("invalid input"),
			expectedName:         "BadRequest",
			expectedStatus:       http.StatusBadRequest,
			expectedErrorMessage: "invalid input",
		},
		{
			name:                 "validation error with wrapped error",
			inputError:           pkgerrors.NewValidation("validation failed", errors.New("underlying error")),
			expectedName:         "BadRequest",
			expectedStatus:       http.StatusBadRequest,
			expectedErrorMessage: "validation failed: underlying error",
		},
		{
			name:                 "not found error",
			inputError:           pkgerrors.NewNotFound("index not found"),
			expectedName:         "NotFound",
			expectedStatus:       http.StatusNotFound,
			expectedErrorMessage: "index not found",
		},
		{
			name:                 "service unavailable error",
			inputError:           pkgerrors.NewServiceUnavailable("service unavailable", errors.New("connection refused")),
			expectedName:         "ServiceUnavailable",
			expectedStatus:       http.StatusServiceUnavailable,
			expectedErrorMessage: "service unavailable: connection refused",
		},
		{
			name:                 "malformed upstream response",
			inputError:           pkgerrors.NewMalformedResponse("aggregation agg_per_time is missing"),
			expectedName:         "BadGateway",
			expectedStatus:       http.StatusBadGateway,
			expectedErrorMessage: "aggregation agg_per_time is missing",
		},
		{
			name:                 "typed error wrapped by a layer keeps its class",
			inputError:           fmt.Errorf("bucket aggregation failed: %w", pkgerrors.NewNotFound("no such index [x]")),
			expectedName:         "NotFound",
			expectedStatus:       http.StatusNotFound,
			expectedErrorMessage: "no such index [x]",
		},
		{
			name:                 "unexpected error becomes internal server error",
			inputError:           pkgerrors.NewUnexpected("unexpected error"),
			expectedName:         "InternalServerError",
			expectedStatus:       http.StatusInternalServerError,
			expectedErrorMessage: "unexpected error",
		},
		{
			name:                 "generic error becomes internal server error",
			inputError:           errors.New("generic error"),
			expectedName:         "InternalServerError",
			expectedStatus:       http.StatusInternalServerError,
			expectedErrorMessage: "generic error",
		},
		{
			name:                 "nil error becomes internal server error",
			inputError:           nil,
			expectedName:         "InternalServerError",
			expectedStatus:       http.StatusInternalServerError,
			expectedErrorMessage: "unknown error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := wrapError(context.Background(), tc.inputError)

			assert.NotNil(t, result)
			assert.Equal(t, tc.expectedName, result.Name)
			assert.Equal(t, tc.expectedStatus, result.Status)
			assert.Equal(t, tc.expectedErrorMessage, result.Message)
		})
	}
}
