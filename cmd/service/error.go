// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/sensorhub/search-proxy/pkg/errors"
)

// ErrorResult is the JSON body written for a failed request
type ErrorResult struct {
	// Name of the error class
	Name string `json:"name"`
	// Message describing the failure
	Message string `json:"message"`
	// Status is the HTTP status code of the response
	Status int `json:"-"`
}

func wrapError(ctx context.Context, err error) *ErrorResult {

	f := func(err error) *ErrorResult {
		if err == nil {
			return &ErrorResult{
				Name:    "InternalServerError",
				Message: "unknown error",
				Status:  http.StatusInternalServerError,
			}
		}

		var (
			validation         errors.Validation
			notFound           errors.NotFound
			serviceUnavailable errors.ServiceUnavailable
			malformed          errors.MalformedResponse
		)
		switch {
		case stderrors.As(err, &validation):
			return &ErrorResult{Name: "BadRequest", Message: validation.Error(), Status: http.StatusBadRequest}
		case stderrors.As(err, &notFound):
			return &ErrorResult{Name: "NotFound", Message: notFound.Error(), Status: http.StatusNotFound}
		case stderrors.As(err, &serviceUnavailable):
			return &ErrorResult{Name: "ServiceUnavailable", Message: serviceUnavailable.Error(), Status: http.StatusServiceUnavailable}
		case stderrors.As(err, &malformed):
			return &ErrorResult{Name: "BadGateway", Message: malformed.Error(), Status: http.StatusBadGateway}
		default:
			return &ErrorResult{Name: "InternalServerError", Message: err.Error(), Status: http.StatusInternalServerError}
		}
	}

	slog.ErrorContext(ctx, "request failed",
		"error", err,
	)
	return f(err)
}
