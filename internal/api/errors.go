// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/embedding"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// errorResponse is the HTTP rendering of an engine error.
type errorResponse struct {
	status  int
	code    string
	message string
	details interface{}
}

// classifyError maps engine errors to status codes:
//
//	*recommend.InvalidQueryError        400 INVALID_QUERY
//	*validation.RequestValidationError  400 VALIDATION_FAILED
//	*catalog.UnknownItemError           404 UNKNOWN_ITEM
//	*embedding.UnavailableError         503 FEATURE_UNAVAILABLE
//	recommend.ErrCatalogNotReady        503 CATALOG_NOT_READY
//	context.DeadlineExceeded            504 TIMEOUT
//	context.Canceled                    408 REQUEST_CANCELLED
//	anything else                       500 INTERNAL_ERROR
func classifyError(err error) errorResponse {
	var (
		invalid     *recommend.InvalidQueryError
		validateErr *validation.RequestValidationError
		unknown     *catalog.UnknownItemError
		unavailable *embedding.UnavailableError
	)

	switch {
	case errors.As(err, &invalid):
		return errorResponse{
			status:  http.StatusBadRequest,
			code:    ErrCodeInvalidQuery,
			message: err.Error(),
			details: map[string]string{"field": invalid.Field, "reason": invalid.Reason},
		}
	case errors.As(err, &validateErr):
		return errorResponse{
			status:  http.StatusBadRequest,
			code:    ErrCodeValidationFailed,
			message: validateErr.Error(),
			details: validateErr.Details(),
		}
	case errors.As(err, &unknown):
		return errorResponse{
			status:  http.StatusNotFound,
			code:    ErrCodeUnknownItem,
			message: err.Error(),
			details: map[string][]string{"ids": unknown.IDs},
		}
	case errors.As(err, &unavailable):
		// the cause may carry upstream text; only the reason is public
		return errorResponse{
			status:  http.StatusServiceUnavailable,
			code:    ErrCodeFeatureUnavailable,
			message: "text search is currently unavailable",
			details: map[string]string{"reason": string(unavailable.Reason)},
		}
	case errors.Is(err, recommend.ErrCatalogNotReady):
		return errorResponse{
			status:  http.StatusServiceUnavailable,
			code:    ErrCodeCatalogNotReady,
			message: "catalog is not loaded yet",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return errorResponse{
			status:  http.StatusGatewayTimeout,
			code:    ErrCodeTimeout,
			message: "request timed out",
		}
	case errors.Is(err, context.Canceled):
		return errorResponse{
			status:  http.StatusRequestTimeout,
			code:    ErrCodeRequestCancelled,
			message: "request cancelled",
		}
	default:
		return errorResponse{
			status:  http.StatusInternalServerError,
			code:    ErrCodeInternalError,
			message: "internal server error",
		}
	}
}

// respondEngineError writes err using classifyError. Unexpected errors are
// logged; their text never reaches the client.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	resp := classifyError(err)
	if resp.status == http.StatusInternalServerError {
		logging.CtxErr(r.Context(), err).Str("path", r.URL.Path).Msg("Unhandled API error")
	}
	NewResponseWriter(w, r).ErrorWithDetails(resp.status, resp.code, resp.message, resp.details)
}
