package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainApp "line-of-credit/internal/domain/application"
)

const (
	msgNotFound       = "Application not found."
	msgDuplicate      = "Duplicate application detected."
	msgConflict       = "Application was modified by a concurrent request. Please retry."
	msgUnauthorized   = "Unauthorized access. Admin privileges are required."
	msgExceeds        = "Disbursement amount exceeds requested amount."
	msgInternal       = "Internal server error."
	msgNoEndpoint     = "Endpoint not found."
	msgTooManyRequest = "Too many requests."
)

// errorStatus maps an error onto the status code and body the API promises.
// Anything unrecognised is a 500 with no detail.
func errorStatus(err error) (int, ErrorResponse) {
	var (
		re *requestError
		ve *domainApp.ValidationError
		te *domainApp.TransitionError
	)
	switch {
	case errors.As(err, &re):
		return http.StatusBadRequest, ErrorResponse{Error: re.headline, Details: re.details}
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: ve.Error()}
	case errors.As(err, &te):
		return http.StatusBadRequest, ErrorResponse{Error: te.Message()}
	case errors.Is(err, domainApp.ErrDisbursementExceedsRequested):
		return http.StatusBadRequest, ErrorResponse{Error: msgExceeds}
	case errors.Is(err, domainApp.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: msgNotFound}
	case errors.Is(err, domainApp.ErrUnauthorized):
		return http.StatusForbidden, ErrorResponse{Error: msgUnauthorized}
	case errors.Is(err, domainApp.ErrDuplicate):
		return http.StatusConflict, ErrorResponse{Error: msgDuplicate}
	case errors.Is(err, domainApp.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: msgConflict}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		// the API has no method-specific routes; a wrong method is an unknown endpoint
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, ErrorResponse{Error: msgNoEndpoint}
		case http.StatusTooManyRequests:
			return he.Code, ErrorResponse{Error: msgTooManyRequest}
		case http.StatusInternalServerError:
			return he.Code, ErrorResponse{Error: msgInternal}
		default:
			return he.Code, ErrorResponse{Error: http.StatusText(he.Code)}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: msgInternal}
}

// NewErrorHandler is the echo.HTTPErrorHandler for the API. 5xx causes are logged, never sent.
func NewErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, body := errorStatus(err)
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err))
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}
