package server

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"go.uber.org/zap"
)

// ErrorResponse is the body written by ErrorHandler. Stack is only set
// outside production, for unexpected failures that recorded where they
// happened.
type ErrorResponse struct {
	Message string  `json:"message"`
	Stack   *string `json:"stack"`
}

type stackError struct {
	err   error
	stack []byte
}

func (e *stackError) Error() string { return e.err.Error() }
func (e *stackError) Unwrap() error { return e.err }

// WithStack records the caller's stack on err. Errors that already carry one
// are returned unchanged.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	var se *stackError
	if errors.As(err, &se) {
		return err
	}
	return &stackError{err: err, stack: debug.Stack()}
}

func stackOf(err error) *string {
	var se *stackError
	if !errors.As(err, &se) || len(se.stack) == 0 {
		return nil
	}
	stack := string(se.stack)
	return &stack
}

// recovered keeps the stack of the panicking goroutine for ErrorHandler.
func recovered(_ echo.Context, err error, stack []byte) error {
	return &stackError{err: err, stack: stack}
}

func ErrorHandler(production bool, logger *logging.Service) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := err.Error()

		var he *echo.HTTPError
		expected := errors.As(err, &he)
		if expected {
			if he.Code >= http.StatusBadRequest {
				status = he.Code
			}
			message = fmt.Sprint(he.Message)
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Warn("request rejected", fields...)
		}

		body := ErrorResponse{Message: message}
		if !production && !expected && status == http.StatusInternalServerError {
			body.Stack = stackOf(err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}
