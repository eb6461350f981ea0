// Package controllers maps HTTP requests onto the services and service
// errors onto status codes.
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/ctx"
)

// respondError is the one place service error kinds become HTTP statuses.
func respondError(cx *ctx.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		cx.Error(http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInsufficientStock):
		cx.Error(http.StatusBadRequest, "Insufficient stock")
	case errors.Is(err, services.ErrInvalidArgument):
		cx.Error(http.StatusBadRequest, detail(err, services.ErrInvalidArgument))
	case errors.Is(err, services.ErrUnauthorized):
		cx.Error(http.StatusForbidden, "Forbidden")
	case errors.Is(err, services.ErrConflict):
		cx.Error(http.StatusConflict, "Already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		cx.Error(http.StatusUnauthorized, "Invalid credentials")
	default:
		cx.Logger().Error("request failed", "error", err, "path", cx.R.URL.Path)
		cx.Error(http.StatusInternalServerError, "server error")
	}
}

// detail returns the text after kind in err's message, e.g.
// "quantity must be positive, got 0".
func detail(err, kind error) string {
	msg := err.Error()
	marker := kind.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
