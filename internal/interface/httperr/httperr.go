// Package httperr renders application errors as response envelopes.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/pixel-news/internal/domain/apperr"
	"github.com/oksasatya/pixel-news/pkg/response"
)

var statuses = map[apperr.Kind]int{
	apperr.KindUnauthenticated: http.StatusUnauthorized,
	apperr.KindForbidden:       http.StatusForbidden,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindInvalidInput:    http.StatusBadRequest,
	apperr.KindConflict:        http.StatusConflict,
	apperr.KindPartialFailure:  http.StatusInternalServerError,
	apperr.KindUpstream:        http.StatusBadGateway,
	apperr.KindTimeout:         http.StatusGatewayTimeout,
	apperr.KindInternal:        http.StatusInternalServerError,
}

// Status maps an error kind to its HTTP status.
func Status(kind apperr.Kind) int {
	if s, ok := statuses[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Write aborts the request with the envelope for err. Unclassified errors never leak
// their text to the client.
func Write(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := "internal server error"
	var e *apperr.Error
	if errors.As(err, &e) && kind != apperr.KindInternal {
		msg = e.Message
	}
	_ = c.Error(err)
	response.Abort(c, Status(kind), msg, response.ErrorBody{Code: string(kind)})
}

// Invalid aborts with 400 and per-field details.
func Invalid(c *gin.Context, message string, details map[string]string) {
	response.Abort(c, http.StatusBadRequest, message, response.ErrorBody{
		Code:    string(apperr.KindInvalidInput),
		Details: details,
	})
}
