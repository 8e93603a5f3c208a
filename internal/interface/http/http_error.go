package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/mars-recycler/internal/domain/recycler"
	apperrors "github.com/yanqian/mars-recycler/pkg/errors"
)

// Error codes carried in the "code" field of every error body.
const (
	codeInvalidRequest = "invalid_request"
	codeNotFound       = "not_found"
	codeInternal       = "internal_error"

	internalMessage = "something went wrong"
)

// HTTPError is an error that knows its status and wire code.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// invalidRequest is the 400 returned for any malformed /api/process body.
func invalidRequest(err error) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Code: codeInvalidRequest, Message: recycler.InvalidInputMessage, Err: err}
}

func notFound() *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Code: codeNotFound, Message: "not found"}
}

// fromDomainError maps service errors onto HTTP. Unknown errors become 500s.
func fromDomainError(err error) *HTTPError {
	if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		return &HTTPError{Status: http.StatusBadRequest, Code: codeInvalidRequest, Message: apperrors.MessageOf(err), Err: err}
	}
	return asHTTPError(err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{Status: http.StatusInternalServerError, Code: codeInternal, Message: internalMessage, Err: err}
}

// abortWithError hands err to errorHandlingMiddleware, which renders the body.
func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// errorBody keeps "error" a plain string so the frontend can render it directly.
func errorBody(code, message string) gin.H {
	return gin.H{"error": message, "code": code}
}
