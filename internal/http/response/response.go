package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-content/internal/modules/content/mutation"
	"github.com/yungbote/neurobridge-content/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// FailureEnvelope carries a recoverable write rejection back to the caller.
type FailureEnvelope struct {
	Error   APIError          `json:"error"`
	Failure *mutation.Failure `json:"failure"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// FailureStatus maps a failure code to its HTTP status.
func FailureStatus(code mutation.FailureCode) int {
	switch code {
	case mutation.CodeStaleContext, mutation.CodeStructuralChangeRejected:
		return http.StatusConflict
	case mutation.CodeSearchNotFound, mutation.CodeAmbiguousMatch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func RespondFailure(c *gin.Context, f *mutation.Failure) {
	c.JSON(FailureStatus(f.Code), FailureEnvelope{
		Error:   APIError{Message: f.Message, Code: string(f.Code)},
		Failure: f,
	})
}

// RespondWrite answers a write with 200 on success or the failure's status.
func RespondWrite(c *gin.Context, res *mutation.WriteResult) {
	if res != nil && res.Failure != nil {
		RespondFailure(c, res.Failure)
		return
	}
	RespondOK(c, res)
}

// RespondServiceError translates service errors into the error envelope.
func RespondServiceError(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	switch {
	case errors.Is(err, mutation.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, mutation.ErrValidation):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, mutation.ErrForbidden):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
}
