package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/shared/errors"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{Success: true, Data: data, Message: message})
}

func writeError(c *gin.Context, status int, info ErrorInfo) {
	c.JSON(status, APIResponse{Success: false, Error: &info})
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	writeOK(c, statusCode, message, data)
}

// CreatedResponse replies 201; the optional message defaults to "Created".
func CreatedResponse(c *gin.Context, data interface{}, message ...string) {
	msg := "Created"
	if len(message) > 0 {
		msg = message[0]
	}
	writeOK(c, http.StatusCreated, msg, data)
}

func OKResponse(c *gin.Context, data interface{}) {
	writeOK(c, http.StatusOK, "", data)
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	writeError(c, statusCode, ErrorInfo{Type: "error", Message: message})
}

// ErrorResponseWithError maps err to a status and body. Only AppErrors are
// shown to the client; anything else becomes an opaque 500.
func ErrorResponseWithError(c *gin.Context, err error) {
	status, info := describeError(err)
	writeError(c, status, info)
}

func describeError(err error) (int, ErrorInfo) {
	appErr := errors.GetAppError(err)
	if appErr == nil {
		return http.StatusInternalServerError, ErrorInfo{
			Type:    string(errors.ErrorTypeInternal),
			Message: "Internal server error occurred",
		}
	}
	return appErr.Code, ErrorInfo{
		Type:    string(appErr.Type),
		Message: appErr.Message,
		Details: appErr.Details,
	}
}
