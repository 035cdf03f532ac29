package response

import (
	"github.com/gin-gonic/gin"

	domainerrors "payroll-chain.backend/internal/domain/errors"
)

// Envelope is the success wrapper returned by every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorBody is the error wrapper returned by every endpoint.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable code alongside the human-readable message.
type ErrorDetail struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
}

// Success sends a success envelope
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// SuccessWithMessage sends a success envelope with a message
func SuccessWithMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// Paginated sends a success envelope with pagination metadata
func Paginated(c *gin.Context, status int, data interface{}, meta interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data, Meta: meta})
}

// Error maps any error to the error envelope. Domain sentinels get their
// canonical code and status; everything else becomes a 500 with no upstream
// detail leaked.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	c.JSON(appErr.StatusCode, ErrorBody{
		Error: ErrorDetail{
			Message:    appErr.Message,
			Code:       appErr.Code,
			StatusCode: appErr.StatusCode,
		},
	})
}

// AbortError writes the error envelope and stops the handler chain.
func AbortError(c *gin.Context, err error) {
	appErr := domainerrors.FromDomain(err)
	c.AbortWithStatusJSON(appErr.StatusCode, ErrorBody{
		Error: ErrorDetail{
			Message:    appErr.Message,
			Code:       appErr.Code,
			StatusCode: appErr.StatusCode,
		},
	})
}
