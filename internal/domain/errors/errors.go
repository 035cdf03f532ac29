package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidState        = errors.New("invalid state for operation")
	ErrNoPaymentMethod     = errors.New("no payment method configured")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAttestationTimeout  = errors.New("attestation not available within poll window")
	ErrReceiptTimeout      = errors.New("operation receipt not available within poll window")
	ErrFeeExceedsMaximum   = errors.New("computed fee exceeds caller maximum")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrUnsupportedChain    = errors.New("unsupported chain")
)

// Stable error codes returned in the API error envelope.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNoPaymentMethod     = "NO_PAYMENT_METHOD"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeAttestationTimeout  = "ATTESTATION_TIMEOUT"
	CodeFeeExceedsMaximum   = "FEE_EXCEEDS_MAXIMUM"
	CodeInvalidSignature    = "INVALID_SIGNATURE"
	CodeUnsupportedChain    = "UNSUPPORTED_CHAIN"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status and a stable code
type AppError struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		StatusCode: status,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func BadRequestWithCode(code, message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, code, message, err)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidState, message, ErrInvalidState)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// FromDomain maps a domain sentinel error to an AppError with its canonical
// code and status. Unknown errors map to an internal error so no raw upstream
// detail reaches the client.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound("resource not found")
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return BadRequest(err.Error())
	case errors.Is(err, ErrInvalidState):
		return Conflict(err.Error())
	case errors.Is(err, ErrInsufficientBalance):
		return BadRequestWithCode(CodeInsufficientBalance, "insufficient balance on source chain", err)
	case errors.Is(err, ErrNoPaymentMethod):
		return BadRequestWithCode(CodeNoPaymentMethod, "worker has no payment method configured", err)
	case errors.Is(err, ErrFeeExceedsMaximum):
		return BadRequestWithCode(CodeFeeExceedsMaximum, "computed USDC fee exceeds the supplied maximum", err)
	case errors.Is(err, ErrUnsupportedChain):
		return BadRequestWithCode(CodeUnsupportedChain, "unsupported chain", err)
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return Unauthorized("unauthorized")
	case errors.Is(err, ErrInvalidSignature):
		return NewAppError(http.StatusUnauthorized, CodeInvalidSignature, "invalid webhook signature", err)
	case errors.Is(err, ErrAttestationTimeout):
		return NewAppError(http.StatusGatewayTimeout, CodeAttestationTimeout, "attestation polling timed out", err)
	default:
		return InternalError(err)
	}
}
