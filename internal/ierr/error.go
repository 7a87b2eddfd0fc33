package ierr

import "encoding/json"

type ErrorCode string

const (
	ErrorCodeInvalidArgument    ErrorCode = "InvalidArgument"
	ErrorCodeNotFound           ErrorCode = "NotFound"
	ErrorCodeFailedPrecondition ErrorCode = "FailedPrecondition"
	ErrorCodePermissionDenied   ErrorCode = "PermissionDenied"
	ErrorCodeUnauthenticated    ErrorCode = "Unauthenticated"
	ErrorCodeInternal           ErrorCode = "Internal"
)

// AuthReason qualifies an Unauthenticated error raised during the
// connection handshake.
type AuthReason string

const (
	AuthReasonMissing AuthReason = "missing"
	AuthReasonInvalid AuthReason = "invalid"
	AuthReasonExpired AuthReason = "expired"
)

type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Reason  AuthReason      `json:"reason,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	cause error
}

func New(code ErrorCode, cause error) Error {
	return Error{
		Code:    code,
		Message: cause.Error(),
		cause:   cause,
	}
}

func NewAuth(reason AuthReason, cause error) Error {
	return Error{
		Code:    ErrorCodeUnauthenticated,
		Message: cause.Error(),
		Reason:  reason,
		cause:   cause,
	}
}

func (e Error) Error() string {
	return string(e.Code) + ": " + e.cause.Error()
}

func (e Error) Unwrap() error {
	return e.cause
}
