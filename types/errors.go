package types

import "errors"

// VerifierError is the typed error returned by all payverify operations.
type VerifierError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *VerifierError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrConfigError          = "CONFIG_ERROR"
	ErrInvalidAddress       = "INVALID_ADDRESS"
	ErrRecipientMismatch    = "RECIPIENT_MISMATCH"
	ErrAlreadyPaid          = "ALREADY_PAID"
	ErrConfirmationTimeout  = "CONFIRMATION_TIMEOUT"
	ErrUnknownReceiptStatus = "UNKNOWN_RECEIPT_STATUS"
	ErrDecodeFailed         = "DECODE_FAILED"
	ErrNetworkError         = "NETWORK_ERROR"
	ErrDuplicateCheckFailed = "DUPLICATE_CHECK_FAILED"
)

// IsCode reports whether err is a *VerifierError carrying the given code.
func IsCode(err error, code string) bool {
	var ve *VerifierError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}
