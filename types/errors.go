package types

import "errors"

// Error is the typed outcome every component returns for domain failures,
// so callers branch on Code instead of parsing messages.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Reason carries the ledger revert reason verbatim for LEDGER_REJECTED.
	Reason string `json:"reason,omitempty"`
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return e.Message + ": " + e.Reason
	}
	return e.Message
}

// Error codes.
const (
	ErrInvalidIdentifierFormat = "INVALID_IDENTIFIER_FORMAT"
	ErrInvalidAmount           = "INVALID_AMOUNT"
	ErrInvalidReference        = "INVALID_REFERENCE"
	ErrReceiverNotFound        = "RECEIVER_NOT_FOUND"
	ErrWalletNotConnected      = "WALLET_NOT_CONNECTED"
	ErrWrongChain              = "WRONG_CHAIN"
	ErrUserRejected            = "USER_REJECTED"
	ErrInsufficientFunds       = "INSUFFICIENT_FUNDS"
	ErrNetwork                 = "NETWORK_ERROR"
	ErrLedgerRejected          = "LEDGER_REJECTED"
	ErrNoPaymentHandler        = "NO_PAYMENT_HANDLER"
	ErrOperationInProgress     = "OPERATION_IN_PROGRESS"
	ErrSessionClosed           = "SESSION_CLOSED"
	ErrInclusionTimeout        = "INCLUSION_TIMEOUT"
	ErrConfig                  = "CONFIG_ERROR"
)

// ErrorCode extracts the domain error code, or "" for untyped errors.
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
