package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vijay-talsangi/tourist-app/types"
)

const revertMarker = "execution reverted"

// Classify maps a raw RPC or node error onto the domain taxonomy. Already
// typed errors pass through untouched.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return &types.Error{
			Code:    types.ErrInsufficientFunds,
			Message: fmt.Sprintf("%s: account cannot cover value and gas", op),
		}
	case strings.Contains(msg, revertMarker):
		return &types.Error{
			Code:    types.ErrLedgerRejected,
			Message: fmt.Sprintf("%s: rejected by the ledger", op),
			Reason:  revertReason(msg),
		}
	default:
		return &types.Error{
			Code:    types.ErrNetwork,
			Message: fmt.Sprintf("%s: %v", op, err),
		}
	}
}

// revertReason extracts the contract's reason string verbatim, falling back
// to the whole message when the node did not include one.
func revertReason(msg string) string {
	i := strings.Index(msg, revertMarker)
	reason := strings.TrimPrefix(msg[i+len(revertMarker):], ":")
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return msg
	}
	return reason
}
