package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-talsangi/tourist-app/types"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), types.ErrInsufficientFunds},
		{"revert", errors.New("execution reverted: Receiver does not exist"), types.ErrLedgerRejected},
		{"connection refused", errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), types.ErrNetwork},
		{"timeout", errors.New("context deadline exceeded"), types.ErrNetwork},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Classify("recordUPIPayment", tc.err)
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, types.ErrorCode(err))
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, Classify("getReceiver", nil))
}

func TestClassify_PassesTypedThrough(t *testing.T) {
	typed := &types.Error{Code: types.ErrInvalidAmount, Message: "bad amount"}
	assert.Same(t, error(typed), Classify("recordUPIPayment", typed))

	wrapped := fmt.Errorf("submit: %w", typed)
	assert.Equal(t, types.ErrInvalidAmount, types.ErrorCode(Classify("recordUPIPayment", wrapped)))
}

func TestClassify_RevertReasonVerbatim(t *testing.T) {
	err := Classify("addReceiver", errors.New("execution reverted: Empty UPI id or name"))

	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, types.ErrLedgerRejected, typed.Code)
	assert.Equal(t, "Empty UPI id or name", typed.Reason)
	assert.Contains(t, typed.Error(), "Empty UPI id or name")
}

func TestClassify_RevertWithoutReason(t *testing.T) {
	err := Classify("addReceiver", errors.New("execution reverted"))

	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, types.ErrLedgerRejected, typed.Code)
	assert.NotEmpty(t, typed.Reason)
}
