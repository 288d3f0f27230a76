package registry

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-talsangi/tourist-app/types"
)

func blockedPendingTx() *PendingTx {
	return NewPendingTx(common.Hash{0x01}, func(ctx context.Context) (*Inclusion, error) {
		<-ctx.Done()
		return nil, Classify("await inclusion", ctx.Err())
	})
}

func TestAwait_Included(t *testing.T) {
	want := &Inclusion{TxHash: common.Hash{0x02}, BlockNumber: 7}
	p := NewPendingTx(common.Hash{0x02}, func(context.Context) (*Inclusion, error) {
		return want, nil
	})

	inc, err := Await(context.Background(), p, time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, want, inc)
}

func TestAwait_Timeout(t *testing.T) {
	inc, err := Await(context.Background(), blockedPendingTx(), 20*time.Millisecond, nil)
	require.Error(t, err)
	assert.Nil(t, inc)
	assert.Equal(t, types.ErrInclusionTimeout, types.ErrorCode(err))
}

func TestAwait_CallerCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Await(ctx, blockedPendingTx(), time.Second, nil)
	require.Error(t, err)
	assert.NotEqual(t, types.ErrInclusionTimeout, types.ErrorCode(err))
}

func TestAwait_SessionClosed(t *testing.T) {
	done := make(chan struct{})
	close(done)

	inc, err := Await(context.Background(), blockedPendingTx(), time.Second, done)
	require.Error(t, err)
	assert.Nil(t, inc)
	assert.Equal(t, types.ErrSessionClosed, types.ErrorCode(err))
}

func writeOpts(addr common.Address) *bind.TransactOpts {
	return &bind.TransactOpts{From: addr}
}

func bigIntPaise(v int64) *big.Int {
	return big.NewInt(v)
}

func TestFake_ReceiverLifecycle(t *testing.T) {
	ctx := context.Background()
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	f := NewFake(11155111)

	id, exists, err := f.FindReceiverIDByUPI(ctx, "shop@upi")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, id.IsZero())

	pending, err := f.AddReceiver(ctx, writeOpts(owner), "shop@upi", "Chai Stall")
	require.NoError(t, err)

	inc, err := pending.Wait(ctx)
	require.NoError(t, err)
	require.False(t, inc.ReceiverID.IsZero())

	rcv, err := f.GetReceiver(ctx, inc.ReceiverID)
	require.NoError(t, err)
	assert.True(t, rcv.Exists)
	assert.Equal(t, "shop@upi", rcv.UPIID)
	assert.Equal(t, "Chai Stall", rcv.Name)
	assert.Equal(t, owner, rcv.AddedBy)

	// Alias lookup is case-insensitive, like the contract's stored mapping.
	id, exists, err = f.FindReceiverIDByUPI(ctx, "SHOP@UPI")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, inc.ReceiverID, id)
}

func TestFake_UnknownReceiverIsSentinel(t *testing.T) {
	f := NewFake(11155111)

	id, err := types.ParseReceiverID("0x" + strings.Repeat("11", 32))
	require.NoError(t, err)

	rcv, err := f.GetReceiver(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, rcv.Exists)
	assert.Equal(t, id, rcv.ID)
}

func TestFake_RecordPaymentRevertsForUnknownReceiver(t *testing.T) {
	f := NewFake(11155111)
	from := common.HexToAddress("0x2222222222222222222222222222222222222222")

	var unknown types.ReceiverID
	unknown[0] = 0xff

	_, err := f.RecordUPIPayment(context.Background(), writeOpts(from), unknown, bigIntPaise(1500), "UPI-1")
	require.Error(t, err)

	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, types.ErrLedgerRejected, typed.Code)
	assert.Equal(t, "Receiver does not exist", typed.Reason)
}

func TestFake_RecordPaymentAppliesAtInclusion(t *testing.T) {
	ctx := context.Background()
	owner := common.HexToAddress("0x1111111111111111111111111111111111111111")
	payer := common.HexToAddress("0x2222222222222222222222222222222222222222")

	f := NewFake(11155111)
	rcv := f.SeedReceiver("shop@upi", "Chai Stall", owner)

	pending, err := f.RecordUPIPayment(ctx, writeOpts(payer), rcv.ID, bigIntPaise(15050), "UPI-REF-9")
	require.NoError(t, err)

	// Submission accepted, state not yet mutated.
	mine, err := f.GetMyPayments(ctx, payer)
	require.NoError(t, err)
	assert.Empty(t, mine)

	inc, err := pending.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, inc.Payment)
	assert.Equal(t, payer, inc.Payment.From)
	assert.Equal(t, owner, inc.Payment.To)
	assert.Equal(t, rcv.ID, inc.Payment.ReceiverID)
	assert.Equal(t, uint64(15050), inc.Payment.AmountPaise)
	assert.Equal(t, "UPI-REF-9", inc.Payment.UPITxnID)
	assert.NotZero(t, inc.Payment.Timestamp)

	mine, err = f.GetMyPayments(ctx, payer)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	received, err := f.GetMyPayments(ctx, owner)
	require.NoError(t, err)
	require.Len(t, received, 1)

	sent, err := f.GetPaymentsOf(ctx, payer)
	require.NoError(t, err)
	require.Len(t, sent, 1)

	toRcv, err := f.GetPaymentsTo(ctx, rcv.ID)
	require.NoError(t, err)
	require.Len(t, toRcv, 1)
}

func TestFake_CallCounting(t *testing.T) {
	f := NewFake(11155111)

	_, _, _ = f.FindReceiverIDByUPI(context.Background(), "a@upi")
	_, _, _ = f.FindReceiverIDByUPI(context.Background(), "b@upi")

	assert.Equal(t, 2, f.Calls("findReceiverIdByUPI"))
	assert.Equal(t, 0, f.Calls("getReceiver"))
}
