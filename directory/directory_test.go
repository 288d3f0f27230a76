package directory

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vijay-talsangi/tourist-app/registry"
	"github.com/vijay-talsangi/tourist-app/types"
	"github.com/vijay-talsangi/tourist-app/wallet"
)

const chainID = 11155111

var owner = common.HexToAddress("0x1111111111111111111111111111111111111111")

type stubSigner struct {
	addr   common.Address
	reject bool
}

func (s stubSigner) Address() common.Address { return s.addr }

func (s stubSigner) TransactOpts(*big.Int) (*bind.TransactOpts, error) {
	if s.reject {
		return nil, wallet.ErrRejected
	}
	return &bind.TransactOpts{From: s.addr}, nil
}

func connectedSession(t *testing.T, signer wallet.Signer) *wallet.Session {
	t.Helper()
	s := wallet.NewSession()
	require.NoError(t, s.Connect(signer, big.NewInt(chainID)))
	return s
}

func newDirectory(ledger registry.Ledger, session *wallet.Session) *Directory {
	return New(ledger, session, time.Second, nil, nil)
}

func TestResolveByID(t *testing.T) {
	fake := registry.NewFake(chainID)
	rcv := fake.SeedReceiver("shop@upi", "Chai Stall", owner)
	d := newDirectory(fake, wallet.NewSession())

	got, err := d.ResolveByID(context.Background(), rcv.ID.Hex())
	require.NoError(t, err)
	assert.True(t, got.Exists)
	assert.Equal(t, rcv, got)
}

func TestResolveByID_MalformedStaysLocal(t *testing.T) {
	fake := registry.NewFake(chainID)
	d := newDirectory(fake, wallet.NewSession())

	_, err := d.ResolveByID(context.Background(), "0x123")
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidIdentifierFormat, types.ErrorCode(err))
	assert.Equal(t, 0, fake.Calls("getReceiver"))
}

func TestResolveByID_UnknownIsNotAnError(t *testing.T) {
	fake := registry.NewFake(chainID)
	d := newDirectory(fake, wallet.NewSession())
	seeded := fake.SeedReceiver("known@upi", "Known", owner)

	var unknown types.ReceiverID
	unknown[31] = 0x01
	require.NotEqual(t, seeded.ID, unknown)

	got, err := d.ResolveByID(context.Background(), unknown.Hex())
	require.NoError(t, err)
	assert.False(t, got.Exists)
}

func TestResolveByAlias(t *testing.T) {
	fake := registry.NewFake(chainID)
	rcv := fake.SeedReceiver("shop@upi", "Chai Stall", owner)
	d := newDirectory(fake, wallet.NewSession())

	got, err := d.ResolveByAlias(context.Background(), "shop@upi")
	require.NoError(t, err)
	assert.Equal(t, rcv, got)

	missing, err := d.ResolveByAlias(context.Background(), "nobody@upi")
	require.NoError(t, err)
	assert.False(t, missing.Exists)
	assert.Equal(t, 1, fake.Calls("getReceiver"))
}

func TestResolveByAlias_NetworkError(t *testing.T) {
	fake := registry.NewFake(chainID)
	fake.ReadErr = assert.AnError
	d := newDirectory(fake, wallet.NewSession())

	_, err := d.ResolveByAlias(context.Background(), "shop@upi")
	require.Error(t, err)
	assert.Equal(t, types.ErrNetwork, types.ErrorCode(err))
}

func TestRegister(t *testing.T) {
	fake := registry.NewFake(chainID)
	d := newDirectory(fake, connectedSession(t, stubSigner{addr: owner}))

	id, err := d.Register(context.Background(), "shop@upi", "Chai Stall")
	require.NoError(t, err)
	require.False(t, id.IsZero())

	rcv, err := fake.GetReceiver(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, rcv.Exists)
	assert.Equal(t, owner, rcv.AddedBy)
}

func TestRegister_RequiresSession(t *testing.T) {
	fake := registry.NewFake(chainID)
	d := newDirectory(fake, wallet.NewSession())

	_, err := d.Register(context.Background(), "shop@upi", "Chai Stall")
	require.Error(t, err)
	assert.Equal(t, types.ErrWalletNotConnected, types.ErrorCode(err))
	assert.Equal(t, 0, fake.Calls("addReceiver"))
}

func TestRegister_WrongChain(t *testing.T) {
	fake := registry.NewFake(1)
	d := newDirectory(fake, connectedSession(t, stubSigner{addr: owner}))

	_, err := d.Register(context.Background(), "shop@upi", "Chai Stall")
	require.Error(t, err)
	assert.Equal(t, types.ErrWrongChain, types.ErrorCode(err))
}

func TestRegister_UserRejected(t *testing.T) {
	fake := registry.NewFake(chainID)
	d := newDirectory(fake, connectedSession(t, stubSigner{addr: owner, reject: true}))

	_, err := d.Register(context.Background(), "shop@upi", "Chai Stall")
	require.Error(t, err)
	assert.Equal(t, types.ErrUserRejected, types.ErrorCode(err))
}

func TestRegister_EmptyInputsRevert(t *testing.T) {
	fake := registry.NewFake(chainID)
	d := newDirectory(fake, connectedSession(t, stubSigner{addr: owner}))

	_, err := d.Register(context.Background(), "", "Chai Stall")
	require.Error(t, err)

	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, types.ErrLedgerRejected, typed.Code)
	assert.Equal(t, "Empty UPI id or name", typed.Reason)
}

func TestRegister_ReleasesWriteSlot(t *testing.T) {
	fake := registry.NewFake(chainID)
	session := connectedSession(t, stubSigner{addr: owner})
	d := newDirectory(fake, session)

	_, err := d.Register(context.Background(), "first@upi", "First")
	require.NoError(t, err)

	_, err = d.Register(context.Background(), "second@upi", "Second")
	require.NoError(t, err)
}
