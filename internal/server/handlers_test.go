package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tourpay "github.com/vijay-talsangi/tourist-app"
	"github.com/vijay-talsangi/tourist-app/internal/config"
	"github.com/vijay-talsangi/tourist-app/logger"
	"github.com/vijay-talsangi/tourist-app/registry"
	"github.com/vijay-talsangi/tourist-app/types"
)

const testChainID = 11155111

var (
	merchantAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	touristAddr  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

type stubSigner struct {
	addr common.Address
}

func (s stubSigner) Address() common.Address { return s.addr }

func (s stubSigner) TransactOpts(*big.Int) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: s.addr}, nil
}

func newTestServer(t *testing.T) (*Server, *registry.Fake) {
	t.Helper()

	fake := registry.NewFake(testChainID)
	pay, err := tourpay.NewWithLedger(&types.Config{
		RPCUrl:          "https://rpc.sepolia.org",
		ChainID:         testChainID,
		ContractAddress: "0x4444444444444444444444444444444444444444",
	}, fake)
	require.NoError(t, err)
	t.Cleanup(pay.Close)

	cfg := config.Config{AppName: "tourpayd-test", Port: "0"}
	srv, err := New(cfg, pay, logger.NoopLogger{})
	require.NoError(t, err)
	return srv, fake
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(testChainID), body["chainId"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestHandleWalletState(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodGet, "/v1/wallet", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "disconnected", body["state"])
	assert.NotContains(t, body, "address")
}

func TestHandleResolveByID(t *testing.T) {
	srv, fake := newTestServer(t)
	rcv := fake.SeedReceiver("stall@upi", "Beach Stall", merchantAddr)

	resp, body := doJSON(t, srv, http.MethodGet, "/v1/receivers/"+rcv.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "stall@upi", body["upiId"])

	resp, body = doJSON(t, srv, http.MethodGet, "/v1/receivers/0x123", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, types.ErrInvalidIdentifierFormat, body["code"])

	var unknown types.ReceiverID
	unknown[0] = 0xff
	resp, body = doJSON(t, srv, http.MethodGet, "/v1/receivers/"+unknown.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, types.ErrReceiverNotFound, body["code"])
}

func TestHandleResolveByAlias(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.SeedReceiver("stall@upi", "Beach Stall", merchantAddr)

	resp, body := doJSON(t, srv, http.MethodGet, "/v1/receivers?upi=stall@upi", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Beach Stall", body["name"])

	resp, _ = doJSON(t, srv, http.MethodGet, "/v1/receivers", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodGet, "/v1/receivers?upi=nobody@upi", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleRegister(t *testing.T) {
	srv, fake := newTestServer(t)

	// No wallet session bound yet.
	resp, body := doJSON(t, srv, http.MethodPost, "/v1/receivers", registerRequest{UPIID: "stall@upi", Name: "Beach Stall"})
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, types.ErrWalletNotConnected, body["code"])

	require.NoError(t, srv.pay.Connect(stubSigner{addr: merchantAddr}, testChainID))

	resp, body = doJSON(t, srv, http.MethodPost, "/v1/receivers", registerRequest{UPIID: "stall@upi", Name: "Beach Stall"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Contains(t, body, "id")

	id, err := types.ParseReceiverID(body["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Calls("addReceiver"))

	got, err := fake.GetReceiver(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Exists)

	resp, _ = doJSON(t, srv, http.MethodPost, "/v1/receivers", registerRequest{UPIID: "stall@upi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRecordPayment(t *testing.T) {
	srv, fake := newTestServer(t)
	rcv := fake.SeedReceiver("stall@upi", "Beach Stall", merchantAddr)
	require.NoError(t, srv.pay.Connect(stubSigner{addr: touristAddr}, testChainID))

	resp, body := doJSON(t, srv, http.MethodPost, "/v1/payments", recordPaymentRequest{
		ReceiverID: rcv.ID.Hex(),
		Amount:     "250.50",
		UPITxnID:   "UPI-TXN-42",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(25050), body["amountPaise"])
	assert.Equal(t, "UPI-TXN-42", body["upiTxnId"])

	resp, body = doJSON(t, srv, http.MethodPost, "/v1/payments", recordPaymentRequest{
		ReceiverID: rcv.ID.Hex(),
		Amount:     "-1",
		UPITxnID:   "UPI-TXN-43",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, types.ErrInvalidAmount, body["code"])

	var unknown types.ReceiverID
	unknown[0] = 0xff
	resp, body = doJSON(t, srv, http.MethodPost, "/v1/payments", recordPaymentRequest{
		ReceiverID: unknown.Hex(),
		Amount:     "10",
		UPITxnID:   "UPI-TXN-44",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, types.ErrReceiverNotFound, body["code"])
}

func TestHandleComposeLink(t *testing.T) {
	srv, fake := newTestServer(t)
	rcv := fake.SeedReceiver("stall@upi", "Beach Stall", merchantAddr)

	resp, body := doJSON(t, srv, http.MethodPost, "/v1/payments/link", composeLinkRequest{
		ReceiverID: rcv.ID.Hex(),
		Amount:     "99.90",
		Note:       "coconut water",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["url"], "upi://pay?")

	var unknown types.ReceiverID
	unknown[0] = 0xff
	resp, body = doJSON(t, srv, http.MethodPost, "/v1/payments/link", composeLinkRequest{
		ReceiverID: unknown.Hex(),
		Amount:     "99.90",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, types.ErrReceiverNotFound, body["code"])
}

func TestHandleHistory(t *testing.T) {
	srv, fake := newTestServer(t)
	rcv := fake.SeedReceiver("stall@upi", "Beach Stall", merchantAddr)
	fake.SeedPayment(types.Payment{
		From: touristAddr, To: merchantAddr, ReceiverID: rcv.ID,
		AmountPaise: 1000, UPITxnID: "UPI-1", Timestamp: 10,
	})

	resp, body := doJSON(t, srv, http.MethodGet, "/v1/payments", nil)
	assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	assert.Equal(t, types.ErrWalletNotConnected, body["code"])

	require.NoError(t, srv.pay.Connect(stubSigner{addr: touristAddr}, testChainID))

	resp, body = doJSON(t, srv, http.MethodGet, "/v1/payments", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	payments := body["payments"].([]any)
	require.Len(t, payments, 1)
	entry := payments[0].(map[string]any)
	assert.Equal(t, "UPI-1", entry["upiTxnId"])
	assert.Equal(t, "sent", entry["direction"])
}

func TestHandlePaymentsOfAndTo(t *testing.T) {
	srv, fake := newTestServer(t)
	rcv := fake.SeedReceiver("stall@upi", "Beach Stall", merchantAddr)
	fake.SeedPayment(types.Payment{
		From: touristAddr, To: merchantAddr, ReceiverID: rcv.ID,
		AmountPaise: 1000, UPITxnID: "UPI-1", Timestamp: 10,
	})

	resp, body := doJSON(t, srv, http.MethodGet, "/v1/payments/of/"+touristAddr.Hex(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["payments"], 1)

	resp, _ = doJSON(t, srv, http.MethodGet, "/v1/payments/of/not-an-address", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, srv, http.MethodGet, "/v1/payments/to/"+rcv.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["payments"], 1)

	resp, _ = doJSON(t, srv, http.MethodGet, "/v1/payments/to/0x123", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
