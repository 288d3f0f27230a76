package registry

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/vijay-talsangi/tourist-app/types"
)

var _ Ledger = (*Client)(nil)

// Client talks to a deployed UPIRegistry over JSON-RPC.
type Client struct {
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
	backend *ethclient.Client
	chainID *big.Int
}

// paymentRecord mirrors the contract's Payment tuple for ABI decoding.
type paymentRecord struct {
	From        common.Address
	To          common.Address
	ReceiverId  [32]byte
	AmountPaise *big.Int
	UpiTxnId    string
	Timestamp   *big.Int
}

// Dial connects to the RPC endpoint and binds the registry at address.
func Dial(ctx context.Context, rpcURL string, address common.Address) (*Client, error) {
	backend, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, Classify("dial rpc", err)
	}

	parsed, err := abi.JSON(strings.NewReader(RegistryABI))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("parse registry abi: %w", err)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return nil, Classify("query chain id", err)
	}

	return &Client{
		address: address,
		abi:     parsed,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
		backend: backend,
		chainID: chainID,
	}, nil
}

// ChainID returns the chain the registry is deployed on.
func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// Address returns the bound contract address.
func (c *Client) Address() common.Address {
	return c.address
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.backend.Close()
}

// FindReceiverIDByUPI implements Ledger.
func (c *Client) FindReceiverIDByUPI(ctx context.Context, upiID string) (types.ReceiverID, bool, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "findReceiverIdByUPI", upiID); err != nil {
		return types.ReceiverID{}, false, Classify("findReceiverIdByUPI", err)
	}

	id := *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)
	exists := *abi.ConvertType(out[1], new(bool)).(*bool)
	return types.ReceiverID(id), exists, nil
}

// GetReceiver implements Ledger. An unknown id yields a zero record with
// Exists=false, never an error.
func (c *Client) GetReceiver(ctx context.Context, id types.ReceiverID) (types.Receiver, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getReceiver", [32]byte(id)); err != nil {
		return types.Receiver{}, Classify("getReceiver", err)
	}

	rcv := types.Receiver{
		ID:      id,
		UPIID:   *abi.ConvertType(out[0], new(string)).(*string),
		Name:    *abi.ConvertType(out[1], new(string)).(*string),
		AddedBy: *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		Exists:  *abi.ConvertType(out[4], new(bool)).(*bool),
	}
	rcv.CreatedAt = (*abi.ConvertType(out[3], new(*big.Int)).(**big.Int)).Uint64()
	return rcv, nil
}

// AddReceiver implements Ledger.
func (c *Client) AddReceiver(ctx context.Context, opts *bind.TransactOpts, upiID, name string) (*PendingTx, error) {
	tx, err := c.bound.Transact(c.writeOpts(ctx, opts), "addReceiver", upiID, name)
	if err != nil {
		return nil, Classify("addReceiver", err)
	}
	return c.pending(tx), nil
}

// RecordUPIPayment implements Ledger.
func (c *Client) RecordUPIPayment(ctx context.Context, opts *bind.TransactOpts, id types.ReceiverID, amountPaise *big.Int, upiTxnID string) (*PendingTx, error) {
	tx, err := c.bound.Transact(c.writeOpts(ctx, opts), "recordUPIPayment", [32]byte(id), amountPaise, upiTxnID)
	if err != nil {
		return nil, Classify("recordUPIPayment", err)
	}
	return c.pending(tx), nil
}

// GetMyPayments implements Ledger. The contract scopes the result to
// msg.sender, so the caller address travels in the call options.
func (c *Client) GetMyPayments(ctx context.Context, caller common.Address) ([]types.Payment, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx, From: caller}, &out, "getMyPayments"); err != nil {
		return nil, Classify("getMyPayments", err)
	}
	return decodePayments(out)
}

// GetPaymentsOf implements Ledger.
func (c *Client) GetPaymentsOf(ctx context.Context, user common.Address) ([]types.Payment, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getPaymentsOf", user); err != nil {
		return nil, Classify("getPaymentsOf", err)
	}
	return decodePayments(out)
}

// GetPaymentsTo implements Ledger.
func (c *Client) GetPaymentsTo(ctx context.Context, id types.ReceiverID) ([]types.Payment, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getPaymentsTo", [32]byte(id)); err != nil {
		return nil, Classify("getPaymentsTo", err)
	}
	return decodePayments(out)
}

func decodePayments(out []interface{}) ([]types.Payment, error) {
	records := *abi.ConvertType(out[0], new([]paymentRecord)).(*[]paymentRecord)

	payments := make([]types.Payment, 0, len(records))
	for _, r := range records {
		payments = append(payments, types.Payment{
			From:        r.From,
			To:          r.To,
			ReceiverID:  types.ReceiverID(r.ReceiverId),
			AmountPaise: r.AmountPaise.Uint64(),
			UPITxnID:    r.UpiTxnId,
			Timestamp:   r.Timestamp.Uint64(),
		})
	}
	return payments, nil
}

// writeOpts binds the request context into a copy of the signing options.
func (c *Client) writeOpts(ctx context.Context, opts *bind.TransactOpts) *bind.TransactOpts {
	o := *opts
	o.Context = ctx
	return &o
}

func (c *Client) pending(tx *ethtypes.Transaction) *PendingTx {
	return NewPendingTx(tx.Hash(), func(ctx context.Context) (*Inclusion, error) {
		receipt, err := bind.WaitMined(ctx, c.backend, tx)
		if err != nil {
			return nil, Classify("await inclusion", err)
		}
		if receipt.Status != ethtypes.ReceiptStatusSuccessful {
			return nil, &types.Error{
				Code:    types.ErrLedgerRejected,
				Message: "rejected by the ledger",
				Reason:  fmt.Sprintf("transaction %s reverted", receipt.TxHash),
			}
		}

		inc := &Inclusion{TxHash: receipt.TxHash, BlockNumber: receipt.BlockNumber.Uint64()}
		if err := c.decodeEvents(receipt, inc); err != nil {
			return nil, err
		}
		return inc, nil
	})
}

// decodeEvents pulls the registry's own events out of a receipt. The
// receiver identifier is always taken from the log, never recomputed.
func (c *Client) decodeEvents(receipt *ethtypes.Receipt, inc *Inclusion) error {
	receiverAdded := c.abi.Events["ReceiverAdded"].ID
	paymentRecorded := c.abi.Events["PaymentRecorded"].ID

	for _, log := range receipt.Logs {
		if log.Address != c.address || len(log.Topics) == 0 {
			continue
		}

		switch log.Topics[0] {
		case receiverAdded:
			if len(log.Topics) < 2 {
				continue
			}
			inc.ReceiverID = types.ReceiverID(log.Topics[1])

		case paymentRecorded:
			if len(log.Topics) < 4 {
				continue
			}
			data, err := c.abi.Events["PaymentRecorded"].Inputs.NonIndexed().Unpack(log.Data)
			if err != nil {
				return fmt.Errorf("decode PaymentRecorded event: %w", err)
			}
			inc.Payment = &types.Payment{
				From:        common.BytesToAddress(log.Topics[1].Bytes()),
				To:          common.BytesToAddress(log.Topics[2].Bytes()),
				ReceiverID:  types.ReceiverID(log.Topics[3]),
				AmountPaise: data[0].(*big.Int).Uint64(),
				UPITxnID:    data[1].(string),
				Timestamp:   data[2].(*big.Int).Uint64(),
			}
		}
	}
	return nil
}
