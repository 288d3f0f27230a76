package types

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Direction classifies a payment relative to the wallet that reads it.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// Receiver is a registered payee as stored by the UPI registry contract.
// Records are immutable once created; the zero value with Exists=false is
// the contract's "not found" sentinel, not an error.
type Receiver struct {
	ID        ReceiverID     `json:"id"`
	UPIID     string         `json:"upiId"`
	Name      string         `json:"name"`
	AddedBy   common.Address `json:"addedBy"`
	CreatedAt uint64         `json:"createdAt"`
	Exists    bool           `json:"exists"`
}

// Payment is one on-chain record attesting to an off-chain UPI transfer.
// Amounts are in paise (hundredths of a rupee); UPITxnID is the
// caller-supplied off-chain reference and is not verified by the contract.
type Payment struct {
	From        common.Address `json:"from"`
	To          common.Address `json:"to"`
	ReceiverID  ReceiverID     `json:"receiverId"`
	AmountPaise uint64         `json:"amountPaise"`
	UPITxnID    string         `json:"upiTxnId"`
	Timestamp   uint64         `json:"timestamp"`
}

// DirectionFor reports whether the payment was sent or received by caller.
// Address comparison is case-insensitive.
func (p Payment) DirectionFor(caller common.Address) Direction {
	if strings.EqualFold(p.From.Hex(), caller.Hex()) {
		return DirectionSent
	}
	return DirectionReceived
}

// Time converts the ledger timestamp to wall-clock time.
func (p Payment) Time() time.Time {
	return time.Unix(int64(p.Timestamp), 0)
}

// Config contains the settings shared by every component.
type Config struct {
	// RPCUrl of the Ethereum endpoint the registry contract lives behind.
	RPCUrl string `json:"rpcUrl"`

	// ChainID of the registry deployment. Wallet sessions targeting any
	// other chain are refused before a call is made.
	ChainID int64 `json:"chainId"`

	// ContractAddress of the deployed UPI registry.
	ContractAddress string `json:"contractAddress"`

	// CurrencyCode used in composed payment links. Defaults to INR.
	CurrencyCode string `json:"currencyCode,omitempty"`

	// InclusionTimeout bounds the wait for a submitted write to be mined.
	InclusionTimeout time.Duration `json:"inclusionTimeout,omitempty"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`
}

// Validate checks that the Config contains all required fields.
func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return &Error{Code: ErrConfig, Message: "rpcUrl is required"}
	}
	if c.ChainID <= 0 {
		return &Error{Code: ErrConfig, Message: "chainId must be greater than 0"}
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return &Error{Code: ErrConfig, Message: "contractAddress must be a hex address"}
	}
	return nil
}
