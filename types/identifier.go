package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// ReceiverID is the 32-byte identifier the registry derives for a receiver
// at creation time. It is opaque to clients and never recomputed locally.
type ReceiverID [32]byte

// hexIDLen is "0x" plus 64 hex digits.
const hexIDLen = 66

// ParseReceiverID decodes a 0x-prefixed, 64-digit hex identifier. Anything
// else fails with INVALID_IDENTIFIER_FORMAT before any network call.
func ParseReceiverID(s string) (ReceiverID, error) {
	var id ReceiverID

	if len(s) != hexIDLen || !strings.HasPrefix(s, "0x") {
		return id, &Error{
			Code:    ErrInvalidIdentifierFormat,
			Message: fmt.Sprintf("receiver id must be a 0x-prefixed 32-byte hex string, got %d characters", len(s)),
		}
	}

	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return id, &Error{
			Code:    ErrInvalidIdentifierFormat,
			Message: "receiver id contains non-hex characters",
		}
	}

	copy(id[:], b)
	return id, nil
}

// ParseQRPayload decodes the payload delivered by the QR scanner. The
// payload is the receiver id itself; any other shape is a decode failure at
// the camera boundary, not a resolution failure.
func ParseQRPayload(data string) (ReceiverID, error) {
	return ParseReceiverID(strings.TrimSpace(data))
}

// Hex returns the canonical 0x-prefixed encoding.
func (id ReceiverID) Hex() string {
	return "0x" + hex.EncodeToString(id[:])
}

// IsZero reports whether the id is all zero bytes, the value the contract
// returns alongside exists=false.
func (id ReceiverID) IsZero() bool {
	return id == ReceiverID{}
}

func (id ReceiverID) String() string {
	return id.Hex()
}

// MarshalJSON encodes the id as its hex string.
func (id ReceiverID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON decodes a hex string id, enforcing the same format rules as
// ParseReceiverID.
func (id *ReceiverID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseReceiverID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
