package relay

import (
	"math/big"

	"backend/internal/types"
)

// Message is the envelope delivered to a bridge. The id is assigned by the
// relay; the sender is the originating bridge's address stamped by the relay,
// not by the payload.
type Message struct {
	ID          string
	SourceChain types.ChainID
	Sender      types.Address
	Payload     []byte
}

// Relay is the cross-chain message transport. Delivery to the remote receiver
// is at-least-once and unordered; duplicate suppression is the receiver's
// responsibility.
type Relay interface {
	QuoteFee(destination types.ChainID, payload []byte) (*big.Int, error)
	Send(destination types.ChainID, sender types.Address, payload []byte, attachedValue *big.Int) (string, error)
}

// Receiver is the inbound side of a bridge, invoked by the relay under its
// configured identity.
type Receiver interface {
	OnMessageReceived(caller types.Address, message Message) error
}
