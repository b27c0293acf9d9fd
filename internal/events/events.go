package events

import (
	"math/big"
	"sync"

	"backend/internal/types"
)

// Event is a record of a completed state change. Events are appended to a
// Journal after the change is applied and are never emitted for failed calls.
type Event interface {
	Type() string
}

type Minted struct {
	Account types.Address `json:"account"`
	Amount  *big.Int      `json:"amount"`
}

func (Minted) Type() string { return "minted" }

type Burned struct {
	Account types.Address `json:"account"`
	Amount  *big.Int      `json:"amount"`
}

func (Burned) Type() string { return "burned" }

type Transferred struct {
	From   types.Address `json:"from"`
	To     types.Address `json:"to"`
	Amount *big.Int      `json:"amount"`
}

func (Transferred) Type() string { return "transferred" }

type DrawRequested struct {
	RequestID   uint64 `json:"request_id"`
	RequestedAt int64  `json:"requested_at"`
}

func (DrawRequested) Type() string { return "draw_requested" }

type DrawResolved struct {
	RequestID uint64        `json:"request_id"`
	HasWinner bool          `json:"has_winner"`
	Winner    types.Address `json:"winner,omitempty"`
	Gain      *big.Int      `json:"gain"`
}

func (DrawResolved) Type() string { return "draw_resolved" }

type GainClaimed struct {
	Account types.Address `json:"account"`
	Amount  *big.Int      `json:"amount"`
}

func (GainClaimed) Type() string { return "gain_claimed" }

type Bridged struct {
	MessageID        string        `json:"message_id"`
	Sender           types.Address `json:"sender"`
	Receiver         types.Address `json:"receiver"`
	Amount           *big.Int      `json:"amount"`
	DestinationChain types.ChainID `json:"destination_chain"`
	FeeToken         string        `json:"fee_token"`
	Fee              *big.Int      `json:"fee"`
}

func (Bridged) Type() string { return "bridged" }

type Released struct {
	MessageID   string        `json:"message_id"`
	SourceChain types.ChainID `json:"source_chain"`
	Receiver    types.Address `json:"receiver"`
	Amount      *big.Int      `json:"amount"`
}

func (Released) Type() string { return "released" }

// Journal is an append-only in-memory event log. The operator drains it into
// persistent storage after each cycle.
type Journal struct {
	mutex  sync.Mutex
	events []Event
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Append(event Event) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	j.events = append(j.events, event)
}

func (j *Journal) All() []Event {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	out := make([]Event, len(j.events))
	copy(out, j.events)
	return out
}

// Drain returns the accumulated events and resets the journal.
func (j *Journal) Drain() []Event {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	out := j.events
	j.events = nil
	return out
}
