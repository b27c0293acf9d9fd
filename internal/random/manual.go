package random

import (
	"math/big"
	"sync"

	"backend/internal/types"
)

// Manual is a randomness service driven by hand. Requests are recorded and
// nothing is delivered until Resolve is called, so tests control the timing
// of the callback exactly.
type Manual struct {
	identity types.Address
	consumer Consumer

	mutex    sync.Mutex
	nextID   uint64
	requests []Recorded
}

type Recorded struct {
	RequestID uint64
	Params    RequestParams
}

func NewManual(identity types.Address) *Manual {
	return &Manual{identity: identity}
}

func (m *Manual) Attach(consumer Consumer) {
	m.consumer = consumer
}

func (m *Manual) Request(params RequestParams) (uint64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.nextID++
	m.requests = append(m.requests, Recorded{RequestID: m.nextID, Params: params})
	return m.nextID, nil
}

func (m *Manual) Requests() []Recorded {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]Recorded, len(m.requests))
	copy(out, m.requests)
	return out
}

// Resolve delivers words for a recorded request using the service identity.
func (m *Manual) Resolve(requestID uint64, words []*big.Int) error {
	return m.consumer.OnRandomnessResolved(m.identity, requestID, words)
}

// ResolveAs delivers words under an arbitrary caller identity, for tests of
// the consumer's caller check.
func (m *Manual) ResolveAs(caller types.Address, requestID uint64, words []*big.Int) error {
	return m.consumer.OnRandomnessResolved(caller, requestID, words)
}
