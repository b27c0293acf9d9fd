package random

import (
	"math/big"

	"backend/internal/types"
)

// RequestParams carries the configuration forwarded to the randomness service
// on every draw request.
type RequestParams struct {
	SubscriptionID uint64
	RequestKey     string
	Confirmations  uint16
	CallbackBudget uint32
	WordCount      uint32
	PayInNative    bool
}

// Service is the external randomness provider. Request returns immediately
// with an opaque request id; the words arrive later through the consumer
// callback, with no timing or ordering guarantee.
type Service interface {
	Request(params RequestParams) (uint64, error)
}

// Consumer receives resolved randomness. The caller identity is the service's
// configured address, which consumers must verify.
type Consumer interface {
	OnRandomnessResolved(caller types.Address, requestID uint64, words []*big.Int) error
}
