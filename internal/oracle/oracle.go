package oracle

import (
	"math/big"
	"sync"
)

// PriceFeed exposes the latest answer of an external price oracle as an
// 8-decimal fixed-point integer. Round ids and timestamps of the underlying
// feed are not consumed.
type PriceFeed interface {
	LatestAnswer() (*big.Int, error)
}

// StaticFeed is a PriceFeed with a settable answer. Used in tests and as the
// daemon fallback when no feed URL is configured.
type StaticFeed struct {
	mutex  sync.RWMutex
	answer *big.Int
}

func NewStaticFeed(answer *big.Int) *StaticFeed {
	return &StaticFeed{answer: new(big.Int).Set(answer)}
}

func (f *StaticFeed) LatestAnswer() (*big.Int, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	return new(big.Int).Set(f.answer), nil
}

func (f *StaticFeed) SetAnswer(answer *big.Int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.answer = new(big.Int).Set(answer)
}
