package random

import (
	"crypto/rand"
	"math/big"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/types"
)

// LocalBeacon is a crypto/rand-backed randomness service for deployments
// without an external provider. Words are delivered from a separate goroutine
// to preserve the asynchronous request/resolve boundary.
type LocalBeacon struct {
	identity types.Address
	consumer Consumer
	nextID   uint64
	inflight sync.WaitGroup
}

func NewLocalBeacon(identity types.Address) *LocalBeacon {
	return &LocalBeacon{
		identity: identity,
	}
}

// Attach wires the consumer once it exists; the beacon and the lottery
// engine reference each other.
func (b *LocalBeacon) Attach(consumer Consumer) {
	b.consumer = consumer
}

func (b *LocalBeacon) Request(params RequestParams) (uint64, error) {
	requestID := atomic.AddUint64(&b.nextID, 1)

	wordCount := params.WordCount
	if wordCount == 0 {
		wordCount = 1
	}

	b.inflight.Add(1)
	go b.deliver(requestID, wordCount)

	logger.Debug("beacon: randomness requested", zap.Uint64("request id", requestID))
	return requestID, nil
}

func (b *LocalBeacon) deliver(requestID uint64, wordCount uint32) {
	defer b.inflight.Done()

	limit := new(big.Int).Lsh(big.NewInt(1), 256)
	words := make([]*big.Int, 0, wordCount)
	for i := uint32(0); i < wordCount; i++ {
		word, err := rand.Int(rand.Reader, limit)
		if err != nil {
			logger.Error("beacon: randomness source failed", zap.Error(err))
			return
		}
		words = append(words, word)
	}

	if err := b.consumer.OnRandomnessResolved(b.identity, requestID, words); err != nil {
		logger.Error("beacon: delivery rejected", zap.Uint64("request id", requestID), zap.Error(err))
		return
	}

	logger.Debug("beacon: randomness delivered", zap.Uint64("request id", requestID))
}

// Wait blocks until every in-flight delivery has completed.
func (b *LocalBeacon) Wait() {
	b.inflight.Wait()
}
