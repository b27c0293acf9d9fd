package bridge

import (
	"math/big"

	"go.uber.org/zap"

	"backend/internal/events"
	"backend/internal/logger"
	"backend/internal/relay"
	"backend/internal/types"
)

// OnMessageReceived is the relay callback on the destination chain. Both
// whitelist gates and the duplicate check run before any fund movement, and
// the message id joins the processed set before the release transfer. The
// processed set never shrinks except to undo a release that itself failed,
// which keeps the call atomic.
func (b *Bridge) OnMessageReceived(caller types.Address, message relay.Message) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if caller != b.relayIdentity {
		return ErrNotRelay
	}

	if b.paused {
		return ErrPaused
	}

	if _, ok := b.processed[message.ID]; ok {
		return ErrAlreadyProcessed
	}

	if config, ok := b.chains[message.SourceChain]; !ok || !config.Enabled {
		return ErrChainNotWhitelisted
	}

	if !b.senders[message.Sender] {
		return ErrSenderNotWhitelisted
	}

	receiver, amount, err := DecodePayload(message.Payload)
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return ErrAmountMustBePositive
	}

	b.processed[message.ID] = ProcessedMessage{
		MessageID:   message.ID,
		SourceChain: message.SourceChain,
		ReceivedAt:  b.now().Unix(),
	}

	if err := b.ledger.Transfer(b.account, receiver, amount); err != nil {
		delete(b.processed, message.ID)
		return wrapTransfer(ErrReleaseTransferFailed, err)
	}

	b.journal.Append(events.Released{
		MessageID:   message.ID,
		SourceChain: message.SourceChain,
		Receiver:    receiver,
		Amount:      new(big.Int).Set(amount),
	})
	logger.Info("bridge: tokens released",
		zap.String("message id", message.ID),
		zap.Uint64("source", uint64(message.SourceChain)),
		zap.String("receiver", string(receiver)),
		zap.String("amount", amount.String()),
	)

	return nil
}
