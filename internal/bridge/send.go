package bridge

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/events"
	"backend/internal/logger"
	"backend/internal/types"
)

// BridgeTokens escrows amount from the caller into the bridge's reserve and
// submits a release message for the configured destination chain. The relay
// fee is paid either from attachedValue (FeeNative) or from the bridge's
// fee-token reserve (FeeAlternateToken). Attached value beyond the quoted fee
// stays in the bridge's native reserve. Returns the relay-assigned message id.
func (b *Bridge) BridgeTokens(caller types.Address, receiver types.Address, amount *big.Int, mode FeeMode, attachedValue *big.Int) (string, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.paused {
		return "", ErrPaused
	}

	if amount == nil || amount.Sign() <= 0 {
		return "", ErrAmountMustBePositive
	}

	destination := b.destinationChain
	if config, ok := b.chains[destination]; !ok || !config.Enabled {
		return "", ErrChainNotWhitelisted
	}

	payload, err := EncodePayload(receiver, amount)
	if err != nil {
		return "", err
	}

	fee, err := b.relay.QuoteFee(destination, payload)
	if err != nil {
		return "", err
	}

	// Escrow first so fee settlement and submission see the reserve funded.
	// Everything is unwound if the relay rejects the message.
	if err := b.ledger.Transfer(caller, b.account, amount); err != nil {
		return "", wrapTransfer(ErrEscrowTransferFailed, err)
	}

	feeToken := "native"
	var sendValue *big.Int

	switch mode {
	case FeeNative:
		if attachedValue == nil || attachedValue.Cmp(fee) < 0 {
			b.unwindEscrow(caller, amount)
			return "", ErrInsufficientFee
		}
		surplus := new(big.Int).Sub(attachedValue, fee)
		b.nativeReserve.Add(b.nativeReserve, surplus)
		sendValue = fee
	case FeeAlternateToken:
		feeToken = string(b.feeToken)
		reserve := b.reserves[b.feeToken]
		if reserve == nil || reserve.Cmp(fee) < 0 {
			b.unwindEscrow(caller, amount)
			return "", ErrInsufficientReserve
		}
		reserve.Sub(reserve, fee)
	}

	messageID, err := b.relay.Send(destination, b.account, payload, sendValue)
	if err != nil {
		b.unwindEscrow(caller, amount)
		if mode == FeeAlternateToken {
			b.reserves[b.feeToken].Add(b.reserves[b.feeToken], fee)
		} else {
			b.nativeReserve.Sub(b.nativeReserve, new(big.Int).Sub(attachedValue, fee))
		}
		return "", err
	}

	b.journal.Append(events.Bridged{
		MessageID:        messageID,
		Sender:           caller,
		Receiver:         receiver,
		Amount:           new(big.Int).Set(amount),
		DestinationChain: destination,
		FeeToken:         feeToken,
		Fee:              new(big.Int).Set(fee),
	})
	logger.Info("bridge: tokens bridged",
		zap.String("message id", messageID),
		zap.String("sender", string(caller)),
		zap.String("receiver", string(receiver)),
		zap.String("amount", amount.String()),
		zap.Uint64("destination", uint64(destination)),
		zap.String("fee token", feeToken),
		zap.String("fee", fee.String()),
	)

	return messageID, nil
}

func (b *Bridge) unwindEscrow(caller types.Address, amount *big.Int) {
	if err := b.ledger.Transfer(b.account, caller, amount); err != nil {
		logger.Error("bridge: escrow unwind failed",
			zap.String("caller", string(caller)),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
	}
}

func wrapTransfer(sentinel error, cause error) error {
	return errors.Wrap(sentinel, cause.Error())
}
