package ledger

import (
	"math/big"

	"go.uber.org/zap"

	"backend/internal/events"
	"backend/internal/logger"
	"backend/internal/types"
)

// Transfer moves amount between accounts. Transfers are never gated by the
// pause flag. Eligibility is maintained one-sided: the sender is dropped from
// the eligible set when its remaining balance falls to the threshold or below
// (the reward pool account is exempt), and the recipient is registered on its
// first ever receipt. Recipients are never re-checked against the threshold.
func (l *Ledger) Transfer(from types.Address, to types.Address, amount *big.Int) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}

	balance := l.balances[from]
	if balance == nil || balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	balance.Sub(balance, amount)
	l.credit(to, amount)

	if from != l.rewardPool && balance.Cmp(l.threshold) <= 0 {
		l.removeHolder(from)
	}
	l.registerHolder(to)

	l.journal.Append(events.Transferred{From: from, To: to, Amount: new(big.Int).Set(amount)})
	logger.Debug("ledger: transferred",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("amount", amount.String()),
	)

	return nil
}
