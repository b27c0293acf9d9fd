package lottery

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/events"
	"backend/internal/logger"
	"backend/internal/types"
)

// Claim pays out the caller's pending gain. The gain is snapshotted and
// cleared before the ledger transfer runs (checks-effects-interactions) and
// the whole entry point is guarded against reentry. A failed transfer is
// surfaced as ErrTransferFailed and the pending gain is reinstated, keeping
// the call atomic.
func (e *Engine) Claim(caller types.Address) (*big.Int, error) {
	e.mutex.Lock()

	if e.claiming {
		e.mutex.Unlock()
		return nil, ErrReentrantCall
	}
	e.claiming = true
	defer func() {
		e.mutex.Lock()
		e.claiming = false
		e.mutex.Unlock()
	}()

	gain := e.pending[caller]
	if gain == nil || gain.Sign() == 0 {
		e.mutex.Unlock()
		return nil, ErrNoGainToClaim
	}

	amount := new(big.Int).Set(gain)
	delete(e.pending, caller)

	account := e.account
	ledgerRef := e.ledger
	e.mutex.Unlock()

	if err := ledgerRef.Transfer(account, caller, amount); err != nil {
		e.mutex.Lock()
		e.pending[caller] = amount
		e.mutex.Unlock()
		return nil, errors.Wrap(ErrTransferFailed, err.Error())
	}

	e.journal.Append(events.GainClaimed{Account: caller, Amount: new(big.Int).Set(amount)})
	logger.Info("lottery: gain claimed", zap.String("account", string(caller)), zap.String("amount", amount.String()))

	return amount, nil
}
