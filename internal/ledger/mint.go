package ledger

import (
	"math/big"

	"go.uber.org/zap"

	"backend/internal/events"
	"backend/internal/logger"
	"backend/internal/types"
)

// Mint converts an attached deposit into freshly issued tokens at the oracle
// price, keeps a fee and splits it between the reward pool and the treasury:
//
//	gross    = deposit * 1e18 / pricePerUnit
//	fee      = gross * feePercent / 100
//	user     = gross - fee
//	pool     = fee / 2
//	treasury = fee - pool
//
// The caller is registered as an eligible holder on first mint. Returns the
// amount credited to the caller.
func (l *Ledger) Mint(caller types.Address, deposit *big.Int) (*big.Int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.paused {
		return nil, ErrPaused
	}

	if deposit == nil || deposit.Sign() <= 0 {
		return nil, ErrValueMustBePositive
	}

	pricePerUnit, _, err := l.derivePricePerUnit()
	if err != nil {
		return nil, err
	}

	gross := new(big.Int).Mul(deposit, types.Unit())
	gross.Quo(gross, pricePerUnit)
	if gross.Sign() == 0 {
		return nil, ErrAmountMustBePositive
	}

	fee := new(big.Int).Mul(gross, big.NewInt(l.feePercent))
	fee.Quo(fee, big.NewInt(100))

	user := new(big.Int).Sub(gross, fee)
	pool := new(big.Int).Quo(fee, big.NewInt(2))
	treasury := new(big.Int).Sub(fee, pool)

	l.credit(caller, user)
	l.credit(l.rewardPool, pool)
	l.credit(l.treasury, treasury)
	l.totalSupply.Add(l.totalSupply, gross)

	l.registerHolder(caller)

	l.journal.Append(events.Minted{Account: caller, Amount: new(big.Int).Set(user)})
	logger.Debug("ledger: minted",
		zap.String("caller", string(caller)),
		zap.String("deposit", deposit.String()),
		zap.String("user", user.String()),
		zap.String("pool", pool.String()),
		zap.String("treasury", treasury.String()),
	)

	return user, nil
}

// Burn destroys amount from the caller's balance. A caller whose remaining
// balance falls to the eligibility threshold or below leaves the eligible set.
func (l *Ledger) Burn(caller types.Address, amount *big.Int) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.paused {
		return ErrPaused
	}

	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}

	balance := l.balances[caller]
	if balance == nil || balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}

	balance.Sub(balance, amount)
	l.totalSupply.Sub(l.totalSupply, amount)

	if balance.Cmp(l.threshold) <= 0 {
		l.removeHolder(caller)
	}

	l.journal.Append(events.Burned{Account: caller, Amount: new(big.Int).Set(amount)})
	logger.Debug("ledger: burned", zap.String("caller", string(caller)), zap.String("amount", amount.String()))

	return nil
}
