package ledger

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/roles"
	"backend/internal/types"
)

// Pause gates Mint and Burn. Transfer stays open while paused.
func (l *Ledger) Pause(caller types.Address) error {
	if err := l.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.paused = true
	logger.Info("ledger: paused", zap.String("caller", string(caller)))
	return nil
}

func (l *Ledger) Unpause(caller types.Address) error {
	if err := l.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.paused = false
	logger.Info("ledger: unpaused", zap.String("caller", string(caller)))
	return nil
}

func (l *Ledger) SetTreasury(caller types.Address, treasury types.Address) error {
	if err := l.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.treasury = treasury
	logger.Info("ledger: treasury updated", zap.String("treasury", string(treasury)))
	return nil
}

func (l *Ledger) SetRewardPool(caller types.Address, rewardPool types.Address) error {
	if err := l.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.rewardPool = rewardPool
	logger.Info("ledger: reward pool updated", zap.String("reward pool", string(rewardPool)))
	return nil
}

func (l *Ledger) SetFeePercent(caller types.Address, feePercent int64) error {
	if err := l.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	if feePercent < 0 || feePercent > 100 {
		return errors.Errorf("ledger: fee percent %d out of range", feePercent)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.feePercent = feePercent
	logger.Info("ledger: fee percent updated", zap.Int64("fee percent", feePercent))
	return nil
}

func (l *Ledger) SetThreshold(caller types.Address, threshold *big.Int) error {
	if err := l.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	if threshold == nil || threshold.Sign() < 0 {
		return ErrValueMustBePositive
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.threshold = new(big.Int).Set(threshold)
	logger.Info("ledger: eligibility threshold updated", zap.String("threshold", threshold.String()))
	return nil
}
