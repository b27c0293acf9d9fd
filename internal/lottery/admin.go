package lottery

import (
	"time"

	"go.uber.org/zap"

	"backend/internal/ledger"
	"backend/internal/logger"
	"backend/internal/random"
	"backend/internal/roles"
	"backend/internal/types"
)

func (e *Engine) SetParams(caller types.Address, params random.RequestParams) error {
	if err := e.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.params = params
	logger.Info("lottery: randomness parameters updated", zap.Uint64("subscription", params.SubscriptionID))
	return nil
}

func (e *Engine) SetCooldown(caller types.Address, cooldown time.Duration) error {
	if err := e.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cooldown = cooldown
	logger.Info("lottery: cooldown updated", zap.Duration("cooldown", cooldown))
	return nil
}

func (e *Engine) SetServiceIdentity(caller types.Address, identity types.Address) error {
	if err := e.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.serviceIdentity = identity
	logger.Info("lottery: randomness service identity updated", zap.String("identity", string(identity)))
	return nil
}

func (e *Engine) SetService(caller types.Address, service random.Service) error {
	if err := e.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.service = service
	logger.Info("lottery: randomness service replaced")
	return nil
}

func (e *Engine) SetLedger(caller types.Address, ledgerRef *ledger.Ledger) error {
	if err := e.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.ledger = ledgerRef
	logger.Info("lottery: ledger reference updated")
	return nil
}
