package bridge

import (
	"math/big"

	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/relay"
	"backend/internal/roles"
	"backend/internal/types"
)

// SetChainConfig toggles a counterparty chain on the whitelist together with
// its relay execution parameters.
func (b *Bridge) SetChainConfig(caller types.Address, chain types.ChainID, config ChainConfig) error {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.chains[chain] = config
	logger.Info("bridge: chain whitelist updated",
		zap.Uint64("chain", uint64(chain)),
		zap.Bool("enabled", config.Enabled),
		zap.Uint64("gas budget", config.GasBudget),
		zap.Bool("out of order", config.OutOfOrder),
	)
	return nil
}

func (b *Bridge) SetSenderWhitelisted(caller types.Address, sender types.Address, enabled bool) error {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if enabled {
		b.senders[sender] = true
	} else {
		delete(b.senders, sender)
	}
	logger.Info("bridge: sender whitelist updated", zap.String("sender", string(sender)), zap.Bool("enabled", enabled))
	return nil
}

func (b *Bridge) SetRelay(caller types.Address, relayRef relay.Relay, identity types.Address) error {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.relay = relayRef
	b.relayIdentity = identity
	logger.Info("bridge: relay updated", zap.String("identity", string(identity)))
	return nil
}

func (b *Bridge) SetDestinationChain(caller types.Address, chain types.ChainID) error {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.destinationChain = chain
	logger.Info("bridge: destination chain updated", zap.Uint64("chain", uint64(chain)))
	return nil
}

func (b *Bridge) Pause(caller types.Address) error {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.paused = true
	logger.Info("bridge: paused", zap.String("caller", string(caller)))
	return nil
}

func (b *Bridge) Unpause(caller types.Address) error {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.paused = false
	logger.Info("bridge: unpaused", zap.String("caller", string(caller)))
	return nil
}

// WithdrawNative empties the bridge's native reserve to a beneficiary and
// returns the withdrawn amount. Delivery of the native value is the
// beneficiary's concern outside the ledger.
func (b *Bridge) WithdrawNative(caller types.Address, beneficiary types.Address) (*big.Int, error) {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return nil, err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	withdrawn := b.nativeReserve
	b.nativeReserve = big.NewInt(0)

	logger.Info("bridge: native reserve withdrawn",
		zap.String("beneficiary", string(beneficiary)),
		zap.String("amount", withdrawn.String()),
	)
	return withdrawn, nil
}

// WithdrawToken moves amount of an arbitrary token reserve to a beneficiary.
// For the ledger token this is a ledger transfer out of the escrow account;
// for any other token (including the fee asset) the bridge's internal reserve
// is debited.
func (b *Bridge) WithdrawToken(caller types.Address, token types.Address, beneficiary types.Address, amount *big.Int) error {
	if err := b.roles.Require(roles.RoleOperator, caller); err != nil {
		return err
	}

	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if token == b.tokenAddress {
		if err := b.ledger.Transfer(b.account, beneficiary, amount); err != nil {
			return wrapTransfer(ErrReleaseTransferFailed, err)
		}
	} else {
		reserve := b.reserves[token]
		if reserve == nil || reserve.Cmp(amount) < 0 {
			return ErrInsufficientReserve
		}
		reserve.Sub(reserve, amount)
	}

	logger.Info("bridge: token reserve withdrawn",
		zap.String("token", string(token)),
		zap.String("beneficiary", string(beneficiary)),
		zap.String("amount", amount.String()),
	)
	return nil
}
