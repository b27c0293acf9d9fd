package operator

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/bridge"
	"backend/internal/logger"
	"backend/internal/lottery"
	"backend/internal/roles"
	"backend/internal/storage"
	"backend/internal/types"
)

// Restore loads the persisted data model into the components. Roles come
// first so the parameter restore can go through the role-gated setters under
// the operator identity.
func (o *Operator) Restore() error {
	logger.Debug("restore: loading persisted state...")

	roleRecords, err := o.storage.GetRoles()
	if err != nil {
		return errors.Wrap(err, "restore: roles")
	}
	for _, record := range roleRecords {
		o.roles.Restore(roles.Role(record.Role), types.Address(record.Address))
	}

	balances, err := o.storage.GetBalances()
	if err != nil {
		return errors.Wrap(err, "restore: balances")
	}
	for _, record := range balances {
		amount, err := types.ParseAmount(record.Amount)
		if err != nil {
			return errors.Wrapf(err, "restore: balance of %s", record.Address)
		}
		o.ledger.RestoreBalance(types.Address(record.Address), amount)
	}

	holders, err := o.storage.GetEligibleHolders()
	if err != nil {
		return errors.Wrap(err, "restore: eligible holders")
	}
	for _, record := range holders {
		o.ledger.RestoreHolder(types.Address(record.Address), record.UpdatedAt)
	}

	draws, err := o.storage.GetDraws()
	if err != nil {
		return errors.Wrap(err, "restore: draws")
	}
	for _, record := range draws {
		gain, err := types.ParseAmount(record.Gain)
		if err != nil {
			return errors.Wrapf(err, "restore: draw %d gain", record.RequestID)
		}
		o.lottery.RestoreDraw(lottery.Draw{
			RequestID:   record.RequestID,
			RequestedAt: record.RequestedAt,
			Resolved:    record.Resolved != 0,
			HasWinner:   record.HasWinner != 0,
			Winner:      types.Address(record.Winner),
			Gain:        gain,
		})
	}

	gains, err := o.storage.GetPendingGains()
	if err != nil {
		return errors.Wrap(err, "restore: pending gains")
	}
	for _, record := range gains {
		amount, err := types.ParseAmount(record.Amount)
		if err != nil {
			return errors.Wrapf(err, "restore: pending gain of %s", record.Address)
		}
		o.lottery.RestorePendingGain(types.Address(record.Address), amount)
	}

	processed, err := o.storage.GetProcessedMessages()
	if err != nil {
		return errors.Wrap(err, "restore: processed messages")
	}
	for _, record := range processed {
		o.bridge.RestoreProcessed(bridge.ProcessedMessage{
			MessageID:   record.MessageID,
			SourceChain: types.ChainID(record.SourceChain),
			ReceivedAt:  record.ReceivedAt,
		})
	}

	chains, err := o.storage.GetChainWhitelist()
	if err != nil {
		return errors.Wrap(err, "restore: chain whitelist")
	}
	for _, record := range chains {
		o.bridge.RestoreChain(types.ChainID(record.ChainID), bridge.ChainConfig{
			Enabled:    record.Enabled != 0,
			GasBudget:  record.GasBudget,
			OutOfOrder: record.OutOfOrder != 0,
		})
	}

	senders, err := o.storage.GetSenderWhitelist()
	if err != nil {
		return errors.Wrap(err, "restore: sender whitelist")
	}
	for _, record := range senders {
		o.bridge.RestoreSender(types.Address(record.Address))
	}

	if err := o.restoreParams(); err != nil {
		return err
	}

	logger.Debug("restore: loading persisted state... done",
		zap.Int("balances", len(balances)),
		zap.Int("holders", len(holders)),
		zap.Int("draws", len(draws)),
		zap.Int("processed messages", len(processed)),
	)
	return nil
}

func (o *Operator) restoreParams() error {

	if value, err := o.storage.GetParam(storage.ParamFeePercent); err != nil {
		return errors.Wrap(err, "restore: fee percent")
	} else if value != "" {
		percent, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Wrap(err, "restore: fee percent")
		}
		if err := o.ledger.SetFeePercent(o.identity, percent); err != nil {
			return errors.Wrap(err, "restore: fee percent")
		}
	}

	if value, err := o.storage.GetParam(storage.ParamThreshold); err != nil {
		return errors.Wrap(err, "restore: threshold")
	} else if value != "" {
		threshold, err := types.ParseAmount(value)
		if err != nil {
			return errors.Wrap(err, "restore: threshold")
		}
		if err := o.ledger.SetThreshold(o.identity, threshold); err != nil {
			return errors.Wrap(err, "restore: threshold")
		}
	}

	if value, err := o.storage.GetParam(storage.ParamTreasury); err != nil {
		return errors.Wrap(err, "restore: treasury")
	} else if value != "" {
		if err := o.ledger.SetTreasury(o.identity, types.Address(value)); err != nil {
			return errors.Wrap(err, "restore: treasury")
		}
	}

	if value, err := o.storage.GetParam(storage.ParamRewardPool); err != nil {
		return errors.Wrap(err, "restore: reward pool")
	} else if value != "" {
		if err := o.ledger.SetRewardPool(o.identity, types.Address(value)); err != nil {
			return errors.Wrap(err, "restore: reward pool")
		}
	}

	if value, err := o.storage.GetParam(storage.ParamCooldownSeconds); err != nil {
		return errors.Wrap(err, "restore: cooldown")
	} else if value != "" {
		seconds, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Wrap(err, "restore: cooldown")
		}
		if err := o.lottery.SetCooldown(o.identity, time.Duration(seconds)*time.Second); err != nil {
			return errors.Wrap(err, "restore: cooldown")
		}
	}

	if value, err := o.storage.GetParam(storage.ParamLedgerPaused); err != nil {
		return errors.Wrap(err, "restore: ledger pause flag")
	} else if value == "true" {
		if err := o.ledger.Pause(o.identity); err != nil {
			return errors.Wrap(err, "restore: ledger pause flag")
		}
	}

	if value, err := o.storage.GetParam(storage.ParamBridgePaused); err != nil {
		return errors.Wrap(err, "restore: bridge pause flag")
	} else if value == "true" {
		if err := o.bridge.Pause(o.identity); err != nil {
			return errors.Wrap(err, "restore: bridge pause flag")
		}
	}

	return nil
}
