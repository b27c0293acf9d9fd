package operator

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"backend/internal/logger"
	"backend/internal/storage"
)

// Snapshot persists the current data model and drains the event journal.
func (o *Operator) Snapshot() error {
	logger.Debug("snapshot: persisting state...")

	balances := o.ledger.Balances()
	balanceRecords := make([]*storage.BalanceRecord, 0, len(balances))
	for account, amount := range balances {
		balanceRecords = append(balanceRecords, &storage.BalanceRecord{
			Address: string(account),
			Amount:  amount.String(),
		})
	}
	if err := o.storage.UpdateBalances(balanceRecords); err != nil {
		return errors.Wrap(err, "snapshot: balances")
	}

	holders := o.ledger.EligibleHolders()
	holderRecords := make([]*storage.EligibleHolderRecord, 0, len(holders))
	for _, holder := range holders {
		holderRecords = append(holderRecords, &storage.EligibleHolderRecord{
			Address:   string(holder.Address),
			UpdatedAt: holder.UpdatedAt,
		})
	}
	if err := o.storage.ReplaceEligibleHolders(holderRecords); err != nil {
		return errors.Wrap(err, "snapshot: eligible holders")
	}

	draws := o.lottery.Draws()
	drawRecords := make([]*storage.DrawRecord, 0, len(draws))
	for _, draw := range draws {
		record := &storage.DrawRecord{
			RequestID:   draw.RequestID,
			RequestedAt: draw.RequestedAt,
			Winner:      string(draw.Winner),
			Gain:        "0",
		}
		if draw.Resolved {
			record.Resolved = 1
		}
		if draw.HasWinner {
			record.HasWinner = 1
		}
		if draw.Gain != nil {
			record.Gain = draw.Gain.String()
		}
		drawRecords = append(drawRecords, record)
	}
	if err := o.storage.UpdateDraws(drawRecords); err != nil {
		return errors.Wrap(err, "snapshot: draws")
	}

	gains := o.lottery.PendingGains()
	gainRecords := make([]*storage.PendingGainRecord, 0, len(gains))
	for account, amount := range gains {
		gainRecords = append(gainRecords, &storage.PendingGainRecord{
			Address: string(account),
			Amount:  amount.String(),
		})
	}
	if err := o.storage.ReplacePendingGains(gainRecords); err != nil {
		return errors.Wrap(err, "snapshot: pending gains")
	}

	processed := o.bridge.ProcessedMessages()
	processedRecords := make([]*storage.ProcessedMessageRecord, 0, len(processed))
	for _, record := range processed {
		processedRecords = append(processedRecords, &storage.ProcessedMessageRecord{
			MessageID:   record.MessageID,
			SourceChain: uint64(record.SourceChain),
			ReceivedAt:  record.ReceivedAt,
		})
	}
	if err := o.storage.UpdateProcessedMessages(processedRecords); err != nil {
		return errors.Wrap(err, "snapshot: processed messages")
	}

	chains := o.bridge.Chains()
	chainRecords := make([]*storage.ChainWhitelistRecord, 0, len(chains))
	for chain, config := range chains {
		record := &storage.ChainWhitelistRecord{
			ChainID:   uint64(chain),
			GasBudget: config.GasBudget,
		}
		if config.Enabled {
			record.Enabled = 1
		}
		if config.OutOfOrder {
			record.OutOfOrder = 1
		}
		chainRecords = append(chainRecords, record)
	}
	if err := o.storage.UpdateChainWhitelist(chainRecords); err != nil {
		return errors.Wrap(err, "snapshot: chain whitelist")
	}

	senders := o.bridge.Senders()
	senderRecords := make([]*storage.SenderWhitelistRecord, 0, len(senders))
	for _, sender := range senders {
		senderRecords = append(senderRecords, &storage.SenderWhitelistRecord{Address: string(sender)})
	}
	if err := o.storage.ReplaceSenderWhitelist(senderRecords); err != nil {
		return errors.Wrap(err, "snapshot: sender whitelist")
	}

	var roleRecords []*storage.RoleRecord
	for _, role := range o.roles.Roles() {
		for _, member := range o.roles.Members(role) {
			roleRecords = append(roleRecords, &storage.RoleRecord{
				Role:    string(role),
				Address: string(member),
			})
		}
	}
	if err := o.storage.ReplaceRoles(roleRecords); err != nil {
		return errors.Wrap(err, "snapshot: roles")
	}

	if err := o.snapshotParams(); err != nil {
		return err
	}

	drained := o.journal.Drain()
	eventRecords := make([]*storage.EventRecord, 0, len(drained))
	for _, event := range drained {
		payload, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, "snapshot: encoding event")
		}
		eventRecords = append(eventRecords, &storage.EventRecord{
			Type:      event.Type(),
			Payload:   string(payload),
			CreatedAt: time.Now().Unix(),
		})
	}
	if err := o.storage.AppendEvents(eventRecords); err != nil {
		return errors.Wrap(err, "snapshot: events")
	}

	logger.Debug("snapshot: persisting state... done")
	return nil
}

func (o *Operator) snapshotParams() error {

	params := map[string]string{
		storage.ParamFeePercent:      strconv.FormatInt(o.ledger.FeePercent(), 10),
		storage.ParamThreshold:       o.ledger.Threshold().String(),
		storage.ParamTreasury:        string(o.ledger.Treasury()),
		storage.ParamRewardPool:      string(o.ledger.RewardPool()),
		storage.ParamCooldownSeconds: strconv.FormatInt(int64(o.lottery.Cooldown()/time.Second), 10),
		storage.ParamLedgerPaused:    strconv.FormatBool(o.ledger.Paused()),
		storage.ParamBridgePaused:    strconv.FormatBool(o.bridge.Paused()),
	}

	for key, value := range params {
		if err := o.storage.UpdateParam(key, value); err != nil {
			return errors.Wrapf(err, "snapshot: param %s", key)
		}
	}

	return nil
}
