package storage

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backend/internal/logger"
)

type SqliteStorage struct {
	db *gorm.DB
}

func NewSqliteStorage(path string) *SqliteStorage {

	logger.Debug("initializing database...", zap.String("path", path))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = db.AutoMigrate(
		&BalanceRecord{},
		&EligibleHolderRecord{},
		&DrawRecord{},
		&PendingGainRecord{},
		&ProcessedMessageRecord{},
		&ChainWhitelistRecord{},
		&SenderWhitelistRecord{},
		&RoleRecord{},
		&ParamRecord{},
		&EventRecord{},
	)

	if err != nil {
		panic(err)
	}

	return &SqliteStorage{
		db: db,
	}
}

func (s *SqliteStorage) GetBalances() ([]*BalanceRecord, error) {

	var records []*BalanceRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) UpdateBalances(records []*BalanceRecord) error {
	logger.Debug("update balances...")

	if len(records) == 0 {
		logger.Debug("no balances to persist")
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).CreateInBatches(records, 100).Error

	if err != nil {
		return err
	}

	logger.Debug("update balances... done")
	return nil
}

func (s *SqliteStorage) GetEligibleHolders() ([]*EligibleHolderRecord, error) {

	var records []*EligibleHolderRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// ReplaceEligibleHolders rewrites the whole set: holders leave it through
// removals, so upserting would let stale rows survive.
func (s *SqliteStorage) ReplaceEligibleHolders(records []*EligibleHolderRecord) error {
	logger.Debug("replace eligible holders...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&EligibleHolderRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 100).Error
	})

	if err != nil {
		return err
	}

	logger.Debug("replace eligible holders... done")
	return nil
}

func (s *SqliteStorage) GetDraws() ([]*DrawRecord, error) {

	var records []*DrawRecord
	err := s.db.Order("request_id").Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) UpdateDraws(records []*DrawRecord) error {
	logger.Debug("update draws...")

	if len(records) == 0 {
		logger.Debug("no draws to persist")
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"resolved", "has_winner", "winner", "gain"}),
	}).CreateInBatches(records, 100).Error

	if err != nil {
		return err
	}

	logger.Debug("update draws... done")
	return nil
}

func (s *SqliteStorage) GetPendingGains() ([]*PendingGainRecord, error) {

	var records []*PendingGainRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// ReplacePendingGains rewrites the whole set: gains disappear on claim.
func (s *SqliteStorage) ReplacePendingGains(records []*PendingGainRecord) error {
	logger.Debug("replace pending gains...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&PendingGainRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 100).Error
	})

	if err != nil {
		return err
	}

	logger.Debug("replace pending gains... done")
	return nil
}

func (s *SqliteStorage) GetProcessedMessages() ([]*ProcessedMessageRecord, error) {

	var records []*ProcessedMessageRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// UpdateProcessedMessages only ever inserts: the processed set never shrinks.
func (s *SqliteStorage) UpdateProcessedMessages(records []*ProcessedMessageRecord) error {
	logger.Debug("update processed messages...")

	if len(records) == 0 {
		logger.Debug("no processed messages to persist")
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}},
		DoNothing: true,
	}).CreateInBatches(records, 100).Error

	if err != nil {
		return err
	}

	logger.Debug("update processed messages... done")
	return nil
}

func (s *SqliteStorage) GetChainWhitelist() ([]*ChainWhitelistRecord, error) {

	var records []*ChainWhitelistRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) UpdateChainWhitelist(records []*ChainWhitelistRecord) error {
	logger.Debug("update chain whitelist...")

	if len(records) == 0 {
		logger.Debug("no chain whitelist entries to persist")
		return nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled", "gas_budget", "out_of_order"}),
	}).CreateInBatches(records, 100).Error

	if err != nil {
		return err
	}

	logger.Debug("update chain whitelist... done")
	return nil
}

func (s *SqliteStorage) GetSenderWhitelist() ([]*SenderWhitelistRecord, error) {

	var records []*SenderWhitelistRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) ReplaceSenderWhitelist(records []*SenderWhitelistRecord) error {
	logger.Debug("replace sender whitelist...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SenderWhitelistRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 100).Error
	})

	if err != nil {
		return err
	}

	logger.Debug("replace sender whitelist... done")
	return nil
}

func (s *SqliteStorage) GetRoles() ([]*RoleRecord, error) {

	var records []*RoleRecord
	err := s.db.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *SqliteStorage) ReplaceRoles(records []*RoleRecord) error {
	logger.Debug("replace roles...")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&RoleRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 100).Error
	})

	if err != nil {
		return err
	}

	logger.Debug("replace roles... done")
	return nil
}

func (s *SqliteStorage) GetParam(key string) (string, error) {

	var record ParamRecord
	err := s.db.Where("key = ?", key).First(&record).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return record.Value, nil
}

func (s *SqliteStorage) UpdateParam(key string, value string) error {

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&ParamRecord{Key: key, Value: value}).Error

	if err != nil {
		return err
	}

	return nil
}

func (s *SqliteStorage) AppendEvents(records []*EventRecord) error {
	logger.Debug("append events...")

	if len(records) == 0 {
		logger.Debug("no events to persist")
		return nil
	}

	err := s.db.CreateInBatches(records, 100).Error
	if err != nil {
		return err
	}

	logger.Debug("append events... done")
	return nil
}
