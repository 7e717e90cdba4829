package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"commodity_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Key of the persisted credential slot.
const credentialKey = "api_key"

// Storage persists the session credential and the last synced commodity
// catalog across restarts.
type Storage struct {
	db *gorm.DB
}

var _ domain.CredentialStore = (*Storage)(nil)

// NewStorage opens (or creates) the SQLite database. An empty path resolves
// to the OS user config directory.
func NewStorage(path string) (*Storage, error) {
	if path == "" {
		var err error
		path, err = defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Setting{}, &domain.Commodity{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func defaultDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "CommodityGo", "data", "commodity.db"), nil
}

// ======================================================================================
// Credential slot
// ======================================================================================

// GetCredential returns the stored credential, if any.
func (s *Storage) GetCredential() (string, bool, error) {
	var row domain.Setting
	err := s.db.First(&row, "key = ?", credentialKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if row.Value == "" {
		return "", false, nil
	}
	return row.Value, true, nil
}

// SetCredential persists the credential, replacing any previous one.
func (s *Storage) SetCredential(key string) error {
	return s.db.Save(&domain.Setting{Key: credentialKey, Value: key}).Error
}

// ClearCredential removes the stored credential.
func (s *Storage) ClearCredential() error {
	return s.db.Where("key = ?", credentialKey).Delete(&domain.Setting{}).Error
}

// ======================================================================================
// Catalog cache
// ======================================================================================

// SaveCatalog replaces the cached commodity catalog wholesale, matching the
// full-replace refresh semantics of the live catalog.
func (s *Storage) SaveCatalog(commodities []domain.Commodity) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Commodity{}).Error; err != nil {
			return err
		}
		if len(commodities) == 0 {
			return nil
		}
		return tx.Create(&commodities).Error
	})
}

// LoadCatalog returns the last synced catalog, ordered by id.
func (s *Storage) LoadCatalog() ([]domain.Commodity, error) {
	var out []domain.Commodity
	err := s.db.Order("id").Find(&out).Error
	return out, err
}
