// Package dbstore persists the history document in SQLite through GORM.
package dbstore

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/yiblet/cliphist/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	keyMaxItems  = "max_items"
	keyDBVersion = "db_version"
	keyRevision  = "revision"

	batchSize = 100
)

// SQLiteStore is a SQLite-backed implementation of store.Persister.
// Each Save replaces all records inside one transaction.
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&HistoryRecordModel{}, &SettingModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}
	if err := s.setDefault(keyDBVersion, "1"); err != nil {
		return nil, fmt.Errorf("failed to init settings: %w", err)
	}
	if err := s.setDefault(keyRevision, "0"); err != nil {
		return nil, fmt.Errorf("failed to init settings: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Load reads the document. A database that has never been saved to
// returns store.ErrNoDocument.
func (s *SQLiteStore) Load() (*store.Document, error) {
	raw, err := s.getSetting(s.db, keyMaxItems)
	if err != nil {
		return nil, err
	}

	doc := &store.Document{}
	// An unreadable value leaves Capacity at 0, which decodes as the default.
	if n, err := strconv.Atoi(raw); err == nil {
		doc.Capacity = n
	}

	var models []*HistoryRecordModel
	if err := s.db.Order("position ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}

	doc.History = make([]store.EntryRecord, len(models))
	for i, m := range models {
		doc.History[i] = m.ToRecord()
	}
	return doc, nil
}

// Save replaces every record and the capacity in a single transaction.
func (s *SQLiteStore) Save(doc *store.Document) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&HistoryRecordModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear history records: %w", err)
		}

		if len(doc.History) > 0 {
			models := make([]*HistoryRecordModel, len(doc.History))
			for i, rec := range doc.History {
				models[i] = fromRecord(i, rec)
			}
			if err := tx.CreateInBatches(models, batchSize).Error; err != nil {
				return fmt.Errorf("failed to write history records: %w", err)
			}
		}

		if err := s.setSetting(tx, keyMaxItems, strconv.Itoa(doc.Capacity)); err != nil {
			return err
		}

		raw, err := s.getSetting(tx, keyRevision)
		if err != nil {
			return err
		}
		rev, _ := strconv.Atoi(raw)
		return s.setSetting(tx, keyRevision, strconv.Itoa(rev+1))
	})
}

// Version returns the save counter, bumped inside every Save transaction.
// A database that has never been saved to has version "".
func (s *SQLiteStore) Version() (string, error) {
	rev, err := s.getSetting(s.db, keyRevision)
	if err != nil {
		return "", err
	}
	if rev == "0" {
		return "", nil
	}
	return rev, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// getSetting retrieves a setting, mapping a missing max_items to ErrNoDocument.
func (s *SQLiteStore) getSetting(db *gorm.DB, key string) (string, error) {
	var model SettingModel
	if err := db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if key == keyMaxItems {
				return "", store.ErrNoDocument
			}
			return "", fmt.Errorf("setting not found: %s", key)
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return model.Value, nil
}

// setSetting stores a setting (upsert)
func (s *SQLiteStore) setSetting(db *gorm.DB, key, value string) error {
	model := &SettingModel{
		Key:   key,
		Value: value,
	}

	result := db.Where("key = ?", key).
		Assign(map[string]interface{}{"value": value, "updated_at": db.NowFunc()}).
		FirstOrCreate(model)
	if result.Error != nil {
		return fmt.Errorf("failed to set setting: %w", result.Error)
	}
	return nil
}

// setDefault sets a setting only if it is not already present
func (s *SQLiteStore) setDefault(key, value string) error {
	if _, err := s.getSetting(s.db, key); err == nil {
		return nil
	}
	return s.setSetting(s.db, key, value)
}
