package dbstore

import (
	"time"

	"github.com/yiblet/cliphist/internal/store"
)

// HistoryRecordModel is one history record. Position 0 is the most recent.
type HistoryRecordModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Position  int       `gorm:"not null;index"`
	RecordID  string    `gorm:"column:record_id;size:128;not null;index"` // fingerprint hex
	Type      string    `gorm:"size:16;not null"`
	Content   string    `gorm:"type:text;not null"` // literal text or base64 image bytes
	Timestamp float64   `gorm:"not null"`           // Unix seconds
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for HistoryRecordModel
func (HistoryRecordModel) TableName() string {
	return "history_records"
}

func fromRecord(position int, rec store.EntryRecord) *HistoryRecordModel {
	return &HistoryRecordModel{
		Position:  position,
		RecordID:  rec.ID,
		Type:      rec.Type,
		Content:   rec.Content,
		Timestamp: rec.Timestamp,
	}
}

// ToRecord converts the GORM model to a store.EntryRecord
func (m *HistoryRecordModel) ToRecord() store.EntryRecord {
	return store.EntryRecord{
		ID:        m.RecordID,
		Type:      m.Type,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

// SettingModel is a key-value pair describing the document, such as max_items.
type SettingModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for SettingModel
func (SettingModel) TableName() string {
	return "settings"
}
