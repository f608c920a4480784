package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cogui/internal/database"
	"cogui/internal/models"
)

// SavePreferences upserts the preference blob under its storage key.
func SavePreferences(key string, blob []byte) error {
	if database.DB == nil {
		return fmt.Errorf("database unavailable")
	}
	record := models.PreferenceRecord{StorageKey: key, Blob: string(blob)}
	return database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"blob", "updated_at"}),
	}).Create(&record).Error
}

// LoadPreferences returns the blob stored under key, or (nil, nil) when no
// record exists yet.
func LoadPreferences(key string) ([]byte, error) {
	if database.DB == nil {
		return nil, fmt.Errorf("database unavailable")
	}
	var record models.PreferenceRecord
	err := database.DB.First(&record, "storage_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(record.Blob), nil
}

// RecordAdaptation appends one audit row for an applied auto-adaptation.
func RecordAdaptation(sessionID string, intensity models.Level, flags []string) error {
	if database.DB == nil {
		return fmt.Errorf("database unavailable")
	}
	event := models.AdaptationEvent{
		SessionID: sessionID,
		Intensity: intensity,
		Flags:     pq.StringArray(flags),
	}
	return database.DB.Create(&event).Error
}

// RecentAdaptations returns the newest audit rows for a session.
func RecentAdaptations(sessionID string, limit int) ([]models.AdaptationEvent, error) {
	if database.DB == nil {
		return nil, fmt.Errorf("database unavailable")
	}
	var events []models.AdaptationEvent
	err := database.DB.
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// Persister adapts the package functions to the store's persistence
// interface. The zero value is ready to use.
type Persister struct{}

func (Persister) SavePreferences(key string, blob []byte) error {
	return SavePreferences(key, blob)
}

func (Persister) LoadPreferences(key string) ([]byte, error) {
	return LoadPreferences(key)
}

func (Persister) RecordAdaptation(sessionID string, intensity models.Level, flags []string) error {
	return RecordAdaptation(sessionID, intensity, flags)
}
