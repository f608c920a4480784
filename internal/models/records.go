package models

import (
	"time"

	"github.com/lib/pq"
)

// PreferenceRecord is the durable key-value slot a preference snapshot is
// persisted under. The blob is JSON: preferences plus per-key provenance.
type PreferenceRecord struct {
	StorageKey string `gorm:"primaryKey;size:128"`
	Blob       string `gorm:"type:text"`
	UpdatedAt  time.Time
}

// AdaptationEvent is one audit row written whenever an automatic adaptation
// is applied to preferences.
type AdaptationEvent struct {
	ID        int `gorm:"primaryKey"`
	SessionID string
	Intensity Level
	Flags     pq.StringArray `gorm:"type:text[]"`
	CreatedAt time.Time
}
