package models

import (
	"time"
)

// GormMatchRecord is the persisted form of a MatchRecord.
type GormMatchRecord struct {
	ID        uint                   `gorm:"primaryKey"`
	RoomID    string                 `gorm:"index;not null"`
	GameKey   string                 `gorm:"not null"`
	Players   map[string]interface{} `gorm:"type:jsonb;serializer:json"`
	Scores    map[string]interface{} `gorm:"type:jsonb;serializer:json"`
	History   []interface{}          `gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time
}

// TableName keeps the table shared with the raw-SQL store.
func (GormMatchRecord) TableName() string { return "match_records" }
