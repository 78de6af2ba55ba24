// Package domain – idempotency records for unsafe visit writes.
//
// The sync client never auto-retries writes, but a mobile network can still
// deliver the same request twice. The backend records processed write keys so
// a replay returns the original outcome instead of double-applying a visitor
// count.
package domain

import "time"

// Idempotency represents a recorded result of a previously processed visit
// write, keyed by (user_id, refuge_id, key). ExpiresAt bounds how long a key
// stays valid; expired rows are swept periodically.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_refuge_key,priority:1"`
	RefugeID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_refuge_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_refuge_key,priority:3"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
