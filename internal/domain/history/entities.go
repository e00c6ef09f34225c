package history

import "time"

// Event records one lifecycle transition of an application. Table: status_events.
type Event struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	EventID string `gorm:"column:event_id;size:32;not null;uniqueIndex" json:"event_id"`
	// FK to loan_applications.id (numeric)
	ApplicationID uint64    `gorm:"column:application_id;not null;index" json:"-"`
	From          string    `gorm:"column:from_status;size:16" json:"from"`
	To            string    `gorm:"column:to_status;size:16;not null" json:"to"`
	Actor         string    `gorm:"column:actor;size:40" json:"actor,omitempty"`
	Reason        string    `gorm:"column:reason;size:255" json:"reason,omitempty"`
	OccurredAt    time.Time `gorm:"column:occurred_at;not null" json:"occurred_at"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (Event) TableName() string { return "status_events" }
