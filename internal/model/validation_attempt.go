package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttemptOutcome string

const (
	AttemptOutcomeSucceeded      AttemptOutcome = "SUCCEEDED"
	AttemptOutcomeFailed         AttemptOutcome = "FAILED"
	AttemptOutcomeTransportError AttemptOutcome = "TRANSPORT_ERROR"
)

// ValidationAttempt is one resolved submission of a plate to the validator.
type ValidationAttempt struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Plate        string         `gorm:"type:text;not null" json:"plate"`
	CompactPlate string         `gorm:"type:text;not null;index" json:"compact_plate"`
	Variant      string         `gorm:"type:varchar(16);not null" json:"variant"`
	Outcome      AttemptOutcome `gorm:"type:attempt_outcome;not null" json:"outcome"`
	Result       *string        `gorm:"type:text" json:"result"`
	Message      *string        `gorm:"type:text" json:"message"`
	RequestedAt  time.Time      `gorm:"not null;index" json:"requested_at"`
	DurationMs   int64          `gorm:"not null" json:"duration_ms"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (ValidationAttempt) TableName() string {
	return "validation_attempts"
}

func (a *ValidationAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
