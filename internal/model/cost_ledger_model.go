package model

import (
	"time"

	"github.com/google/uuid"
)

type CostLedgerEntry struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Model     string    `gorm:"type:varchar(128);not null"`
	TokensIn  int       `gorm:"not null"`
	TokensOut int       `gorm:"not null"`
	CostUSD   float64   `gorm:"type:numeric(10,6);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CostLedgerEntry) TableName() string {
	return "cost_ledger"
}
