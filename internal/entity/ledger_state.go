package entity

import "time"

const LedgerStateID = 1

type LedgerState struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	Admin     string
	Paused    bool
	UpdatedAt time.Time
}
