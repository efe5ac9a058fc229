package entity

import "time"

type ClaimRecord struct {
	QuestID   string `gorm:"primaryKey"`
	Principal string `gorm:"primaryKey"`

	// Amount accumulates the main amounts paid to the principal as a winner.
	// Referrer payments are never recorded here.
	Amount BigInt

	// Claimed is only set when the principal was paid as a winner.
	Claimed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
