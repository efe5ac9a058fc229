package entity

import "time"

// AssetObligation is the amount of an asset still owed to active quests.
type AssetObligation struct {
	Asset     string `gorm:"primaryKey"`
	Owed      BigInt
	UpdatedAt time.Time
}
