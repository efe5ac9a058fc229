package entity

import "time"

type SupportedAsset struct {
	Asset     string `gorm:"primaryKey"`
	Supported bool
	UpdatedAt time.Time
}
