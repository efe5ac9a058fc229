package entity

import "time"

// Migration records a versioned migrator that already ran.
type Migration struct {
	Version   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
