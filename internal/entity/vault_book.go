package entity

import "time"

// NativeAsset keys native-currency balances in the vault book.
const NativeAsset = "native"

type VaultBalance struct {
	Asset     string `gorm:"primaryKey"`
	Account   string `gorm:"primaryKey"`
	Balance   BigInt
	UpdatedAt time.Time
}

type VaultAllowance struct {
	Asset     string `gorm:"primaryKey"`
	Owner     string `gorm:"primaryKey"`
	Spender   string `gorm:"primaryKey"`
	Amount    BigInt
	UpdatedAt time.Time
}
