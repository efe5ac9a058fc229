package entity

import "math/big"

type Quest struct {
	Base

	// Seq orders quests by creation and is never reused.
	Seq int64 `gorm:"uniqueIndex"`

	Creator    string `gorm:"index"`
	Asset      string `gorm:"index"`
	Amount     BigInt
	Deadline   int64
	IsActive   bool
	MaxWinners int64

	TotalWinners           int64
	TotalRewardDistributed BigInt
}

// Remaining is the part of the budget not yet distributed.
func (q *Quest) Remaining() *big.Int {
	return new(big.Int).Sub(&q.Amount.Int, &q.TotalRewardDistributed.Int)
}
