package entity

import "github.com/questx-lab/quest-escrow/pkg/enum"

type LedgerEventType string

var (
	QuestCreatedEvent        = enum.New(LedgerEventType("quest_created"))
	QuestCancelledEvent      = enum.New(LedgerEventType("quest_cancelled"))
	RewardDistributedEvent   = enum.New(LedgerEventType("reward_distributed"))
	ReferrerRewardEvent      = enum.New(LedgerEventType("referrer_reward_distributed"))
	QuestStatusUpdatedEvent  = enum.New(LedgerEventType("quest_status_updated"))
	ResidueClaimedEvent      = enum.New(LedgerEventType("residue_claimed"))
	AssetSupportChangedEvent = enum.New(LedgerEventType("asset_support_changed"))
	AssetWithdrawnEvent      = enum.New(LedgerEventType("asset_withdrawn"))
	NativeWithdrawnEvent     = enum.New(LedgerEventType("native_withdrawn"))
	NativeDepositedEvent     = enum.New(LedgerEventType("native_deposited"))
	LedgerPausedEvent        = enum.New(LedgerEventType("paused"))
	LedgerUnpausedEvent      = enum.New(LedgerEventType("unpaused"))
	AdminTransferredEvent    = enum.New(LedgerEventType("admin_transferred"))
)

type LedgerEvent struct {
	SnowFlakeBase

	Type      LedgerEventType `gorm:"index"`
	QuestID   string          `gorm:"index"`
	Principal string
	Asset     string
	Amount    BigInt
	Data      Map
}
