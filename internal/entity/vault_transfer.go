package entity

import "github.com/questx-lab/quest-escrow/pkg/enum"

type VaultTransferMethod string

var (
	TransferFromMethod   = enum.New(VaultTransferMethod("transfer_from"))
	TransferMethod       = enum.New(VaultTransferMethod("transfer"))
	TransferNativeMethod = enum.New(VaultTransferMethod("transfer_native"))
	ReceiveNativeMethod  = enum.New(VaultTransferMethod("receive_native"))
)

type VaultTransferStatus string

var (
	// VaultTransferSettled transfers were committed with their operation.
	VaultTransferSettled = enum.New(VaultTransferStatus("settled"))

	// VaultTransferOrphaned transfers were executed by a vault outside the
	// database, but their operation rolled back afterwards.
	VaultTransferOrphaned = enum.New(VaultTransferStatus("orphaned"))
)

type VaultTransfer struct {
	SnowFlakeBase

	Operation    string `gorm:"index"`
	Method       VaultTransferMethod
	Asset        string
	Counterparty string
	Amount       BigInt
	Status       VaultTransferStatus `gorm:"index"`
}
