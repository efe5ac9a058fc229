package migration

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Quest{},
		&entity.ClaimRecord{},
		&entity.SupportedAsset{},
		&entity.LedgerState{},
		&entity.AssetObligation{},
		&entity.LedgerEvent{},
		&entity.VaultBalance{},
		&entity.VaultAllowance{},
		&entity.VaultTransfer{},
		&entity.Migration{},
	)
}
