package migration

import (
	"context"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Drift is an asset whose stored obligation differs from the active quests.
type Drift struct {
	Asset   string
	Stored  *big.Int
	Scanned *big.Int
}

// Reconcile compares the stored obligations with a full scan of the active
// quests. The result is sorted by asset.
func Reconcile(ctx context.Context) ([]Drift, error) {
	scanned, err := ScanObligations(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := repository.NewAssetObligationRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stored := map[string]*big.Int{}
	for _, o := range existing {
		stored[o.Asset] = o.Owed.Big()
	}

	assets := maps.Keys(scanned)
	for asset := range stored {
		if _, ok := scanned[asset]; !ok {
			assets = append(assets, asset)
		}
	}
	slices.Sort(assets)

	var drifts []Drift
	for _, asset := range assets {
		s, ok := stored[asset]
		if !ok {
			s = big.NewInt(0)
		}

		c, ok := scanned[asset]
		if !ok {
			c = big.NewInt(0)
		}

		if s.Cmp(c) != 0 {
			drifts = append(drifts, Drift{Asset: asset, Stored: s, Scanned: c})
		}
	}

	return drifts, nil
}

// OrphanedTransfers lists the vault transfers that were settled on chain by
// operations the ledger rolled back. They need a manual refund or re-booking.
func OrphanedTransfers(ctx context.Context) ([]entity.VaultTransfer, error) {
	return repository.NewVaultTransferRepository().GetByStatus(ctx, entity.VaultTransferOrphaned)
}
