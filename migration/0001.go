package migration

import (
	"context"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/repository"
)

// migrate0001 rebuilds the per-asset obligations from the active quests.
func migrate0001(ctx context.Context) error {
	owed, err := ScanObligations(ctx)
	if err != nil {
		return err
	}

	obligationRepo := repository.NewAssetObligationRepository()
	existing, err := obligationRepo.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, o := range existing {
		if _, ok := owed[o.Asset]; !ok {
			owed[o.Asset] = big.NewInt(0)
		}
	}

	for asset, amount := range owed {
		if err := obligationRepo.Set(ctx, asset, amount); err != nil {
			return err
		}
	}

	return nil
}

// ScanObligations sums the remaining budget of every active quest per asset.
func ScanObligations(ctx context.Context) (map[string]*big.Int, error) {
	quests, err := repository.NewQuestRepository().GetActive(ctx)
	if err != nil {
		return nil, err
	}

	owed := map[string]*big.Int{}
	for _, q := range quests {
		if _, ok := owed[q.Asset]; !ok {
			owed[q.Asset] = big.NewInt(0)
		}

		owed[q.Asset].Add(owed[q.Asset], q.Remaining())
	}

	return owed, nil
}
