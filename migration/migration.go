package migration

import (
	"context"
	"fmt"

	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Migrator func(ctx context.Context) error

var Migrators = map[string]Migrator{
	"0001": migrate0001,
}

// Migrate runs every versioned migrator that has not run yet, in version
// order. Each migrator runs in its own transaction.
func Migrate(ctx context.Context) error {
	migrationRepo := repository.NewMigrationRepository()

	versions := maps.Keys(Migrators)
	slices.Sort(versions)

	for _, version := range versions {
		done, err := migrationRepo.Exists(ctx, version)
		if err != nil {
			return err
		}

		if done {
			continue
		}

		if err := Run(ctx, version); err != nil {
			return err
		}

		xcontext.Logger(ctx).Infof("Migrated to version %s", version)
	}

	return nil
}

// Run executes a single migrator regardless of whether it ran before.
func Run(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := migrator(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", version, err)
	}

	done, err := repository.NewMigrationRepository().Exists(ctx, version)
	if err != nil {
		return err
	}

	if !done {
		if err := repository.NewMigrationRepository().Create(ctx, version); err != nil {
			return err
		}
	}

	return xcontext.WithCommitDBTransaction(ctx)
}
