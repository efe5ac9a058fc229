package main

import (
	"fmt"

	"github.com/questx-lab/quest-escrow/migration"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startReconcile(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()

	orphans, err := migration.OrphanedTransfers(s.ctx)
	if err != nil {
		return err
	}

	for _, o := range orphans {
		xcontext.Logger(s.ctx).Warnf("Orphaned %s of %s %s to %s by %s at %s",
			o.Method, o.Amount.Big().String(), o.Asset, o.Counterparty, o.Operation, o.CreatedAt)
	}

	drifts, err := migration.Reconcile(s.ctx)
	if err != nil {
		return err
	}

	if len(drifts) == 0 {
		xcontext.Logger(s.ctx).Infof("Obligations match the active quests")
		return nil
	}

	for _, d := range drifts {
		xcontext.Logger(s.ctx).Warnf("Obligation of %s is %s, active quests owe %s",
			d.Asset, d.Stored.String(), d.Scanned.String())
	}

	if !cctx.Bool("fix") {
		return fmt.Errorf("found %d mismatched obligations", len(drifts))
	}

	if err := migration.Run(s.ctx, "0001"); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Rebuilt %d obligations", len(drifts))
	return nil
}
