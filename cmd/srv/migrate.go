package main

import (
	"github.com/questx-lab/quest-escrow/migration"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()

	version := cctx.String("version")
	if version == "" {
		return nil
	}

	if err := migration.Run(s.ctx, version); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Migrated version %s again", version)
	return nil
}
