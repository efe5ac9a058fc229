package middleware

import (
	"context"

	"github.com/questx-lab/quest-escrow/internal/common"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/router"
)

// OnlyAdmin rejects non-administrators before the request is decoded. The
// ledger checks the caller again when the operation runs.
type OnlyAdmin struct {
	adminVerifier *common.AdminVerifier
}

func NewOnlyAdmin(ledgerStateRepo repository.LedgerStateRepository) *OnlyAdmin {
	return &OnlyAdmin{
		adminVerifier: common.NewAdminVerifier(ledgerStateRepo),
	}
}

func (a *OnlyAdmin) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if err := a.adminVerifier.Verify(ctx); err != nil {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return ctx, nil
	}
}
