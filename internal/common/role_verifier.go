package common

import (
	"context"
	"errors"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"golang.org/x/exp/slices"
)

var ErrNotAllowed = errors.New("caller is not allowed")

type AdminVerifier struct {
	ledgerStateRepo repository.LedgerStateRepository
}

func NewAdminVerifier(ledgerStateRepo repository.LedgerStateRepository) *AdminVerifier {
	return &AdminVerifier{ledgerStateRepo: ledgerStateRepo}
}

// Verify checks that the request caller is the current administrator.
func (verifier *AdminVerifier) Verify(ctx context.Context) error {
	state, err := verifier.ledgerStateRepo.Get(ctx)
	if err != nil {
		return err
	}

	return VerifyCaller(state, xcontext.RequestUserID(ctx))
}

// VerifyCaller checks caller against the administrator of state and any
// extra principals allowed for the operation.
func VerifyCaller(state *entity.LedgerState, caller string, allowed ...string) error {
	if caller == "" {
		return ErrNotAllowed
	}

	if !slices.Contains(append(allowed, state.Admin), caller) {
		return ErrNotAllowed
	}

	return nil
}
