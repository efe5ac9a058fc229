package domain

import (
	"context"
	"errors"
	"math/big"

	"github.com/questx-lab/quest-escrow/internal/common"
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/ethutil"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"gorm.io/gorm"
)

func parseAddress(s, field string) (string, error) {
	addr, err := ethutil.NormalizeAddress(s)
	if err != nil {
		return "", errorx.New(errorx.InvalidArgument, "Invalid %s", field)
	}

	return addr, nil
}

func parseNonNegativeAmount(s, field string) (*big.Int, error) {
	amount, ok := common.ParseAmount(s)
	if !ok {
		return nil, errorx.New(errorx.InvalidArgument, "Invalid %s", field)
	}

	if amount.Sign() < 0 {
		return nil, errorx.New(errorx.InvalidArgument, "Not allow a negative %s", field)
	}

	return amount, nil
}

func requireCaller(ctx context.Context) (string, error) {
	caller := xcontext.RequestUserID(ctx)
	if caller == "" {
		return "", errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	return caller, nil
}

// payout is one entry of a validated list of recipients with their amounts. Entries with
// a zero amount are kept so the claim records still see the recipient.
type payout struct {
	recipient string
	amount    *big.Int
}

func parseReferrers(referrers, amounts []string) ([]payout, *big.Int, error) {
	if len(referrers) != len(amounts) {
		return nil, nil, errorx.New(errorx.InvalidArgument, "Referrers and amounts have different lengths")
	}

	if len(referrers) > common.MaxReferrers {
		return nil, nil, errorx.New(errorx.InvalidArgument, "Too many referrers, the maximum is %d", common.MaxReferrers)
	}

	total := big.NewInt(0)
	result := make([]payout, 0, len(referrers))
	for i := range referrers {
		amount, err := parseNonNegativeAmount(amounts[i], "referrer amount")
		if err != nil {
			return nil, nil, err
		}

		recipient, err := parsePayoutRecipient(referrers[i], amount, "referrer")
		if err != nil {
			return nil, nil, err
		}

		total.Add(total, amount)
		result = append(result, payout{recipient: recipient, amount: amount})
	}

	return result, total, nil
}

// parsePayoutRecipient accepts the zero address only when nothing is paid to
// it.
func parsePayoutRecipient(s string, amount *big.Int, field string) (string, error) {
	addr, err := ethutil.NormalizeAddress(s)
	if err == nil {
		return addr, nil
	}

	if err == ethutil.ErrZeroAddress && amount.Sign() == 0 {
		return ethutil.ZeroAddress, nil
	}

	if err == ethutil.ErrZeroAddress {
		return "", errorx.New(errorx.InvalidArgument, "Not allow to pay the zero address as %s", field)
	}

	return "", errorx.New(errorx.InvalidArgument, "Invalid %s", field)
}

func loadQuest(ctx context.Context, questRepo repository.QuestRepository, id string) (*entity.Quest, error) {
	quest, err := questRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	return quest, nil
}
