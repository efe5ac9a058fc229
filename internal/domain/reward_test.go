package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/questx-lab/quest-escrow/internal/common"
	"github.com/questx-lab/quest-escrow/internal/domain/guard"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func repeat(s string, n int) []string {
	result := make([]string, n)
	for i := range result {
		result[i] = s
	}
	return result
}

func Test_rewardDomain_Send_Validation(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)
	s.createQuest(t, "inactive", testutil.Creator, testutil.TokenA, 100, 5)
	_, err := s.quest.UpdateStatus(s.as(testutil.Admin), &model.UpdateQuestStatusRequest{ID: "inactive"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller string
		req    model.SendRewardRequest
		want   errorx.Code
	}{
		{
			name:   "not admin",
			caller: testutil.Creator,
			req:    model.SendRewardRequest{QuestID: "quest", Winner: testutil.Winner1, MainAmount: "10"},
			want:   errorx.Unauthorized,
		},
		{
			name:   "unknown quest",
			caller: testutil.Admin,
			req:    model.SendRewardRequest{QuestID: "unknown", Winner: testutil.Winner1, MainAmount: "10"},
			want:   errorx.NotFound,
		},
		{
			name:   "inactive quest",
			caller: testutil.Admin,
			req:    model.SendRewardRequest{QuestID: "inactive", Winner: testutil.Winner1, MainAmount: "10"},
			want:   errorx.InvalidState,
		},
		{
			name:   "mismatched referrer lengths",
			caller: testutil.Admin,
			req: model.SendRewardRequest{
				QuestID:         "quest",
				Winner:          testutil.Winner1,
				MainAmount:      "10",
				Referrers:       []string{testutil.Referrer},
				ReferrerAmounts: []string{"1", "2"},
			},
			want: errorx.InvalidArgument,
		},
		{
			name:   "too many referrers",
			caller: testutil.Admin,
			req: model.SendRewardRequest{
				QuestID:         "quest",
				Winner:          testutil.Winner1,
				Referrers:       repeat(testutil.Referrer, common.MaxReferrers+1),
				ReferrerAmounts: repeat("1", common.MaxReferrers+1),
			},
			want: errorx.InvalidArgument,
		},
		{
			name:   "negative amount",
			caller: testutil.Admin,
			req:    model.SendRewardRequest{QuestID: "quest", Winner: testutil.Winner1, MainAmount: "-1"},
			want:   errorx.InvalidArgument,
		},
		{
			name:   "pay the zero address",
			caller: testutil.Admin,
			req:    model.SendRewardRequest{QuestID: "quest", Winner: testutil.ZeroAddress, MainAmount: "10"},
			want:   errorx.InvalidArgument,
		},
		{
			name:   "zero total",
			caller: testutil.Admin,
			req: model.SendRewardRequest{
				QuestID:         "quest",
				Winner:          testutil.Winner1,
				MainAmount:      "0",
				Referrers:       []string{testutil.Referrer},
				ReferrerAmounts: []string{"0"},
			},
			want: errorx.InvalidArgument,
		},
		{
			name:   "exceed budget",
			caller: testutil.Admin,
			req: model.SendRewardRequest{
				QuestID:         "quest",
				Winner:          testutil.Winner1,
				MainAmount:      "90",
				Referrers:       []string{testutil.Referrer},
				ReferrerAmounts: []string{"11"},
			},
			want: errorx.InsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.reward.Send(s.as(tt.caller), &tt.req)
			requireCode(t, err, tt.want)
		})
	}

	q := s.getQuest(t, "quest")
	require.Equal(t, int64(0), q.TotalWinners)
	require.Equal(t, "0", q.TotalRewardDistributed)
	require.Equal(t, "200", s.balance(t, testutil.TokenA, testutil.EscrowAccount))
}

func Test_rewardDomain_Send(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	resp, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:         "quest",
		Winner:          testutil.Winner1,
		MainAmount:      "20",
		Referrers:       []string{testutil.Referrer, testutil.Winner2},
		ReferrerAmounts: []string{"5", "0"},
	})
	require.NoError(t, err)
	require.Equal(t, "25", resp.Total)

	q := s.getQuest(t, "quest")
	require.Equal(t, int64(1), q.TotalWinners)
	require.Equal(t, "25", q.TotalRewardDistributed)
	require.Equal(t, "75", s.owed(t, testutil.TokenA))

	require.Equal(t, "20", s.balance(t, testutil.TokenA, testutil.Winner1))
	require.Equal(t, "5", s.balance(t, testutil.TokenA, testutil.Referrer))
	require.Equal(t, "0", s.balance(t, testutil.TokenA, testutil.Winner2))
	require.Equal(t, "75", s.balance(t, testutil.TokenA, testutil.EscrowAccount))

	claimed, err := s.reward.HasClaimed(s.ctx, &model.HasClaimedRewardRequest{QuestID: "quest", Principal: testutil.Winner1})
	require.NoError(t, err)
	require.True(t, claimed.Claimed)

	amount, err := s.reward.GetAmountClaimed(s.ctx, &model.GetRewardAmountClaimedRequest{QuestID: "quest", Principal: testutil.Winner1})
	require.NoError(t, err)
	require.Equal(t, "20", amount.Amount)

	// Referrer payments never touch the claim record.
	claimed, err = s.reward.HasClaimed(s.ctx, &model.HasClaimedRewardRequest{QuestID: "quest", Principal: testutil.Referrer})
	require.NoError(t, err)
	require.False(t, claimed.Claimed)

	amount, err = s.reward.GetAmountClaimed(s.ctx, &model.GetRewardAmountClaimedRequest{QuestID: "quest", Principal: testutil.Referrer})
	require.NoError(t, err)
	require.Equal(t, "0", amount.Amount)

	// A zero amount referrer is skipped entirely.
	amount, err = s.reward.GetAmountClaimed(s.ctx, &model.GetRewardAmountClaimedRequest{QuestID: "quest", Principal: testutil.Winner2})
	require.NoError(t, err)
	require.Equal(t, "0", amount.Amount)

	events, err := s.quest.GetEvents(s.ctx, &model.GetQuestEventsRequest{QuestID: "quest"})
	require.NoError(t, err)
	require.Len(t, events.Events, 3)
	s.requireObligationConsistent(t)
}

func Test_rewardDomain_Send_AlreadyClaimed(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	send := func(skip bool) error {
		_, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
			QuestID:          "quest",
			Winner:           testutil.Winner1,
			MainAmount:       "10",
			SkipClaimedCheck: skip,
		})
		return err
	}

	require.NoError(t, send(false))

	err := send(false)
	requireCode(t, err, errorx.AlreadyClaimed)

	q := s.getQuest(t, "quest")
	require.Equal(t, int64(1), q.TotalWinners)
	require.Equal(t, "10", q.TotalRewardDistributed)

	require.NoError(t, send(true))

	q = s.getQuest(t, "quest")
	require.Equal(t, int64(1), q.TotalWinners)
	require.Equal(t, "20", q.TotalRewardDistributed)

	amount, err := s.reward.GetAmountClaimed(s.ctx, &model.GetRewardAmountClaimedRequest{QuestID: "quest", Principal: testutil.Winner1})
	require.NoError(t, err)
	require.Equal(t, "20", amount.Amount)
	require.Equal(t, "20", s.balance(t, testutil.TokenA, testutil.Winner1))
}

func Test_rewardDomain_Send_LimitReached(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 2)

	for _, winner := range []string{testutil.Winner1, testutil.Winner2} {
		_, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
			QuestID:    "quest",
			Winner:     winner,
			MainAmount: "30",
		})
		require.NoError(t, err)
	}

	_, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:    "quest",
		Winner:     testutil.Referrer,
		MainAmount: "30",
	})
	requireCode(t, err, errorx.LimitReached)

	q := s.getQuest(t, "quest")
	require.Equal(t, "40", q.Remaining)
	require.Equal(t, int64(2), q.TotalWinners)
}

func Test_rewardDomain_Send_MaxReferrers(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	_, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:         "quest",
		Winner:          testutil.Winner1,
		Referrers:       repeat(testutil.Referrer, common.MaxReferrers),
		ReferrerAmounts: repeat("1", common.MaxReferrers),
	})
	require.NoError(t, err)

	require.Equal(t, "50", s.balance(t, testutil.TokenA, testutil.Referrer))
	require.Equal(t, "50", s.getQuest(t, "quest").TotalRewardDistributed)

	// A winner paid nothing still takes a slot.
	require.Equal(t, int64(1), s.getQuest(t, "quest").TotalWinners)
}

func Test_rewardDomain_Send_TransferFailed(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	calls := 0
	s.vault.onTransfer = func(context.Context) error {
		// The winner is paid, the referrer transfer fails.
		calls++
		if calls == 2 {
			return errors.New("reverted")
		}
		return nil
	}

	_, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:         "quest",
		Winner:          testutil.Winner1,
		MainAmount:      "10",
		Referrers:       []string{testutil.Referrer},
		ReferrerAmounts: []string{"5"},
	})
	requireCode(t, err, errorx.TransferFailed)
	require.Equal(t, 2, calls)

	q := s.getQuest(t, "quest")
	require.Equal(t, int64(0), q.TotalWinners)
	require.Equal(t, "0", q.TotalRewardDistributed)
	require.Equal(t, "0", s.balance(t, testutil.TokenA, testutil.Winner1))
	require.Equal(t, "100", s.balance(t, testutil.TokenA, testutil.EscrowAccount))
	require.Equal(t, "100", s.owed(t, testutil.TokenA))

	claimed, err := s.reward.HasClaimed(s.ctx, &model.HasClaimedRewardRequest{QuestID: "quest", Principal: testutil.Winner1})
	require.NoError(t, err)
	require.False(t, claimed.Claimed)
}

func Test_rewardDomain_Send_Reentrant(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	var innerErr error
	s.vault.onTransfer = func(ctx context.Context) error {
		_, innerErr = s.reward.Send(ctx, &model.SendRewardRequest{
			QuestID:          "quest",
			Winner:           testutil.Winner1,
			MainAmount:       "10",
			SkipClaimedCheck: true,
		})
		return innerErr
	}

	_, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:    "quest",
		Winner:     testutil.Winner1,
		MainAmount: "10",
	})
	require.Equal(t, guard.ErrReentrant, innerErr)
	requireCode(t, err, errorx.Reentrant)

	q := s.getQuest(t, "quest")
	require.Equal(t, int64(0), q.TotalWinners)
	require.Equal(t, "0", q.TotalRewardDistributed)
	require.Equal(t, "0", s.balance(t, testutil.TokenA, testutil.Winner1))
}

func Test_rewardDomain_SendReferrers(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 1)

	_, err := s.reward.SendReferrers(s.as(testutil.Creator), &model.SendReferrerRewardsRequest{
		QuestID:         "quest",
		Referrers:       []string{testutil.Referrer},
		ReferrerAmounts: []string{"5"},
	})
	requireCode(t, err, errorx.Unauthorized)

	_, err = s.reward.SendReferrers(s.as(testutil.Admin), &model.SendReferrerRewardsRequest{
		QuestID:         "quest",
		Referrers:       []string{testutil.Referrer},
		ReferrerAmounts: []string{"0"},
	})
	requireCode(t, err, errorx.InvalidArgument)

	_, err = s.reward.SendReferrers(s.as(testutil.Admin), &model.SendReferrerRewardsRequest{
		QuestID:         "quest",
		Referrers:       []string{testutil.Referrer},
		ReferrerAmounts: []string{"101"},
	})
	requireCode(t, err, errorx.InsufficientFunds)

	resp, err := s.reward.SendReferrers(s.as(testutil.Admin), &model.SendReferrerRewardsRequest{
		QuestID:         "quest",
		Referrers:       []string{testutil.Referrer, testutil.Winner1},
		ReferrerAmounts: []string{"5", "7"},
	})
	require.NoError(t, err)
	require.Equal(t, "12", resp.Total)

	q := s.getQuest(t, "quest")
	require.Equal(t, int64(0), q.TotalWinners)
	require.Equal(t, "12", q.TotalRewardDistributed)
	require.Equal(t, "7", s.balance(t, testutil.TokenA, testutil.Winner1))

	// Winner1 was only paid as a referrer, it can still win the quest.
	claimed, err := s.reward.HasClaimed(s.ctx, &model.HasClaimedRewardRequest{QuestID: "quest", Principal: testutil.Winner1})
	require.NoError(t, err)
	require.False(t, claimed.Claimed)

	for _, principal := range []string{testutil.Referrer, testutil.Winner1} {
		amount, err := s.reward.GetAmountClaimed(s.ctx, &model.GetRewardAmountClaimedRequest{QuestID: "quest", Principal: principal})
		require.NoError(t, err)
		require.Equal(t, "0", amount.Amount)
	}

	records, err := s.claimRecordRepo.GetByQuestID(s.ctx, "quest")
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:    "quest",
		Winner:     testutil.Winner1,
		MainAmount: "1",
	})
	require.NoError(t, err)

	// Only the main amount counts as claimed.
	amount, err := s.reward.GetAmountClaimed(s.ctx, &model.GetRewardAmountClaimedRequest{QuestID: "quest", Principal: testutil.Winner1})
	require.NoError(t, err)
	require.Equal(t, "1", amount.Amount)
	require.Equal(t, "8", s.balance(t, testutil.TokenA, testutil.Winner1))
	s.requireObligationConsistent(t)
}

func Test_rewardDomain_GetAmountClaimed_InvalidPrincipal(t *testing.T) {
	s := newSuite(t)

	_, err := s.reward.GetAmountClaimed(s.ctx, &model.GetRewardAmountClaimedRequest{QuestID: "quest", Principal: "foo"})
	requireCode(t, err, errorx.InvalidArgument)

	resp, err := s.reward.HasClaimed(s.ctx, &model.HasClaimedRewardRequest{QuestID: "quest", Principal: testutil.Winner1})
	require.NoError(t, err)
	require.False(t, resp.Claimed)
}

// Counters stay within their bounds whatever sequence is applied.
func Test_rewardDomain_Bounds(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.addAsset(t, testutil.TokenB)
	s.createQuest(t, "a", testutil.Creator, testutil.TokenA, 50, 2)
	s.createQuest(t, "b", testutil.Creator2, testutil.TokenB, 30, 3)

	admin := s.as(testutil.Admin)
	winners := []string{testutil.Winner1, testutil.Winner2, testutil.Referrer, testutil.Stranger}
	for i := 0; i < 12; i++ {
		questID := []string{"a", "b"}[i%2]
		_, _ = s.reward.Send(admin, &model.SendRewardRequest{
			QuestID:          questID,
			Winner:           winners[i%len(winners)],
			MainAmount:       amt(int64(7 + i)),
			Referrers:        []string{testutil.Referrer},
			ReferrerAmounts:  []string{amt(int64(i % 3))},
			SkipClaimedCheck: i%3 == 0,
		})

		if i == 5 {
			_, err := s.quest.UpdateStatus(admin, &model.UpdateQuestStatusRequest{ID: "b", IsActive: false})
			require.NoError(t, err)
		}

		if i == 8 {
			_, err := s.quest.UpdateStatus(admin, &model.UpdateQuestStatusRequest{ID: "b", IsActive: true})
			require.NoError(t, err)
		}

		_, _ = s.reward.SendReferrers(admin, &model.SendReferrerRewardsRequest{
			QuestID:         questID,
			Referrers:       []string{testutil.Winner2},
			ReferrerAmounts: []string{"3"},
		})

		for _, id := range []string{"a", "b"} {
			q, err := s.questRepo.GetByID(s.ctx, id)
			require.NoError(t, err)
			require.LessOrEqual(t, q.TotalRewardDistributed.Cmp(&q.Amount.Int), 0)
			require.LessOrEqual(t, q.TotalWinners, q.MaxWinners)
		}

		s.requireObligationConsistent(t)
	}
}
