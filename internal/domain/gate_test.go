package domain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/pubsub"
	"github.com/questx-lab/quest-escrow/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_ledgerGate_Publish(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	packs := s.publisher.Published()
	require.Len(t, packs, 2)

	// Events without a quest are keyed by their type.
	require.Equal(t, string(entity.AssetSupportChangedEvent), string(packs[0].Key))
	require.Equal(t, "quest", string(packs[1].Key))

	var event model.LedgerEvent
	require.NoError(t, json.Unmarshal(packs[1].Msg, &event))
	require.Equal(t, string(entity.QuestCreatedEvent), event.Type)
	require.Equal(t, testutil.Creator, event.Principal)
	require.Equal(t, "100", event.Amount)
	require.NotEmpty(t, event.ID)
}

func Test_ledgerGate_PublishFailure(t *testing.T) {
	s := newSuite(t)
	s.publisher.PublishFunc = func(context.Context, string, *pubsub.Pack) error {
		return errors.New("broker is down")
	}

	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	// The operation is committed, the event is stored anyway.
	events, err := s.quest.GetEvents(s.ctx, &model.GetQuestEventsRequest{QuestID: "quest"})
	require.NoError(t, err)
	require.Len(t, events.Events, 1)
}

func Test_ledgerGate_NoPublishOnFailure(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	s.vault.onTransfer = func(context.Context) error { return errors.New("reverted") }
	_, err := s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:    "quest",
		Winner:     testutil.Winner1,
		MainAmount: "10",
	})
	require.Error(t, err)
	require.Len(t, s.publisher.Published(), 2)

	events, err := s.quest.GetEvents(s.ctx, &model.GetQuestEventsRequest{QuestID: "quest"})
	require.NoError(t, err)
	require.Len(t, events.Events, 1)
}

func Test_ledgerGate_VaultTransfers(t *testing.T) {
	s := newSuite(t)
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	settled, err := s.transferRepo.GetByStatus(s.ctx, entity.VaultTransferSettled)
	require.NoError(t, err)
	require.Len(t, settled, 1)
	require.Equal(t, "create_quest", settled[0].Operation)
	require.Equal(t, entity.TransferFromMethod, settled[0].Method)
	require.Equal(t, testutil.Creator, settled[0].Counterparty)
	require.Equal(t, "100", settled[0].Amount.Big().String())

	// The ledger vault rolls back with the operation, no orphan is left.
	s.vault.onTransfer = func(context.Context) error { return errors.New("reverted") }
	_, err = s.reward.Send(s.as(testutil.Admin), &model.SendRewardRequest{
		QuestID:    "quest",
		Winner:     testutil.Winner1,
		MainAmount: "10",
	})
	require.Error(t, err)

	orphans, err := s.transferRepo.GetByStatus(s.ctx, entity.VaultTransferOrphaned)
	require.NoError(t, err)
	require.Empty(t, orphans)
}

func Test_ledgerGate_DetachedVaultOrphans(t *testing.T) {
	s := newSuite(t)
	s.vault.detached = true
	s.addAsset(t, testutil.TokenA)
	s.createQuest(t, "quest", testutil.Creator, testutil.TokenA, 100, 5)

	// The winner is paid on chain, then the referrer transfer fails.
	calls := 0
	s.vault.onTransfer = func(context.Context) error {
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

	// The ledger is untouched.
	q := s.getQuest(t, "quest")
	require.Equal(t, int64(0), q.TotalWinners)
	require.Equal(t, "0", q.TotalRewardDistributed)
	require.Equal(t, "100", s.owed(t, testutil.TokenA))

	orphans, err := s.transferRepo.GetByStatus(s.ctx, entity.VaultTransferOrphaned)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	require.Equal(t, "send_reward", orphans[0].Operation)
	require.Equal(t, entity.TransferMethod, orphans[0].Method)
	require.Equal(t, testutil.TokenA, orphans[0].Asset)
	require.Equal(t, testutil.Winner1, orphans[0].Counterparty)
	require.Equal(t, "10", orphans[0].Amount.Big().String())
	require.NotZero(t, orphans[0].ID)

	// Only the create transfer was committed.
	settled, err := s.transferRepo.GetByStatus(s.ctx, entity.VaultTransferSettled)
	require.NoError(t, err)
	require.Len(t, settled, 1)
}
