package domain

import (
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/model"
)

func convertQuest(q *entity.Quest) model.Quest {
	if q == nil {
		return model.Quest{}
	}

	return model.Quest{
		ID:                     q.ID,
		Seq:                    q.Seq,
		Creator:                q.Creator,
		Asset:                  q.Asset,
		Amount:                 q.Amount.String(),
		Deadline:               q.Deadline,
		IsActive:               q.IsActive,
		MaxWinners:             q.MaxWinners,
		TotalWinners:           q.TotalWinners,
		TotalRewardDistributed: q.TotalRewardDistributed.String(),
		Remaining:              q.Remaining().String(),
	}
}

func convertLedgerEvent(e *entity.LedgerEvent) model.LedgerEvent {
	if e == nil {
		return model.LedgerEvent{}
	}

	return model.LedgerEvent{
		ID:        eventID(e.ID),
		Type:      string(e.Type),
		QuestID:   e.QuestID,
		Principal: e.Principal,
		Asset:     e.Asset,
		Amount:    e.Amount.String(),
		Data:      e.Data,
		CreatedAt: e.CreatedAt,
	}
}
