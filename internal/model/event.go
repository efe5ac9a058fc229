package model

import "time"

type LedgerEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	QuestID   string         `json:"quest_id,omitempty"`
	Principal string         `json:"principal,omitempty"`
	Asset     string         `json:"asset,omitempty"`
	Amount    string         `json:"amount,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type GetQuestEventsRequest struct {
	QuestID string `json:"quest_id"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetQuestEventsResponse struct {
	Events []LedgerEvent `json:"events"`
}
