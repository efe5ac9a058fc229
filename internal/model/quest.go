package model

type Quest struct {
	ID                     string `json:"id"`
	Seq                    int64  `json:"seq"`
	Creator                string `json:"creator"`
	Asset                  string `json:"asset"`
	Amount                 string `json:"amount"`
	Deadline               int64  `json:"deadline"`
	IsActive               bool   `json:"is_active"`
	MaxWinners             int64  `json:"max_winners"`
	TotalWinners           int64  `json:"total_winners"`
	TotalRewardDistributed string `json:"total_reward_distributed"`
	Remaining              string `json:"remaining"`
}

type CreateQuestRequest struct {
	ID         string `json:"id"`
	Asset      string `json:"asset"`
	Amount     string `json:"amount"`
	Deadline   int64  `json:"deadline"`
	MaxWinners int64  `json:"max_winners"`
}

type CreateQuestResponse struct {
	Quest Quest `json:"quest"`
}

type CancelQuestRequest struct {
	ID string `json:"id"`
}

type CancelQuestResponse struct {
	Refunded string `json:"refunded"`
}

type UpdateQuestStatusRequest struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

type UpdateQuestStatusResponse struct{}

type ClaimRemainingRewardRequest struct {
	ID string `json:"id"`
}

type ClaimRemainingRewardResponse struct {
	Amount string `json:"amount"`
}

type GetQuestRequest struct {
	ID string `json:"id"`
}

type GetQuestResponse struct {
	Quest Quest `json:"quest"`
}

type GetAllQuestIDsRequest struct{}

type GetAllQuestIDsResponse struct {
	IDs []string `json:"ids"`
}
