package model

type SendRewardRequest struct {
	QuestID          string   `json:"quest_id"`
	Winner           string   `json:"winner"`
	MainAmount       string   `json:"main_amount"`
	Referrers        []string `json:"referrers"`
	ReferrerAmounts  []string `json:"referrer_amounts"`
	SkipClaimedCheck bool     `json:"skip_claimed_check"`
}

type SendRewardResponse struct {
	Total string `json:"total"`
}

type SendReferrerRewardsRequest struct {
	QuestID         string   `json:"quest_id"`
	Referrers       []string `json:"referrers"`
	ReferrerAmounts []string `json:"referrer_amounts"`
}

type SendReferrerRewardsResponse struct {
	Total string `json:"total"`
}

type GetRewardAmountClaimedRequest struct {
	QuestID   string `json:"quest_id"`
	Principal string `json:"principal"`
}

type GetRewardAmountClaimedResponse struct {
	Amount string `json:"amount"`
}

type HasClaimedRewardRequest struct {
	QuestID   string `json:"quest_id"`
	Principal string `json:"principal"`
}

type HasClaimedRewardResponse struct {
	Claimed bool `json:"claimed"`
}
