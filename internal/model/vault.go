package model

type MintRequest struct {
	Asset   string `json:"asset"`
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type MintResponse struct{}

type ApproveRequest struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type ApproveResponse struct{}

type GetBalanceRequest struct {
	Asset   string `json:"asset"`
	Account string `json:"account"`
}

type GetBalanceResponse struct {
	Balance   string `json:"balance"`
	Allowance string `json:"allowance"`
}
