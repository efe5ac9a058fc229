package model

type AddSupportedAssetRequest struct {
	Asset string `json:"asset"`
}

type AddSupportedAssetResponse struct{}

type RemoveSupportedAssetRequest struct {
	Asset string `json:"asset"`
}

type RemoveSupportedAssetResponse struct{}

type IsAssetSupportedRequest struct {
	Asset string `json:"asset"`
}

type IsAssetSupportedResponse struct {
	Supported bool `json:"supported"`
}

type WithdrawAllAssetBalanceRequest struct {
	Asset string `json:"asset"`
}

type WithdrawAllAssetBalanceResponse struct {
	Amount string `json:"amount"`
}

type WithdrawAllNativeBalanceRequest struct{}

type WithdrawAllNativeBalanceResponse struct {
	Amount string `json:"amount"`
}

type DepositNativeRequest struct {
	Amount string `json:"amount"`
}

type DepositNativeResponse struct{}

type GetObligationRequest struct {
	Asset string `json:"asset"`
}

type GetObligationResponse struct {
	Asset        string `json:"asset"`
	Owed         string `json:"owed"`
	Balance      string `json:"balance"`
	Withdrawable string `json:"withdrawable"`
}
