package model

type PauseRequest struct{}

type PauseResponse struct{}

type UnpauseRequest struct{}

type UnpauseResponse struct{}

type TransferAdminRequest struct {
	NewAdmin string `json:"new_admin"`
}

type TransferAdminResponse struct{}

type GetLedgerStateRequest struct{}

type GetLedgerStateResponse struct {
	Admin           string   `json:"admin"`
	Paused          bool     `json:"paused"`
	EscrowAccount   string   `json:"escrow_account"`
	SupportedAssets []string `json:"supported_assets"`
}
