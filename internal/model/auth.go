package model

type AccessToken struct {
	Address string `json:"address"`
}

type NonceToken struct {
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
}

type WalletLoginRequest struct {
	Address string `json:"address"`
}

type WalletLoginResponse struct {
	Address    string `json:"address"`
	Nonce      string `json:"nonce"`
	NonceToken string `json:"nonce_token"`
}

type WalletVerifyRequest struct {
	NonceToken string `json:"nonce_token"`
	Signature  string `json:"signature"`
}

type WalletVerifyResponse struct {
	Address     string `json:"address"`
	AccessToken string `json:"access_token"`
}
