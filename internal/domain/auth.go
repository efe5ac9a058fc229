package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

type AuthDomain interface {
	WalletLogin(context.Context, *model.WalletLoginRequest) (*model.WalletLoginResponse, error)
	WalletVerify(context.Context, *model.WalletVerifyRequest) (*model.WalletVerifyResponse, error)
}

type authDomain struct{}

func NewAuthDomain() *authDomain {
	return &authDomain{}
}

// WalletLogin issues a nonce for address to sign. The nonce travels in a
// short-lived token, so no session state is stored.
func (d *authDomain) WalletLogin(
	ctx context.Context, req *model.WalletLoginRequest,
) (*model.WalletLoginResponse, error) {
	address, err := parseAddress(req.Address, "address")
	if err != nil {
		return nil, err
	}

	nonce := uuid.NewString()
	cfg := xcontext.Configs(ctx).Auth
	token, err := xcontext.TokenEngine(ctx).Generate(
		cfg.NonceToken.Expiration, model.NonceToken{Address: address, Nonce: nonce})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate nonce token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.WalletLoginResponse{Address: address, Nonce: nonce, NonceToken: token}, nil
}

func (d *authDomain) WalletVerify(
	ctx context.Context, req *model.WalletVerifyRequest,
) (*model.WalletVerifyResponse, error) {
	var nonceToken model.NonceToken
	if err := xcontext.TokenEngine(ctx).Verify(req.NonceToken, &nonceToken); err != nil {
		xcontext.Logger(ctx).Debugf("Cannot verify nonce token: %v", err)
		return nil, errorx.New(errorx.Unauthenticated, "Invalid or expired nonce token")
	}

	if err := verifyWalletAnswer(ctx, req.Signature, nonceToken.Nonce, nonceToken.Address); err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Auth
	token, err := xcontext.TokenEngine(ctx).Generate(
		cfg.AccessToken.Expiration, model.AccessToken{Address: nonceToken.Address})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.WalletVerifyResponse{Address: nonceToken.Address, AccessToken: token}, nil
}

func verifyWalletAnswer(ctx context.Context, hexSignature, nonce, address string) error {
	hash := accounts.TextHash([]byte(nonce))
	signature, err := hexutil.Decode(hexSignature)
	if err != nil || len(signature) != ethcrypto.SignatureLength {
		return errorx.New(errorx.BadRequest, "Invalid signature")
	}

	if signature[ethcrypto.RecoveryIDOffset] == 27 || signature[ethcrypto.RecoveryIDOffset] == 28 {
		signature[ethcrypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1
	}

	recovered, err := ethcrypto.SigToPub(hash, signature)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot recover signature to address: %v", err)
		return errorx.New(errorx.BadRequest, "Invalid signature")
	}

	if ethcrypto.PubkeyToAddress(*recovered).Hex() != address {
		return errorx.New(errorx.BadRequest, "Mismatched address")
	}

	return nil
}
