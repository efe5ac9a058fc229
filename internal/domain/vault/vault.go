package vault

import (
	"context"
	"math/big"

	"github.com/questx-lab/quest-escrow/pkg/errorx"
)

// Vault moves assets between principals and the escrow account owned by the
// ledger. Every method is a potential external call: implementations may run
// arbitrary code, including calling back into the ledger.
type Vault interface {
	// Address is the escrow account that holds every quest budget.
	Address() string

	// Allowance is the amount owner allows the escrow account to pull.
	Allowance(ctx context.Context, asset, owner string) (*big.Int, error)
	BalanceOf(ctx context.Context, asset, account string) (*big.Int, error)

	// TransferFrom pulls amount of asset from owner into the escrow account.
	TransferFrom(ctx context.Context, asset, owner string, amount *big.Int) error

	// Transfer pays amount of asset from the escrow account to recipient.
	Transfer(ctx context.Context, asset, recipient string, amount *big.Int) error

	NativeBalance(ctx context.Context) (*big.Int, error)
	TransferNative(ctx context.Context, recipient string, amount *big.Int) error

	// ReceiveNative accounts an inbound native transfer into the escrow account.
	ReceiveNative(ctx context.Context, sender string, amount *big.Int) error
}

// Faucet is only offered by vaults whose ledger of balances is local.
type Faucet interface {
	Mint(ctx context.Context, asset, account string, amount *big.Int) error
	Approve(ctx context.Context, asset, owner string, amount *big.Int) error
}

var (
	ErrInsufficientBalance   = errorx.New(errorx.TransferFailed, "Insufficient balance")
	ErrInsufficientAllowance = errorx.New(errorx.TransferFailed, "Insufficient allowance")
	ErrUnsupported           = errorx.New(errorx.NotImplemented, "Not supported by this vault")
)

// Detached reports whether v settles transfers outside the ledger database.
// A rolled back operation cannot undo a transfer of a detached vault.
func Detached(v Vault) bool {
	d, ok := v.(interface{ Detached() bool })
	return ok && d.Detached()
}
