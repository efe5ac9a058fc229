package vault

import (
	"math/big"
	"testing"

	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func requireAmount(t *testing.T, want int64, got *big.Int) {
	t.Helper()
	require.Equal(t, big.NewInt(want).String(), got.String())
}

func TestBookVault_TransferFrom(t *testing.T) {
	ctx := testutil.MockContext()
	v := NewBookVault(testutil.EscrowAccount, repository.NewVaultBookRepository())

	require.NoError(t, v.Mint(ctx, testutil.TokenA, testutil.Creator, big.NewInt(100)))

	tests := []struct {
		name      string
		allowance int64
		amount    int64
		wantErr   error
	}{
		{name: "no allowance", allowance: 0, amount: 10, wantErr: ErrInsufficientAllowance},
		{name: "allowance too small", allowance: 5, amount: 10, wantErr: ErrInsufficientAllowance},
		{name: "balance too small", allowance: 1000, amount: 500, wantErr: ErrInsufficientBalance},
		{name: "happy case", allowance: 60, amount: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, v.Approve(ctx, testutil.TokenA, testutil.Creator, big.NewInt(tt.allowance)))

			err := v.TransferFrom(ctx, testutil.TokenA, testutil.Creator, big.NewInt(tt.amount))
			require.Equal(t, tt.wantErr, err)
		})
	}

	balance, err := v.BalanceOf(ctx, testutil.TokenA, testutil.Creator)
	require.NoError(t, err)
	requireAmount(t, 60, balance)

	balance, err = v.BalanceOf(ctx, testutil.TokenA, testutil.EscrowAccount)
	require.NoError(t, err)
	requireAmount(t, 40, balance)

	allowance, err := v.Allowance(ctx, testutil.TokenA, testutil.Creator)
	require.NoError(t, err)
	requireAmount(t, 20, allowance)
}

func TestBookVault_Transfer(t *testing.T) {
	ctx := testutil.MockContext()
	v := NewBookVault(testutil.EscrowAccount, repository.NewVaultBookRepository())

	require.NoError(t, v.Mint(ctx, testutil.TokenA, testutil.EscrowAccount, big.NewInt(30)))

	require.NoError(t, v.Transfer(ctx, testutil.TokenA, testutil.Winner1, big.NewInt(20)))
	require.Equal(t, ErrInsufficientBalance, v.Transfer(ctx, testutil.TokenA, testutil.Winner1, big.NewInt(20)))
	require.NoError(t, v.Transfer(ctx, testutil.TokenA, testutil.Winner1, big.NewInt(0)))

	balance, err := v.BalanceOf(ctx, testutil.TokenA, testutil.Winner1)
	require.NoError(t, err)
	requireAmount(t, 20, balance)

	// Assets are kept apart.
	balance, err = v.BalanceOf(ctx, testutil.TokenB, testutil.Winner1)
	require.NoError(t, err)
	requireAmount(t, 0, balance)
}

func TestBookVault_Native(t *testing.T) {
	ctx := testutil.MockContext()
	v := NewBookVault(testutil.EscrowAccount, repository.NewVaultBookRepository())

	require.NoError(t, v.ReceiveNative(ctx, testutil.Stranger, big.NewInt(7)))
	require.NoError(t, v.ReceiveNative(ctx, testutil.Creator, big.NewInt(3)))

	balance, err := v.NativeBalance(ctx)
	require.NoError(t, err)
	requireAmount(t, 10, balance)

	require.NoError(t, v.TransferNative(ctx, testutil.Admin, big.NewInt(10)))
	require.Equal(t, ErrInsufficientBalance, v.TransferNative(ctx, testutil.Admin, big.NewInt(1)))

	balance, err = v.NativeBalance(ctx)
	require.NoError(t, err)
	requireAmount(t, 0, balance)
}
