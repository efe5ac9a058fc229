package vault

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

const erc20ABI = `[
{"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

const nativeTransferGas = 21000

var (
	errTransactionReverted = errors.New("transaction reverted")
	errTransferRejected    = errors.New("token rejected the transfer")
)

type EthClient interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// erc20Vault holds escrowed tokens in an account controlled by the service
// key and talks to the token contracts directly.
type erc20Vault struct {
	client         EthClient
	privateKey     *ecdsa.PrivateKey
	escrow         common.Address
	chainID        *big.Int
	receiptTimeout time.Duration
	parsedABI      abi.ABI
}

func NewERC20Vault(
	client EthClient,
	privateKey *ecdsa.PrivateKey,
	chainID *big.Int,
	receiptTimeout time.Duration,
) (*erc20Vault, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}

	return &erc20Vault{
		client:         client,
		privateKey:     privateKey,
		escrow:         crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:        chainID,
		receiptTimeout: receiptTimeout,
		parsedABI:      parsed,
	}, nil
}

// Detached marks token transfers as settled on chain, a database rollback
// never reverts them.
func (v *erc20Vault) Detached() bool {
	return true
}

func (v *erc20Vault) Address() string {
	return v.escrow.Hex()
}

func (v *erc20Vault) contract(asset string) *bind.BoundContract {
	return bind.NewBoundContract(common.HexToAddress(asset), v.parsedABI, v.client, v.client, v.client)
}

func (v *erc20Vault) call(ctx context.Context, asset, method string, args ...any) (*big.Int, error) {
	var out []any
	if err := v.contract(asset).Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}

	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected output length %d of %s", len(out), method)
	}

	result, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T of %s", out[0], method)
	}

	return result, nil
}

func (v *erc20Vault) Allowance(ctx context.Context, asset, owner string) (*big.Int, error) {
	return v.call(ctx, asset, "allowance", common.HexToAddress(owner), v.escrow)
}

func (v *erc20Vault) BalanceOf(ctx context.Context, asset, account string) (*big.Int, error) {
	return v.call(ctx, asset, "balanceOf", common.HexToAddress(account))
}

func (v *erc20Vault) TransferFrom(ctx context.Context, asset, owner string, amount *big.Int) error {
	return v.transact(ctx, asset, "transferFrom", common.HexToAddress(owner), v.escrow, amount)
}

func (v *erc20Vault) Transfer(ctx context.Context, asset, recipient string, amount *big.Int) error {
	return v.transact(ctx, asset, "transfer", common.HexToAddress(recipient), amount)
}

func (v *erc20Vault) NativeBalance(ctx context.Context) (*big.Int, error) {
	return v.client.BalanceAt(ctx, v.escrow, nil)
}

func (v *erc20Vault) TransferNative(ctx context.Context, recipient string, amount *big.Int) error {
	nonce, err := v.client.PendingNonceAt(ctx, v.escrow)
	if err != nil {
		return err
	}

	gasPrice, err := v.client.SuggestGasPrice(ctx)
	if err != nil {
		return err
	}

	to := common.HexToAddress(recipient)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      nativeTransferGas,
		GasPrice: gasPrice,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(v.chainID), v.privateKey)
	if err != nil {
		return err
	}

	if err := v.client.SendTransaction(ctx, signedTx); err != nil {
		return err
	}

	return v.waitMined(ctx, signedTx)
}

// ReceiveNative is not supported on chain. Native deposits arrive as plain
// value transfers to the escrow account and are swept by
// WithdrawAllNativeBalance, the ledger never books them.
func (v *erc20Vault) ReceiveNative(ctx context.Context, sender string, amount *big.Int) error {
	return ErrUnsupported
}

func (v *erc20Vault) transact(ctx context.Context, asset, method string, args ...any) error {
	if err := v.simulate(ctx, asset, method, args...); err != nil {
		return err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(v.privateKey, v.chainID)
	if err != nil {
		return err
	}
	opts.Context = ctx

	tx, err := v.contract(asset).Transact(opts, method, args...)
	if err != nil {
		return err
	}

	return v.waitMined(ctx, tx)
}

// simulate dry-runs method from the escrow account. Tokens that return
// nothing are accepted, a false result rejects the transfer before anything
// is sent.
func (v *erc20Vault) simulate(ctx context.Context, asset, method string, args ...any) error {
	input, err := v.parsedABI.Pack(method, args...)
	if err != nil {
		return err
	}

	token := common.HexToAddress(asset)
	output, err := v.client.CallContract(ctx, ethereum.CallMsg{From: v.escrow, To: &token, Data: input}, nil)
	if err != nil {
		return err
	}

	if len(output) == 0 {
		return nil
	}

	out, err := v.parsedABI.Unpack(method, output)
	if err != nil {
		return err
	}

	if len(out) != 1 {
		return fmt.Errorf("unexpected output length %d of %s", len(out), method)
	}

	if ok, _ := out[0].(bool); !ok {
		xcontext.Logger(ctx).Errorf("Token %s rejected %s", asset, method)
		return errTransferRejected
	}

	return nil
}

func (v *erc20Vault) waitMined(ctx context.Context, tx *types.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, v.receiptTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, v.client, tx)
	if err != nil {
		return err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		xcontext.Logger(ctx).Errorf("Transaction %s reverted", tx.Hash().Hex())
		return errTransactionReverted
	}

	return nil
}
