package domain

import (
	"context"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/quest-escrow/internal/domain/guard"
	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/migration"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type bookVault interface {
	vault.Vault
	vault.Faucet
}

// hookVault runs a callback before each outbound transfer, like a token
// contract that calls back into the ledger.
type hookVault struct {
	bookVault

	onTransferFrom func(ctx context.Context) error
	onTransfer     func(ctx context.Context) error

	// detached makes the vault behave like an on-chain vault whose transfers
	// survive a rollback of the ledger database.
	detached bool
}

func (v *hookVault) Detached() bool {
	return v.detached
}

func (v *hookVault) TransferFrom(ctx context.Context, asset, owner string, amount *big.Int) error {
	if v.onTransferFrom != nil {
		if err := v.onTransferFrom(ctx); err != nil {
			return err
		}
	}

	return v.bookVault.TransferFrom(ctx, asset, owner, amount)
}

func (v *hookVault) Transfer(ctx context.Context, asset, recipient string, amount *big.Int) error {
	if v.onTransfer != nil {
		if err := v.onTransfer(ctx); err != nil {
			return err
		}
	}

	return v.bookVault.Transfer(ctx, asset, recipient, amount)
}

type suite struct {
	ctx   context.Context
	now   time.Time
	vault *hookVault

	publisher       *testutil.MockPublisher
	questRepo       repository.QuestRepository
	claimRecordRepo repository.ClaimRecordRepository
	obligationRepo  repository.AssetObligationRepository
	ledgerEventRepo repository.LedgerEventRepository
	ledgerStateRepo repository.LedgerStateRepository
	transferRepo    repository.VaultTransferRepository

	gate   *ledgerGate
	quest  *questDomain
	reward *rewardDomain
	asset  *assetDomain
	admin  *adminDomain
	faucet *vaultDomain
}

func newSuite(t *testing.T) *suite {
	ctx := testutil.MockContext()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	s := &suite{
		ctx:             ctx,
		now:             time.Unix(1_700_000_000, 0),
		publisher:       &testutil.MockPublisher{},
		questRepo:       repository.NewQuestRepository(),
		claimRecordRepo: repository.NewClaimRecordRepository(),
		obligationRepo:  repository.NewAssetObligationRepository(),
		ledgerEventRepo: repository.NewLedgerEventRepository(),
		ledgerStateRepo: repository.NewLedgerStateRepository(),
		transferRepo:    repository.NewVaultTransferRepository(),
	}

	s.vault = &hookVault{
		bookVault: vault.NewBookVault(testutil.EscrowAccount, repository.NewVaultBookRepository()),
	}

	supportedAssetRepo := repository.NewSupportedAssetRepository()
	s.gate = NewLedgerGate(s.ledgerStateRepo, s.ledgerEventRepo, s.transferRepo,
		guard.NewLocalGuard(time.Second), s.publisher, node, s.vault)
	s.gate.now = func() time.Time { return s.now }

	s.quest = NewQuestDomain(s.gate, s.questRepo, supportedAssetRepo, s.obligationRepo, s.ledgerEventRepo, s.vault)
	s.reward = NewRewardDomain(s.gate, s.questRepo, s.claimRecordRepo, s.obligationRepo, s.vault)
	s.asset = NewAssetDomain(s.gate, supportedAssetRepo, s.obligationRepo, s.vault)
	s.admin = NewAdminDomain(s.gate, s.ledgerStateRepo, supportedAssetRepo, s.vault)
	s.faucet = NewVaultDomain(s.gate, s.vault)

	require.NoError(t, InitLedger(ctx, s.ledgerStateRepo, testutil.Admin))
	return s
}

func (s *suite) as(principal string) context.Context {
	return testutil.MockContextWithUserID(s.ctx, principal)
}

func (s *suite) addAsset(t *testing.T, asset string) {
	_, err := s.asset.AddSupported(s.as(testutil.Admin), &model.AddSupportedAssetRequest{Asset: asset})
	require.NoError(t, err)
}

// fund mints amount of asset to owner and approves the escrow account for it.
func (s *suite) fund(t *testing.T, asset, owner string, amount int64) {
	require.NoError(t, s.vault.Mint(s.ctx, asset, owner, big.NewInt(amount)))
	require.NoError(t, s.vault.Approve(s.ctx, asset, owner, big.NewInt(amount)))
}

// createQuest funds the creator and creates an active quest ending in one day.
func (s *suite) createQuest(t *testing.T, id, creator, asset string, amount, maxWinners int64) {
	s.fund(t, asset, creator, amount)
	_, err := s.quest.Create(s.as(creator), &model.CreateQuestRequest{
		ID:         id,
		Asset:      asset,
		Amount:     amt(amount),
		Deadline:   s.deadline(),
		MaxWinners: maxWinners,
	})
	require.NoError(t, err)
}

func (s *suite) deadline() int64 {
	return s.now.Add(24 * time.Hour).Unix()
}

func (s *suite) getQuest(t *testing.T, id string) model.Quest {
	resp, err := s.quest.Get(s.ctx, &model.GetQuestRequest{ID: id})
	require.NoError(t, err)
	return resp.Quest
}

func (s *suite) balance(t *testing.T, asset, account string) string {
	b, err := s.vault.BalanceOf(s.ctx, asset, account)
	require.NoError(t, err)
	return b.String()
}

func (s *suite) owed(t *testing.T, asset string) string {
	owed, err := s.obligationRepo.Get(s.ctx, asset)
	require.NoError(t, err)
	return owed.String()
}

// requireObligationConsistent compares the incremental obligation with a
// full scan of the active quests.
func (s *suite) requireObligationConsistent(t *testing.T) {
	t.Helper()

	scanned, err := migration.ScanObligations(s.ctx)
	require.NoError(t, err)

	stored, err := s.obligationRepo.GetAll(s.ctx)
	require.NoError(t, err)

	for _, o := range stored {
		want := big.NewInt(0)
		if v, ok := scanned[o.Asset]; ok {
			want = v
		}
		require.Equal(t, want.String(), o.Owed.String(), "obligation of %s", o.Asset)
	}

	for asset, v := range scanned {
		require.Equal(t, v.String(), s.owed(t, asset), "obligation of %s", asset)
	}
}

func amt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func requireCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, errorx.CodeOf(err), "error: %v", err)
}
