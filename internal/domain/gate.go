package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/quest-escrow/internal/common"
	"github.com/questx-lab/quest-escrow/internal/entity"
	"github.com/questx-lab/quest-escrow/internal/domain/guard"
	"github.com/questx-lab/quest-escrow/internal/domain/vault"
	"github.com/questx-lab/quest-escrow/internal/repository"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/pubsub"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"gorm.io/gorm"
)

type gateOptions struct {
	// onlyAdmin rejects callers other than the administrator.
	onlyAdmin bool

	// ignorePause lets the operation run while the ledger is paused.
	ignorePause bool
}

type operationFunc func(ctx context.Context, state *entity.LedgerState, em *emitter) error

// ledgerGate runs every mutating operation through the pause gate, the
// access control gate and the reentrancy guard, then inside one database
// transaction. Events emitted by a successful operation are stored in the
// same transaction and published after commit.
//
// Vault calls are journaled. When the vault is detached, the transfers of an
// operation that rolls back are kept as orphans for reconciliation.
type ledgerGate struct {
	ledgerStateRepo   repository.LedgerStateRepository
	ledgerEventRepo   repository.LedgerEventRepository
	vaultTransferRepo repository.VaultTransferRepository
	guard             guard.Guard
	publisher         pubsub.Publisher
	node              *snowflake.Node
	vault             vault.Vault

	now func() time.Time
}

func NewLedgerGate(
	ledgerStateRepo repository.LedgerStateRepository,
	ledgerEventRepo repository.LedgerEventRepository,
	vaultTransferRepo repository.VaultTransferRepository,
	guard guard.Guard,
	publisher pubsub.Publisher,
	node *snowflake.Node,
	v vault.Vault,
) *ledgerGate {
	return &ledgerGate{
		ledgerStateRepo:   ledgerStateRepo,
		ledgerEventRepo:   ledgerEventRepo,
		vaultTransferRepo: vaultTransferRepo,
		guard:             guard,
		publisher:         publisher,
		node:              node,
		vault:             v,
		now:               time.Now,
	}
}

func (g *ledgerGate) check(ctx context.Context, opts gateOptions) (*entity.LedgerState, error) {
	state, err := g.ledgerStateRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Ledger is not initialized")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ledger state: %v", err)
		return nil, errorx.Unknown
	}

	if !opts.ignorePause && state.Paused {
		return nil, errorx.New(errorx.Paused, "Ledger is paused")
	}

	if opts.onlyAdmin {
		if err := common.VerifyCaller(state, xcontext.RequestUserID(ctx)); err != nil {
			return nil, errorx.New(errorx.Unauthorized, "Only administrator can do this action")
		}
	}

	return state, nil
}

func (g *ledgerGate) run(ctx context.Context, name string, opts gateOptions, fn operationFunc) (err error) {
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		common.PromCounters[common.LedgerOperationTotal].WithLabelValues(name, result).Inc()
	}()

	if _, err := g.check(ctx, opts); err != nil {
		return err
	}

	ctx, release, err := g.guard.Enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	ctx = xcontext.WithDBTransaction(ctx)
	j := &journal{}
	ctx = context.WithValue(ctx, journalKey{}, j)
	defer func() {
		xcontext.WithRollbackDBTransaction(ctx)
		if err != nil {
			g.storeOrphans(ctx, name, j)
		}
	}()

	// The state may have changed while waiting for the guard.
	state, err := g.check(ctx, opts)
	if err != nil {
		return err
	}

	em := &emitter{node: g.node, now: g.now}
	if err := fn(ctx, state, em); err != nil {
		return err
	}

	if err := g.ledgerEventRepo.Create(ctx, em.events...); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store ledger events: %v", err)
		return errorx.Unknown
	}

	if err := g.vaultTransferRepo.Create(ctx, j.entries(name, entity.VaultTransferSettled)...); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store vault transfers: %v", err)
		return errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit %s: %v", name, err)
		return errorx.Unknown
	}

	g.publish(ctx, em.events)
	return nil
}

// transfer runs fn, a single vault call described by t, and maps its failure
// to TransferFailed. Ledger errors raised from inside the vault, such as a
// rejected reentrant call, pass through.
func (g *ledgerGate) transfer(ctx context.Context, t *entity.VaultTransfer, fn func() error) error {
	err := fn()
	if err == nil {
		if j, ok := ctx.Value(journalKey{}).(*journal); ok {
			t.ID = g.node.Generate().Int64()
			t.CreatedAt = g.now()
			j.transfers = append(j.transfers, t)
		}

		return nil
	}

	common.PromCounters[common.VaultTransferFailure].WithLabelValues(string(t.Method)).Inc()

	var errx errorx.Error
	if errors.As(err, &errx) {
		return errx
	}

	xcontext.Logger(ctx).Errorf("Cannot call vault %s: %v", t.Method, err)
	return errorx.New(errorx.TransferFailed, "Cannot transfer asset")
}

// storeOrphans keeps the transfers a detached vault already executed for an
// operation that did not commit. They are written outside the rolled back
// transaction.
func (g *ledgerGate) storeOrphans(ctx context.Context, name string, j *journal) {
	if !vault.Detached(g.vault) || len(j.transfers) == 0 {
		return
	}

	orphans := j.entries(name, entity.VaultTransferOrphaned)
	for _, t := range orphans {
		xcontext.Logger(ctx).Errorf("Orphaned %s of %s %s to %s by %s",
			t.Method, t.Amount.Big().String(), t.Asset, t.Counterparty, name)
	}

	common.PromCounters[common.VaultTransferOrphaned].WithLabelValues(name).Add(float64(len(orphans)))
	if err := g.vaultTransferRepo.Create(xcontext.WithoutDBTransaction(ctx), orphans...); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store orphaned vault transfers: %v", err)
	}
}

func (g *ledgerGate) publish(ctx context.Context, events []*entity.LedgerEvent) {
	if g.publisher == nil {
		return
	}

	topic := xcontext.Configs(ctx).Kafka.EventTopic
	for _, event := range events {
		b, err := json.Marshal(convertLedgerEvent(event))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal ledger event: %v", err)
			continue
		}

		key := event.QuestID
		if key == "" {
			key = string(event.Type)
		}

		if err := g.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(key), Msg: b}); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot publish ledger event %d: %v", event.ID, err)
		}
	}
}

type emitter struct {
	node   *snowflake.Node
	now    func() time.Time
	events []*entity.LedgerEvent
}

func (e *emitter) emit(event *entity.LedgerEvent) {
	event.ID = e.node.Generate().Int64()
	event.CreatedAt = e.now()
	e.events = append(e.events, event)
}

type journalKey struct{}

// journal collects the vault calls that succeeded during one operation.
type journal struct {
	transfers []*entity.VaultTransfer
}

func (j *journal) entries(operation string, status entity.VaultTransferStatus) []*entity.VaultTransfer {
	result := make([]*entity.VaultTransfer, 0, len(j.transfers))
	for _, t := range j.transfers {
		entry := *t
		entry.Operation = operation
		entry.Status = status
		result = append(result, &entry)
	}

	return result
}

func eventID(id int64) string {
	return strconv.FormatInt(id, 10)
}
