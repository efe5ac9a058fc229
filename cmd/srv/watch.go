package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/questx-lab/quest-escrow/internal/model"
	"github.com/questx-lab/quest-escrow/pkg/kafka"
	"github.com/questx-lab/quest-escrow/pkg/pubsub"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startWatch(cctx *cli.Context) error {
	cfg := xcontext.Configs(s.ctx)

	subscriber, err := kafka.NewSubscriber(
		cctx.String("group"),
		strings.Split(cfg.Kafka.Addr, ","),
		[]string{cfg.Kafka.EventTopic},
		s.logLedgerEvent,
	)
	if err != nil {
		return err
	}
	defer subscriber.Stop(s.ctx)

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := subscriber.Subscribe(ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Watching ledger events on %s", cfg.Kafka.EventTopic)
	<-ctx.Done()
	return nil
}

func (s *srv) logLedgerEvent(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.LedgerEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(s.ctx).Errorf("Cannot decode ledger event %s: %v", string(pack.Key), err)
		return
	}

	xcontext.Logger(s.ctx).Infof("[%s] %s quest=%s principal=%s asset=%s amount=%s data=%v",
		t.Format(time.RFC3339), event.Type, event.QuestID, event.Principal, event.Asset, event.Amount, event.Data)
}
