package main

import (
	"net/http"

	"github.com/questx-lab/quest-escrow/internal/middleware"
	"github.com/questx-lab/quest-escrow/pkg/prometheus"
	"github.com/questx-lab/quest-escrow/pkg/router"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRepos()
	s.loadPublisher()
	s.loadGuard()
	if err := s.loadVault(); err != nil {
		return err
	}
	if err := s.loadDomains(); err != nil {
		return err
	}
	s.loadRouter()

	go func() {
		xcontext.Logger(s.ctx).Infof("Starting prometheus on port: %s", cfg.PrometheusServer.Port)
		httpSrv := &http.Server{
			Addr:    cfg.PrometheusServer.Address(),
			Handler: prometheus.NewHandler(),
		}
		if err := httpSrv.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.router.Handler(cfg.ApiServer.AllowedOrigins),
	}
	xcontext.Logger(s.ctx).Infof("Starting server on port: %s", cfg.ApiServer.Port)
	if err := httpSrv.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger(cfg.Env))
	s.router.AddCloser(middleware.Prometheus())

	// Wallet login and public reads.
	publicRouter := s.router.Branch()
	publicRouter.Before(middleware.NewAuthVerifier().WithAccessToken().WithOptional().Middleware())
	{
		router.GET(publicRouter, "/walletLogin", s.authDomain.WalletLogin)
		router.GET(publicRouter, "/walletVerify", s.authDomain.WalletVerify)

		router.GET(publicRouter, "/getQuest", s.questDomain.Get)
		router.GET(publicRouter, "/getAllQuestIDs", s.questDomain.GetAllIDs)
		router.GET(publicRouter, "/getQuestEvents", s.questDomain.GetEvents)
		router.GET(publicRouter, "/getRewardAmountClaimed", s.rewardDomain.GetAmountClaimed)
		router.GET(publicRouter, "/hasClaimedReward", s.rewardDomain.HasClaimed)
		router.GET(publicRouter, "/isAssetSupported", s.assetDomain.IsSupported)
		router.GET(publicRouter, "/getObligation", s.assetDomain.GetObligation)
		router.GET(publicRouter, "/getLedgerState", s.adminDomain.GetLedgerState)
		router.GET(publicRouter, "/getBalance", s.vaultDomain.GetBalance)

		// Anyone can send native currency to the ledger.
		router.POST(publicRouter, "/depositNative", s.assetDomain.DepositNative)
	}

	authRouter := s.router.Branch()
	authRouter.Before(middleware.NewAuthVerifier().WithAccessToken().Middleware())
	{
		router.POST(authRouter, "/createQuest", s.questDomain.Create)
		router.POST(authRouter, "/claimRemainingReward", s.questDomain.ClaimRemainingReward)
		router.POST(authRouter, "/approve", s.vaultDomain.Approve)
	}

	adminRouter := authRouter.Branch()
	adminRouter.Before(middleware.NewOnlyAdmin(s.ledgerStateRepo).Middleware())
	{
		router.POST(adminRouter, "/cancelQuest", s.questDomain.Cancel)
		router.POST(adminRouter, "/updateQuestStatus", s.questDomain.UpdateStatus)

		router.POST(adminRouter, "/sendReward", s.rewardDomain.Send)
		router.POST(adminRouter, "/sendReferrerRewards", s.rewardDomain.SendReferrers)

		router.POST(adminRouter, "/addSupportedAsset", s.assetDomain.AddSupported)
		router.POST(adminRouter, "/removeSupportedAsset", s.assetDomain.RemoveSupported)
		router.POST(adminRouter, "/withdrawAllAssetBalance", s.assetDomain.WithdrawAllBalance)
		router.POST(adminRouter, "/withdrawAllNativeBalance", s.assetDomain.WithdrawAllNativeBalance)

		router.POST(adminRouter, "/pause", s.adminDomain.Pause)
		router.POST(adminRouter, "/unpause", s.adminDomain.Unpause)
		router.POST(adminRouter, "/transferAdmin", s.adminDomain.TransferAdmin)

		router.POST(adminRouter, "/mint", s.vaultDomain.Mint)
	}
}
