package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "pocketcredit-backend/internal/adapter/http"
	"pocketcredit-backend/internal/adapter/middleware"
	mysqlrepo "pocketcredit-backend/internal/adapter/repository/mysql"
	verificationadp "pocketcredit-backend/internal/adapter/verification"
	"pocketcredit-backend/internal/config"
	"pocketcredit-backend/internal/domain/eligibility"
	"pocketcredit-backend/internal/infrastructure/cache"
	"pocketcredit-backend/internal/infrastructure/db"
	"pocketcredit-backend/internal/infrastructure/logger"
	"pocketcredit-backend/internal/infrastructure/metrics"
	"pocketcredit-backend/internal/usecase/applicant"
	"pocketcredit-backend/internal/usecase/dashboard"
	"pocketcredit-backend/internal/usecase/loan"
	"pocketcredit-backend/internal/usecase/verification"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, "pocketcredit-backend")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
	zl.Info("server exited")
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	gdb, err := db.OpenGorm(cfg.MySQLDSN(), zl)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb, mysqlrepo.Models()...); err != nil {
		return err
	}

	rdb, err := cache.OpenRedis(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	tiers, err := config.LoadTiers(cfg.TiersFile)
	if err != nil {
		return err
	}
	card, err := eligibility.NewRateCard(tiers)
	if err != nil {
		return err
	}
	if _, ok := card.Lookup(cfg.DefaultTier); !ok {
		return errors.New("DEFAULT_TIER " + cfg.DefaultTier + " is not on the rate card")
	}
	eval := eligibility.NewEvaluator(card, eligibility.Policy{
		MinMonthlyIncome: cfg.MinMonthlyIncome,
		FOIRLimit:        cfg.FOIRLimit,
		Fees:             cfg.Fees,
	})

	m := metrics.New()
	tx := mysqlrepo.NewGormUoW(gdb)
	provider := verificationadp.NewCachedProvider(
		verificationadp.NewMockProvider(cfg.VerificationLatency), rdb, cfg.CreditCacheTTL, zl)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestLogger(zl))

	httpadp.RegisterRoutes(e, httpadp.Deps{
		Loans: loan.NewUsecase(tx, eval, cache.NewLocker(rdb, "lock:", cfg.UserLockTTL), m, zl, loan.Options{
			DefaultTier:          cfg.DefaultTier,
			PreclosureChargeRate: cfg.PreclosureChargeRate,
			PreclosureMinPaid:    cfg.PreclosureMinPaid,
			ActivationGraceDays:  cfg.ActivationGraceDays,
		}),
		Applicants:     applicant.NewUsecase(tx, card, cfg.DefaultTier, zl),
		Dashboard:      dashboard.NewUsecase(tx, cfg.UpcomingEMIWindow),
		Verification:   verification.NewUsecase(tx, provider, cfg.VerificationTimeout, cfg.DefaultTier, zl),
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Metrics:        m.Handler(),
		Log:            zl,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr), zap.Int("tiers", len(tiers)))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
