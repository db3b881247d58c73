package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sajidkarim/messmate-backend/internal/audit"
	"github.com/sajidkarim/messmate-backend/internal/ledger"
	"github.com/sajidkarim/messmate-backend/pkg/config"
	"github.com/sajidkarim/messmate-backend/pkg/db"
	"github.com/sajidkarim/messmate-backend/pkg/enums"
	"github.com/sajidkarim/messmate-backend/pkg/logger"
	"github.com/sajidkarim/messmate-backend/pkg/metrics"
	"github.com/sajidkarim/messmate-backend/pkg/migrate"
	"github.com/sajidkarim/messmate-backend/pkg/types"
)

// reconcile walks every (user, balance type) pair, compares the cached
// balance against the transaction sum, and reports drift. Balances are only
// rewritten when -write is set; drift left uncorrected exits non-zero.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "reconcile"})

	_ = godotenv.Load()

	write := flag.Bool("write", false, "correct drifted balances instead of only reporting")
	actorID := flag.String("actor", "", "operator user id, required with -write")
	user := flag.String("user", "", "restrict the run to a single user id")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "reconcile",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(context.Background(), map[string]any{
		"env":   cfg.App.Env,
		"write": *write,
	})

	actor := types.Actor{Role: enums.RoleSuperadmin}
	if *actorID != "" {
		actor.UserID, err = uuid.Parse(*actorID)
		requireResource(ctx, logg, "actor id", err)
	} else if *write {
		fmt.Fprintln(os.Stderr, "missing -actor for -write")
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	auditSvc, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	requireResource(ctx, logg, "audit service", err)

	ledgerSvc, err := ledger.NewService(
		ledger.NewRepository(dbClient.DB()),
		dbClient,
		auditSvc,
		metrics.NewLedgerMetrics(prometheus.DefaultRegisterer),
	)
	requireResource(ctx, logg, "ledger service", err)

	userIDs, err := userSet(ctx, ledgerSvc, *user)
	requireResource(ctx, logg, "user list", err)

	logg.Info(ctx, "reconcile ready")

	var drifted, unresolved, failed int
	for _, userID := range userIDs {
		for _, balanceType := range enums.AllBalanceTypes() {
			report, err := ledgerSvc.Recalculate(ctx, actor, userID, balanceType, *write)
			if err != nil {
				failed++
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"user_id":      userID.String(),
					"balance_type": balanceType.String(),
					"error":        err.Error(),
				}), "reconcile failed")
				continue
			}
			if report.Drift.IsZero() {
				continue
			}
			drifted++
			fields := logg.WithFields(ctx, map[string]any{
				"user_id":      userID.String(),
				"balance_type": balanceType.String(),
				"cached":       report.Cached.String(),
				"computed":     report.Computed.String(),
				"drift":        report.Drift.String(),
				"written":      report.Written,
			})
			if err := report.DriftError(); err != nil {
				unresolved++
				logg.Error(fields, "balance drift", err)
				continue
			}
			logg.Info(fields, "balance drift corrected")
		}
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"users":      len(userIDs),
		"drifted":    drifted,
		"unresolved": unresolved,
		"failed":     failed,
	}), "reconcile finished")
	if failed > 0 || unresolved > 0 {
		os.Exit(1)
	}
}

func userSet(ctx context.Context, ledgerSvc ledger.Service, user string) ([]uuid.UUID, error) {
	if user != "" {
		id, err := uuid.Parse(user)
		if err != nil {
			return nil, err
		}
		return []uuid.UUID{id}, nil
	}
	return ledgerSvc.UserIDs(ctx)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
