package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	"github.com/tirs/dashboard/internal/repository"
	"github.com/tirs/dashboard/internal/service"
	"github.com/tirs/dashboard/pkg/config"
	"github.com/tirs/dashboard/pkg/database"
	"github.com/tirs/dashboard/pkg/jobs"
	"github.com/tirs/dashboard/pkg/logger"
)

const usage = `usage: datasync <command> [flags]

commands:
  sync-sales       pull sales rows from the upstream feed
  import-sales     load sales rows from a local csv file
  import-users     load user accounts from a local csv file
  health-check     print the data health report
  sweep-audit      purge audit entries past the retention horizon
  seed             populate demo accounts, products and sales
  start-scheduler  run the recurring sync, health and sweep jobs
`

type app struct {
	cfg     *config.Config
	logr    *zap.Logger
	sync    *service.SyncService
	imports *service.ImportService
	health  *service.HealthService
	audit   *service.AuditService
	seed    *service.SeedService
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	productRepo := repository.NewProductRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	metricsSvc := service.NewMetricsService()
	auditSvc := service.NewAuditService(auditRepo, logr, metricsSvc, service.AuditConfig{
		ListLimit:        cfg.Audit.ListLimit,
		RetentionHorizon: cfg.Audit.RetentionHorizon,
	})

	a := &app{
		cfg:  cfg,
		logr: logr,
		sync: service.NewSyncService(service.SyncConfig{
			SalesAPIURL: cfg.Sync.SalesAPIURL,
			HTTPTimeout: cfg.Sync.HTTPTimeout,
		}, saleRepo, auditSvc, metricsSvc, logr),
		imports: service.NewImportService(saleRepo, userRepo, auditSvc, metricsSvc, logr),
		health:  service.NewHealthService(userRepo, saleRepo, productRepo, logr),
		audit:   auditSvc,
		seed:    service.NewSeedService(userRepo, productRepo, saleRepo, logr),
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logr.Sugar().Fatalw("command failed", "command", os.Args[1], "error", err)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "sync-sales":
		return a.runSyncSales(ctx, args)
	case "import-sales":
		return a.runImportSales(ctx, args)
	case "import-users":
		return a.runImportUsers(ctx, args)
	case "health-check":
		return a.runHealthCheck(ctx)
	case "sweep-audit":
		return a.runSweepAudit(ctx)
	case "seed":
		a.seed.Run(ctx)
		return nil
	case "start-scheduler":
		return a.runScheduler(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) runSyncSales(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync-sales", flag.ContinueOnError)
	days := fs.Int("days", 1, "how many days of history to request")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := a.sync.SyncSales(ctx, *days)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) runImportSales(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-sales", flag.ContinueOnError)
	path := fs.String("csv", "", "path to the sales csv file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("-csv is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := a.imports.ImportSalesCSV(ctx, cliAuthContext(), file)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) runImportUsers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import-users", flag.ContinueOnError)
	path := fs.String("csv", "", "path to the users csv file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("-csv is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := a.imports.ImportUsersCSV(ctx, cliAuthContext(), file)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (a *app) runHealthCheck(ctx context.Context) error {
	report := a.health.Check(ctx)
	if err := printJSON(report); err != nil {
		return err
	}
	if report.Status == "error" {
		return fmt.Errorf("data health check failed")
	}
	return nil
}

func (a *app) runSweepAudit(ctx context.Context) error {
	purged, err := a.audit.Sweep(ctx)
	if err != nil {
		return err
	}
	a.logr.Sugar().Infow("audit sweep completed", "purged", purged)
	return nil
}

func (a *app) runScheduler(ctx context.Context) error {
	scheduler := jobs.NewScheduler(a.logr,
		jobs.Task{
			Name:     "sync-sales",
			Interval: a.cfg.Sync.SalesInterval,
			Fn: func(ctx context.Context) error {
				_, err := a.sync.SyncSales(ctx, 1)
				return err
			},
		},
		jobs.Task{
			Name:       "health-check",
			Interval:   a.cfg.Sync.HealthInterval,
			RunAtStart: true,
			Fn: func(ctx context.Context) error {
				report := a.health.Check(ctx)
				if report.Status == "error" {
					return fmt.Errorf("data health check failed")
				}
				return nil
			},
		},
		jobs.Task{
			Name:     "sweep-audit",
			Interval: a.cfg.Sync.SweepInterval,
			Fn: func(ctx context.Context) error {
				_, err := a.audit.Sweep(ctx)
				return err
			},
		},
	)

	scheduler.Start(ctx)
	defer scheduler.Stop()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	a.logr.Sugar().Infow("shutting down scheduler")
	return nil
}

// cliAuthContext is the synthetic principal stamped on audit entries written
// by operator-driven imports. Actor id 0 marks system actions.
func cliAuthContext() models.AuthContext {
	return models.AuthContext{UserID: 0, Username: "datasync", Role: models.RoleAdmin}
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
