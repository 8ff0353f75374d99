package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/quantfold/coinbuy/internal/api"
	"github.com/quantfold/coinbuy/internal/credentials"
	"github.com/quantfold/coinbuy/internal/events"
	"github.com/quantfold/coinbuy/internal/exchange"
	"github.com/quantfold/coinbuy/internal/execution"
	"github.com/quantfold/coinbuy/internal/rate"
	"github.com/quantfold/coinbuy/internal/store"
	"github.com/quantfold/coinbuy/internal/tracking"
	"github.com/quantfold/coinbuy/pkg/config"
	"github.com/quantfold/coinbuy/pkg/logger"
	"github.com/quantfold/coinbuy/pkg/money"
	"github.com/quantfold/coinbuy/pkg/utils"
)

const usageText = `usage: coinbuy <amount>
       coinbuy --init

Buys the configured asset with <amount> of the funding currency via a
market order and waits for settlement. --init writes a credentials
template and exits without touching the network.`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, usageText)
		return execution.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()

	if args[0] == "--init" {
		return runInit(cfg)
	}

	funds, err := money.Parse(args[0], cfg.FundingCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coinbuy: %v\n\n%s\n", err, usageText)
		return execution.ExitUsage
	}

	reporter := execution.NewReporter()

	creds, err := loadCredentials(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, reporter.Failure(err))
		return reporter.ExitCode(err)
	}
	logg.Infow("credentials loaded",
		"source", cfg.CredentialsSource,
		"key", utils.MaskSecret(creds.Key))

	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
	venue := exchange.NewClient(logger.L(), cfg.APIBaseURL, creds, rateMgr)

	// --- Optional collaborators: NATS events, Redis snapshots, status server ---

	var pub *events.Publisher
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Warnw("nats.connect_failed, events disabled", "error", err)
		} else {
			defer func() {
				if err := nc.Drain(); err != nil {
					logg.Warnw("nats.drain_failed", "error", err)
				}
			}()
			pub = events.New(nc, logger.L(), cfg.ServiceName)
		}
	}

	var snapshots store.Store
	if cfg.RedisAddr != "" {
		st, err := store.NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, logger.L())
		if err != nil {
			logg.Warnw("store.init_failed, snapshots disabled", "error", err)
		} else {
			defer func() {
				if err := st.Close(); err != nil {
					logg.Warnw("store.close_failed", "error", err)
				}
			}()
			snapshots = st
		}
	}

	state := tracking.NewState()

	if cfg.StatusPort > 0 {
		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		api.RegisterRoutes(app, natsConn(pub), snapshots, state)
		go func() {
			logg.Infof("status server listening on :%d", cfg.StatusPort)
			if err := app.Listen(fmt.Sprintf(":%d", cfg.StatusPort)); err != nil {
				logg.Warnw("fiber.listen_failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				logg.Warnw("fiber.shutdown_failed", "error", err)
			}
		}()
	}

	// Last trade price preview from the public feed. Informational only.
	if cfg.FeedURL != "" {
		productID := cfg.TargetAsset + "-" + cfg.FundingCurrency
		previewCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		price, err := exchange.FetchTicker(previewCtx, logger.L(), cfg.FeedURL, productID)
		cancel()
		if err != nil {
			logg.Debugw("ticker preview unavailable", "error", err)
		} else {
			logg.Infow("last trade price", "product_id", productID, "price", price.String())
		}
	}

	runCtx := ctx
	if cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.MaxWait)
		defer cancel()
	}

	orch := execution.New(logger.L(), venue, execution.Options{
		FundingCurrency: cfg.FundingCurrency,
		TargetAsset:     cfg.TargetAsset,
		PollInterval:    cfg.PollInterval,
		StrictPairMatch: cfg.StrictPairMatch,
	}, pub, snapshots, state)

	res, err := orch.Execute(runCtx, funds)
	if err != nil {
		fmt.Fprintln(os.Stderr, reporter.Failure(err))
		return reporter.ExitCode(err)
	}

	fmt.Println(reporter.Success(res))
	return execution.ExitOK
}

// runInit scaffolds the credentials file. Never touches the network.
func runInit(cfg *config.Config) int {
	src := credentials.NewFileSource(cfg.CredentialsPath)
	created, err := src.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "coinbuy: %v\n", err)
		return execution.ExitFailure
	}
	if !created {
		fmt.Printf("coinbuy: credentials file already exists at %s, leaving it alone\n", cfg.CredentialsPath)
		return execution.ExitOK
	}
	fmt.Printf("coinbuy: wrote a credentials template to %s, fill it in before trading\n", cfg.CredentialsPath)
	return execution.ExitOK
}

func loadCredentials(ctx context.Context, cfg *config.Config) (*credentials.Credentials, error) {
	var src credentials.Source
	switch cfg.CredentialsSource {
	case "aws":
		awsSrc, err := credentials.NewAWSSource(ctx, cfg.AWSRegion, cfg.CredentialsSecretName)
		if err != nil {
			return nil, fmt.Errorf("init aws credentials source: %w", err)
		}
		src = awsSrc
	default:
		src = credentials.NewFileSource(cfg.CredentialsPath)
	}
	return src.Load(ctx)
}

// natsConn unwraps the publisher's connection for the health endpoint.
func natsConn(pub *events.Publisher) *nats.Conn {
	if pub == nil {
		return nil
	}
	return pub.Conn()
}
