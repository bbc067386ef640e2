package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"payoutrecon/internal/cache"
	"payoutrecon/internal/config"
	"payoutrecon/internal/logger"
	"payoutrecon/internal/payout"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/report"
	"payoutrecon/internal/service"
	"payoutrecon/internal/shopify"
	"payoutrecon/internal/storage"
)

// cli carries the state shared by every subcommand.
type cli struct {
	cfg *config.AppConfig
	log *zap.Logger
	now func() time.Time

	output    string
	timezone  string
	payoutDir string
	verbose   bool

	fetcher reconcile.OrderFetcher
	opts    service.Options
}

// newRootCmd builds the command tree. A nil fetcher means orders come from
// the Shopify API through the file cache.
func newRootCmd(fetcher reconcile.OrderFetcher) *cobra.Command {
	c := &cli{cfg: config.Load(), fetcher: fetcher, now: time.Now}

	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile Shopify orders against Shopify Payments payouts",
		Long: `reconcile compares what the store sold and collected (orders pulled from the
Shopify Admin GraphQL API) with what Shopify Payments paid out (the payout
transactions CSV export).`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&c.output, "output", "o", ".", "directory the reports are written to")
	f.StringVar(&c.timezone, "timezone", "utc", "grouping timezone: utc, shop or an IANA name")
	f.StringVar(&c.payoutDir, "payout-dir", "payoutTransactionFiles", "directory searched for payout CSV files")
	f.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.dailyCmd(),
		c.rangeCmd(),
		c.mismatchesCmd(),
		c.refundsCmd(),
		c.filesCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	level := c.cfg.LogLevel
	if c.verbose {
		level = "debug"
	}
	c.log = logger.Component(logger.NewWithWriter(cmd.ErrOrStderr(), level, c.cfg.Location()), "cli")

	opts, err := service.OptionsFromConfig(c.cfg)
	if err != nil {
		return err
	}
	c.opts = opts
	return nil
}

func (c *cli) location() (*time.Location, error) {
	return reconcile.LoadTimezone(c.timezone, c.opts.ShopTimezone)
}

// orders returns the order source, building the Shopify client on first use.
func (c *cli) orders() (reconcile.OrderFetcher, error) {
	if c.fetcher != nil {
		return c.fetcher, nil
	}
	if c.cfg.Shopify.Store == "" || c.cfg.Shopify.Token == "" {
		return nil, errors.New("SHOPIFY_STORE and SHOPIFY_TOKEN must be set")
	}
	store, err := storage.NewLocal(c.cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	client := shopify.NewClient(shopify.OptionsFromConfig(c.cfg.Shopify), c.log)
	c.fetcher = cache.NewFetcher(client, cache.New(store, c.cfg.Cache.MaxAge(), c.cfg.Cache.Enabled, c.log))
	return c.fetcher, nil
}

func (c *cli) engine() (*reconcile.Engine, error) {
	f, err := c.orders()
	if err != nil {
		return nil, err
	}
	return reconcile.NewEngine(f, c.opts.Tolerance, c.opts.PayoutLookbackDays), nil
}

// loadPayouts reads path, or the newest CSV of the payout dir when path is empty.
func (c *cli) loadPayouts(path string) (*payout.Export, error) {
	if path == "" {
		newest, err := payout.Newest(c.payoutDir)
		if err != nil {
			return nil, err
		}
		path = newest.Path
	}
	exp, err := payout.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.log.Info("payouts_loaded",
		zap.String("file", path),
		zap.String("date_column", exp.DateColumn),
		zap.Int("rows", len(exp.Rows)),
	)
	return exp, nil
}

// writeArtifacts stores the rendered reports under the output directory.
func (c *cli) writeArtifacts(cmd *cobra.Command, arts []report.Artifact) error {
	if err := os.MkdirAll(c.output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, a := range arts {
		p := filepath.Join(c.output, a.Filename)
		if err := os.WriteFile(p, a.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", a.Filename, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
	return nil
}
