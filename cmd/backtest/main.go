package main

import (
	"context"
	"fmt"
	"os"

	"stockbacktest/api"
	"stockbacktest/internal"
	"stockbacktest/internal/app"
	"stockbacktest/internal/calculator"
	"stockbacktest/internal/cost"
	"stockbacktest/internal/feed"
	"stockbacktest/internal/logger"
	"stockbacktest/internal/strategy"

	"github.com/spf13/cobra"
)

var (
	configPath string
	barsPath   string
	metaPath   string
)

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest stock-selection strategies over historical daily data",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single strategy backtest and print its report",
	RunE:  runBacktest,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run all built-in strategies and rank them by rating",
	RunE:  runCompare,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve backtests over HTTP",
	RunE:  runServe,
}

var (
	strategyName string
	qualifyExpr  string
	scoreExpr    string
	showTrades   bool
	servePort    int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to JSON config file (defaults used when empty)")
	rootCmd.PersistentFlags().StringVar(&barsPath, "bars", "bars.csv", "path to daily bars CSV (symbol,date,open,high,low,close,volume)")
	rootCmd.PersistentFlags().StringVar(&metaPath, "meta", "", "path to stock metadata CSV (symbol,name,market_cap,listing_date)")

	runCmd.Flags().StringVar(&strategyName, "strategy", "momentum", "built-in strategy name, or label for a custom expression strategy")
	runCmd.Flags().StringVar(&qualifyExpr, "qualify", "", "custom qualification expression over indicator variables")
	runCmd.Flags().StringVar(&scoreExpr, "score", "", "custom score expression over indicator variables")
	runCmd.Flags().BoolVar(&showTrades, "trades", false, "print the trade ledger")

	serveCmd.Flags().IntVar(&servePort, "port", 3009, "listen port")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadInputs() (*internal.Config, *feed.MemoryFeed, error) {
	cfg := internal.DefaultConfig()
	if configPath != "" {
		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = *loaded
	}

	marketFeed, err := feed.LoadFromCSV(barsPath, metaPath)
	if err != nil {
		return nil, nil, err
	}

	return &cfg, marketFeed, nil
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, marketFeed, err := loadInputs()
	if err != nil {
		return err
	}

	var strat strategy.Strategy
	if qualifyExpr != "" || scoreExpr != "" {
		strat, err = strategy.NewExpression(strategyName, qualifyExpr, scoreExpr)
	} else {
		strat, err = strategy.Builtin(strategyName)
	}
	if err != nil {
		return err
	}

	log := logger.New()
	ctx := context.WithValue(context.Background(), logger.ContextKey, log)

	costModel := cost.NewModel(cfg.CommissionRate, cfg.StampTax, cfg.MinCommission)
	sim := app.NewSimulator(marketFeed, marketFeed, strat, costModel, *cfg)
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	report := calculator.Analyze(calculator.AnalyzeInput{
		StrategyName: result.StrategyName,
		Status:       string(result.Status),
		Snapshots:    result.Snapshots,
		Trades:       result.Trades,
	}, *cfg)

	internal.Pprint(report)
	if result.Status == app.Status_Failed {
		fmt.Printf("run failed: %s (partial results through %s)\n",
			result.FailureReason, result.FailedAt.Format("2006-01-02"))
	}
	if showTrades {
		internal.Pprint(result.Trades)
	}

	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, marketFeed, err := loadInputs()
	if err != nil {
		return err
	}

	log := logger.New()
	ctx := context.WithValue(context.Background(), logger.ContextKey, log)

	costModel := cost.NewModel(cfg.CommissionRate, cfg.StampTax, cfg.MinCommission)
	entries, err := app.CompareStrategies(ctx, marketFeed, marketFeed, strategy.Builtins(), costModel, *cfg)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		internal.Pprint(entry.Report)
	}

	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, marketFeed, err := loadInputs()
	if err != nil {
		return err
	}

	handler := api.ApiHandler{
		Feed:   marketFeed,
		Config: *cfg,
		Logger: logger.New(),
	}

	return handler.StartApi(servePort)
}
