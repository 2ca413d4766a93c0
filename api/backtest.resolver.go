package api

import (
	"context"
	"time"

	"stockbacktest/internal"
	"stockbacktest/internal/app"
	"stockbacktest/internal/calculator"
	"stockbacktest/internal/cost"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/logger"
	"stockbacktest/internal/strategy"

	"github.com/gin-gonic/gin"
)

type backtestRequest struct {
	Strategy struct {
		Name        string `json:"name"`
		QualifyExpr string `json:"qualifyExpr"`
		ScoreExpr   string `json:"scoreExpr"`
	} `json:"strategy"`

	// optional overrides of the server config
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	RebalanceFreq  string   `json:"rebalanceFreq"`
	InitialCapital *float64 `json:"initialCapital"`
	MaxPositions   *int     `json:"maxPositions"`
}

type backtestSnapshot struct {
	Date         string  `json:"date"`
	Cash         float64 `json:"cash"`
	TotalValue   float64 `json:"totalValue"`
	NumPositions int     `json:"numPositions"`
}

type backtestTrade struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Shares int64   `json:"shares"`
	Price  float64 `json:"price"`
	Fee    float64 `json:"fee"`
}

type backtestResponse struct {
	RunID         string                    `json:"runId"`
	Status        string                    `json:"status"`
	FailureReason string                    `json:"failureReason,omitempty"`
	Report        *domain.PerformanceReport `json:"report"`
	Snapshots     []backtestSnapshot        `json:"snapshots"`
	Trades        []backtestTrade           `json:"trades"`
}

func (m ApiHandler) backtest(c *gin.Context) {
	var requestBody backtestRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		m.returnErrorJsonCode(err, c, 400)
		return
	}

	cfg := m.Config
	applyOverrides(&cfg, requestBody)
	if err := cfg.Validate(); err != nil {
		m.returnErrorJsonCode(err, c, 400)
		return
	}

	strat, err := resolveStrategy(requestBody)
	if err != nil {
		m.returnErrorJsonCode(err, c, 400)
		return
	}

	ctx := context.WithValue(context.Background(), logger.ContextKey, m.Logger)

	costModel := cost.NewModel(cfg.CommissionRate, cfg.StampTax, cfg.MinCommission)
	sim := app.NewSimulator(m.Feed, m.Feed, strat, costModel, cfg)
	result, err := sim.Run(ctx)
	if err != nil {
		m.returnErrorJson(err, c)
		return
	}

	report := calculator.Analyze(calculator.AnalyzeInput{
		StrategyName: result.StrategyName,
		Status:       string(result.Status),
		Snapshots:    result.Snapshots,
		Trades:       result.Trades,
	}, cfg)

	c.JSON(200, toBacktestResponse(result, report))
}

func applyOverrides(cfg *internal.Config, req backtestRequest) {
	if req.StartDate != "" {
		cfg.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		cfg.EndDate = req.EndDate
	}
	if req.RebalanceFreq != "" {
		cfg.RebalanceFreq = req.RebalanceFreq
	}
	if req.InitialCapital != nil {
		cfg.InitialCapital = *req.InitialCapital
	}
	if req.MaxPositions != nil {
		cfg.MaxPositions = *req.MaxPositions
	}
}

func resolveStrategy(req backtestRequest) (strategy.Strategy, error) {
	if req.Strategy.QualifyExpr != "" || req.Strategy.ScoreExpr != "" {
		name := req.Strategy.Name
		if name == "" {
			name = "custom"
		}
		return strategy.NewExpression(name, req.Strategy.QualifyExpr, req.Strategy.ScoreExpr)
	}
	return strategy.Builtin(req.Strategy.Name)
}

func toBacktestResponse(result *app.Result, report *domain.PerformanceReport) backtestResponse {
	response := backtestResponse{
		RunID:         result.RunID.String(),
		Status:        string(result.Status),
		FailureReason: result.FailureReason,
		Report:        report,
		Snapshots:     []backtestSnapshot{},
		Trades:        []backtestTrade{},
	}
	for _, snapshot := range result.Snapshots {
		response.Snapshots = append(response.Snapshots, backtestSnapshot{
			Date:         snapshot.Date.Format(time.DateOnly),
			Cash:         snapshot.Cash.InexactFloat64(),
			TotalValue:   snapshot.TotalValue.InexactFloat64(),
			NumPositions: len(snapshot.Positions),
		})
	}
	for _, trade := range result.Trades {
		response.Trades = append(response.Trades, backtestTrade{
			Date:   trade.Date.Format(time.DateOnly),
			Symbol: trade.Symbol,
			Side:   string(trade.Side),
			Shares: trade.Shares,
			Price:  trade.Price.InexactFloat64(),
			Fee:    trade.Fee.InexactFloat64(),
		})
	}
	return response
}
