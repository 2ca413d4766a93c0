package api

import (
	"context"

	"stockbacktest/internal/app"
	"stockbacktest/internal/cost"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/logger"
	"stockbacktest/internal/strategy"

	"github.com/gin-gonic/gin"
)

type compareRequest struct {
	Strategies []string `json:"strategies"`

	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	RebalanceFreq string `json:"rebalanceFreq"`
}

type compareResponse struct {
	Reports []*domain.PerformanceReport `json:"reports"`
}

// compare backtests several built-in strategies over the same data and
// returns their reports ranked by rating.
func (m ApiHandler) compare(c *gin.Context) {
	var requestBody compareRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		m.returnErrorJsonCode(err, c, 400)
		return
	}

	cfg := m.Config
	if requestBody.StartDate != "" {
		cfg.StartDate = requestBody.StartDate
	}
	if requestBody.EndDate != "" {
		cfg.EndDate = requestBody.EndDate
	}
	if requestBody.RebalanceFreq != "" {
		cfg.RebalanceFreq = requestBody.RebalanceFreq
	}
	if err := cfg.Validate(); err != nil {
		m.returnErrorJsonCode(err, c, 400)
		return
	}

	strategies := []strategy.Strategy{}
	if len(requestBody.Strategies) == 0 {
		strategies = strategy.Builtins()
	} else {
		for _, name := range requestBody.Strategies {
			strat, err := strategy.Builtin(name)
			if err != nil {
				m.returnErrorJsonCode(err, c, 400)
				return
			}
			strategies = append(strategies, strat)
		}
	}

	ctx := context.WithValue(context.Background(), logger.ContextKey, m.Logger)
	costModel := cost.NewModel(cfg.CommissionRate, cfg.StampTax, cfg.MinCommission)

	entries, err := app.CompareStrategies(ctx, m.Feed, m.Feed, strategies, costModel, cfg)
	if err != nil {
		m.returnErrorJson(err, c)
		return
	}

	response := compareResponse{Reports: []*domain.PerformanceReport{}}
	for _, entry := range entries {
		response.Reports = append(response.Reports, entry.Report)
	}

	c.JSON(200, response)
}
