package strategy

import (
	"fmt"
	"math"

	"stockbacktest/internal/domain"

	"github.com/maja42/goval"
)

// Expression is a user-defined strategy: qualification and score are
// goval expressions over the indicator variables plus marketCap. Both
// expressions are pure; evaluation failures count as not-qualified /
// zero score rather than aborting a run.
type Expression struct {
	name        string
	qualifyExpr string
	scoreExpr   string
}

func NewExpression(name, qualifyExpr, scoreExpr string) (*Expression, error) {
	if qualifyExpr == "" || scoreExpr == "" {
		return nil, fmt.Errorf("expression strategy %q needs both a qualify and a score expression", name)
	}
	return &Expression{
		name:        name,
		qualifyExpr: qualifyExpr,
		scoreExpr:   scoreExpr,
	}, nil
}

func (s *Expression) Name() string { return s.name }

func (s *Expression) IsQualified(ind map[string]float64, info domain.StockInfo) bool {
	result, err := s.evaluate(s.qualifyExpr, ind, info)
	if err != nil {
		return false
	}
	qualified, ok := result.(bool)
	return ok && qualified
}

func (s *Expression) Score(ind map[string]float64, info domain.StockInfo) float64 {
	result, err := s.evaluate(s.scoreExpr, ind, info)
	if err != nil {
		return 0
	}
	switch v := result.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (s *Expression) evaluate(expr string, ind map[string]float64, info domain.StockInfo) (interface{}, error) {
	variables := map[string]interface{}{
		"marketCap": info.MarketCap,
	}
	for name, value := range ind {
		variables[name] = value
	}

	return goval.NewEvaluator().Evaluate(expr, variables, expressionFunctions())
}

func expressionFunctions() map[string]goval.ExpressionFunction {
	return map[string]goval.ExpressionFunction{
		"abs": func(args ...interface{}) (interface{}, error) {
			if len(args) < 1 {
				return 0, fmt.Errorf("abs needs 1 arg, got %d", len(args))
			}
			return math.Abs(toFloat(args[0])), nil
		},
		"min": func(args ...interface{}) (interface{}, error) {
			if len(args) < 2 {
				return 0, fmt.Errorf("min needs 2 args, got %d", len(args))
			}
			return math.Min(toFloat(args[0]), toFloat(args[1])), nil
		},
		"max": func(args ...interface{}) (interface{}, error) {
			if len(args) < 2 {
				return 0, fmt.Errorf("max needs 2 args, got %d", len(args))
			}
			return math.Max(toFloat(args[0]), toFloat(args[1])), nil
		},
	}
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return 0
}
