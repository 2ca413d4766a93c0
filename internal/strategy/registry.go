package strategy

import (
	"fmt"
)

// Builtin returns one of the named built-in strategies with default
// parameters. User-defined strategies go through NewExpression.
func Builtin(name string) (Strategy, error) {
	switch name {
	case "momentum":
		return NewMomentum(DefaultMomentumConfig()), nil
	case "value":
		return NewValue(DefaultValueConfig()), nil
	case "growth":
		return NewGrowth(DefaultGrowthConfig()), nil
	}
	return nil, fmt.Errorf("unknown strategy %q (want momentum, value or growth)", name)
}

// Builtins returns all built-in strategies, for comparison runs.
func Builtins() []Strategy {
	return []Strategy{
		NewMomentum(DefaultMomentumConfig()),
		NewValue(DefaultValueConfig()),
		NewGrowth(DefaultGrowthConfig()),
	}
}
