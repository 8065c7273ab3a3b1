package producer

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// costEnv is the evaluation environment exposed to a cost expression: the
// interaction's static base cost, the producer's current queue length, and
// its accumulated empty-queue ticks.
type costEnv struct {
	Base       uint
	QueueLen   int
	EmptyTicks uint
}

// CostExpr is a compiled expr-lang program overriding a producer
// interaction's static cost with a congestion-aware formula, e.g.
// "Base + QueueLen * 2".
type CostExpr struct {
	program *vm.Program
	source  string
}

// CompileCostExpr compiles source against the costEnv environment. Field
// names visible to the expression are Base, QueueLen, and EmptyTicks.
func CompileCostExpr(source string) (*CostExpr, error) {
	program, err := expr.Compile(source, expr.Env(costEnv{}))
	if err != nil {
		return nil, err
	}
	return &CostExpr{program: program, source: source}, nil
}

// Eval runs the compiled expression and coerces its result to uint. Negative
// results clamp to zero; results are truncated, not rounded.
func (c *CostExpr) Eval(base uint, queueLen int, emptyTicks uint) (uint, error) {
	out, err := expr.Run(c.program, costEnv{Base: base, QueueLen: queueLen, EmptyTicks: emptyTicks})
	if err != nil {
		return 0, err
	}
	switch v := out.(type) {
	case int:
		if v < 0 {
			return 0, nil
		}
		return uint(v), nil
	case float64:
		if v < 0 {
			return 0, nil
		}
		return uint(v), nil
	case uint:
		return v, nil
	default:
		return base, nil
	}
}

func (c *CostExpr) Source() string { return c.source }
