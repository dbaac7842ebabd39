package experiment

import (
	"fmt"

	"github.com/adtzlr/pacopy/internal/branch"
	"github.com/adtzlr/pacopy/internal/metrics"
	"github.com/adtzlr/pacopy/internal/problems"
)

const defaultSize = 50

type Registry struct {
	problems map[string]func(size int) branch.Problem
}

func NewRegistry() *Registry {
	r := &Registry{
		problems: make(map[string]func(int) branch.Problem),
	}

	r.problems["linear"] = func(int) branch.Problem { return problems.NewLinear() }
	r.problems["fold"] = func(int) branch.Problem { return problems.NewFold() }
	r.problems["cubic"] = func(int) branch.Problem { return problems.NewCubic() }
	r.problems["bratu"] = func(size int) branch.Problem {
		if size <= 0 {
			size = defaultSize
		}
		return problems.NewBratu(size)
	}

	return r
}

func (r *Registry) GetProblem(name string, size int) (branch.Problem, error) {
	fn, ok := r.problems[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem: %s", name)
	}
	return fn(size), nil
}

func (r *Registry) ListProblems() []string {
	names := make([]string, 0, len(r.problems))
	for name := range r.problems {
		names = append(names, name)
	}
	return names
}

func (r *Registry) DefaultMetrics() []branch.Metric {
	return []branch.Metric{
		metrics.NewIterations(),
		metrics.NewArcLength(),
		metrics.NewStepSpread(),
		metrics.NewLambdaSpan(),
		metrics.NewAmplitude(),
	}
}
