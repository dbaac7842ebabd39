package config

import "math"

var Presets = map[string]map[string]*Config{
	"linear": {
		"unit": {
			Problem: "linear", Mode: "natural", MaxSteps: 100, Theta: 1.0, ValidateState: true,
			Params: map[string]float64{"a": 1, "b": 1},
			Step:   StepConfig{Initial: 0.1, Min: 1e-8, Max: 0.1, Grow: 1.0, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: math.Inf(-1), Max: 1.0},
		},
		"steep": {
			Problem: "linear", Mode: "natural", MaxSteps: 200, Theta: 1.0, ValidateState: true,
			Params: map[string]float64{"a": 1, "b": 3},
			Step:   StepConfig{Initial: 0.05, Min: 1e-8, Max: 0.2, Grow: 1.5, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: math.Inf(-1), Max: 2.0},
		},
	},
	"fold": {
		"basic": {
			Problem: "fold", Mode: "arclength", MaxSteps: 500, Theta: 1.0, ValidateState: true,
			Params: map[string]float64{"curvature": 1},
			Step:   StepConfig{Initial: 0.05, Min: 1e-8, Max: 0.1, Grow: 1.5, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: -1.0, Max: math.Inf(1)},
			Folds:  FoldConfig{Detect: true, Tolerance: 1e-6},
		},
		"refined": {
			Problem: "fold", Mode: "arclength", MaxSteps: 500, Theta: 1.0, ValidateState: true,
			Params: map[string]float64{"curvature": 1},
			Step:   StepConfig{Initial: 0.05, Min: 1e-8, Max: 0.1, Grow: 1.5, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: -1.0, Max: math.Inf(1)},
			Folds:  FoldConfig{Detect: true, Refine: true, Tolerance: 1e-8},
		},
		"natural": {
			Problem: "fold", Mode: "natural", MaxSteps: 500, Theta: 1.0, ValidateState: true,
			Params: map[string]float64{"curvature": 1},
			Step:   StepConfig{Initial: 0.1, Min: 1e-8, Max: 0.5, Grow: 1.5, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: math.Inf(-1), Max: math.Inf(1)},
		},
	},
	"cubic": {
		"hysteresis": {
			Problem: "cubic", Mode: "arclength", MaxSteps: 400, Theta: 1.0, ValidateState: true,
			Params: map[string]float64{"stiffness": 1},
			Step:   StepConfig{Initial: -0.1, Min: 1e-8, Max: 0.2, Grow: 1.5, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: -2.0, Max: 8.0},
			Folds:  FoldConfig{Detect: true, Refine: true, Tolerance: 1e-8},
		},
		"gentle": {
			Problem: "cubic", Mode: "arclength", MaxSteps: 800, Theta: 1.0, ValidateState: true,
			Params: map[string]float64{"stiffness": 1},
			Step:   StepConfig{Initial: -0.05, Min: 1e-8, Max: 0.05, Grow: 1.2, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-12, MaxIterations: 12},
			Lambda: LambdaConfig{Min: -2.0, Max: 8.0},
			Folds:  FoldConfig{Detect: true, Refine: true, Tolerance: 1e-10},
		},
	},
	"bratu": {
		"dome": {
			Problem: "bratu", Mode: "arclength", Size: 50, MaxSteps: 80, Theta: 1.0, ValidateState: true,
			Step:   StepConfig{Initial: 0.1, Min: 1e-8, Max: 0.3, Grow: 1.5, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: 0.0, Max: math.Inf(1)},
			Folds:  FoldConfig{Detect: true, Refine: true, Tolerance: 1e-6},
		},
		"fine": {
			Problem: "bratu", Mode: "arclength", Size: 200, MaxSteps: 120, Theta: 1.0, ValidateState: true,
			Step:   StepConfig{Initial: 0.1, Min: 1e-8, Max: 0.3, Grow: 1.5, Shrink: 0.5, TargetIterations: 3},
			Newton: NewtonConfig{Tolerance: 1e-10, MaxIterations: 10},
			Lambda: LambdaConfig{Min: 0.0, Max: math.Inf(1)},
			Folds:  FoldConfig{Detect: true, Refine: true, Tolerance: 1e-6},
		},
	},
}

// GetPreset returns a copy of the named preset, nil if unknown.
func GetPreset(problem, preset string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	return names
}
