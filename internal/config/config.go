package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adtzlr/pacopy/internal/branch"
)

const (
	DefaultProblem = "fold"
	DefaultSize    = 50
)

type Config struct {
	Problem       string             `yaml:"problem"`
	Mode          string             `yaml:"mode"`
	Size          int                `yaml:"size"`
	MaxSteps      int                `yaml:"max_steps"`
	Theta         float64            `yaml:"theta"`
	ValidateState bool               `yaml:"validate_state"`
	Params        map[string]float64 `yaml:"params"`
	Step          StepConfig         `yaml:"step"`
	Newton        NewtonConfig       `yaml:"newton"`
	Lambda        LambdaConfig       `yaml:"lambda"`
	Folds         FoldConfig         `yaml:"folds"`
}

type StepConfig struct {
	Initial          float64 `yaml:"initial"`
	Min              float64 `yaml:"min"`
	Max              float64 `yaml:"max"`
	Grow             float64 `yaml:"grow"`
	Shrink           float64 `yaml:"shrink"`
	TargetIterations int     `yaml:"target_iterations"`
}

type NewtonConfig struct {
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

type LambdaConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type FoldConfig struct {
	Detect    bool    `yaml:"detect"`
	Refine    bool    `yaml:"refine"`
	Tolerance float64 `yaml:"tolerance"`
}

func DefaultConfig() *Config {
	b := branch.DefaultConfig()
	return &Config{
		Problem:       DefaultProblem,
		Mode:          string(b.Mode),
		Size:          DefaultSize,
		MaxSteps:      b.MaxSteps,
		Theta:         b.Theta,
		ValidateState: b.ValidateState,
		Step: StepConfig{
			Initial:          b.Step0,
			Min:              b.StepMin,
			Max:              b.StepMax,
			Grow:             b.GrowFactor,
			Shrink:           b.ShrinkFactor,
			TargetIterations: b.TargetIterations,
		},
		Newton: NewtonConfig{
			Tolerance:     b.Tolerance,
			MaxIterations: b.MaxIterations,
		},
		Lambda: LambdaConfig{Min: b.LambdaMin, Max: b.LambdaMax},
		Folds: FoldConfig{
			Detect:    b.DetectFolds,
			Refine:    b.RefineFolds,
			Tolerance: b.FoldTolerance,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Branch maps the file-level configuration onto the engine configuration.
func (c *Config) Branch() branch.Config {
	return branch.Config{
		Mode:             branch.Mode(c.Mode),
		MaxSteps:         c.MaxSteps,
		Step0:            c.Step.Initial,
		StepMin:          c.Step.Min,
		StepMax:          c.Step.Max,
		GrowFactor:       c.Step.Grow,
		ShrinkFactor:     c.Step.Shrink,
		TargetIterations: c.Step.TargetIterations,
		Tolerance:        c.Newton.Tolerance,
		MaxIterations:    c.Newton.MaxIterations,
		LambdaMin:        c.Lambda.Min,
		LambdaMax:        c.Lambda.Max,
		Theta:            c.Theta,
		DetectFolds:      c.Folds.Detect,
		RefineFolds:      c.Folds.Refine,
		FoldTolerance:    c.Folds.Tolerance,
		ValidateState:    c.ValidateState,
	}
}

// Clone returns an independent copy, params map included.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}
