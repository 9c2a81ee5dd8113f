package goevo

import (
	"encoding/json"
	"fmt"
	"os"
)

// EngineConfig is the JSON-serializable description of an Engine (spec §6's
// convenience config-file format; the engine itself never reads this type
// directly, Build translates it into the concrete collaborators Engine
// expects). Callables (FitnessFunc, RepairFunc) can never round-trip
// through JSON and must be supplied separately to Build.
type EngineConfig struct {
	Seed             int64  `json:"seed"`
	PopulationSize   int    `json:"population_size"`
	ChromosomeLength int    `json:"chromosome_length"`
	Objectives       int    `json:"objectives"`
	MaxGenerations   int    `json:"max_generations"`

	Encoding    string   `json:"encoding"` // "binary", "integer", "real", "permutation"
	IntegerBase int      `json:"integer_base,omitempty"`
	Bounds      []Bounds `json:"bounds,omitempty"`

	Algorithm string `json:"algorithm"` // "single-objective", "nsga2", "nsga3"

	Crossover string  `json:"crossover"`
	Pc        float64 `json:"pc"`
	Alpha     float64 `json:"alpha,omitempty"` // BLX-alpha spread
	Eta       float64 `json:"eta,omitempty"`   // SBX / polynomial mutation distribution index

	Mutation string  `json:"mutation"`
	Pm       float64 `json:"pm"`

	Workers int `json:"workers"`
}

// ConfigPreset names a predefined EngineConfig for a common problem shape,
// mirroring the teacher's named-preset pattern.
type ConfigPreset string

const (
	PresetSmallReal      ConfigPreset = "small_real"      // single-objective, SBX + polynomial mutation
	PresetBinaryOneMax   ConfigPreset = "binary_onemax"    // single-objective binary, bit-flip + uniform crossover
	PresetMultiObjective ConfigPreset = "multi_objective"  // NSGA-II, real-encoded, SBX + polynomial mutation
	PresetManyObjective  ConfigPreset = "many_objective"   // NSGA-III, real-encoded, SBX + polynomial mutation
)

// NewPresetConfig returns a ready-to-tune EngineConfig for preset. Callers
// still need to set ChromosomeLength and Bounds (for real encodings) before
// calling Build.
func NewPresetConfig(preset ConfigPreset) (*EngineConfig, error) {
	switch preset {
	case PresetSmallReal:
		return &EngineConfig{
			Seed: 1, PopulationSize: 50, Objectives: 1, MaxGenerations: 200,
			Encoding: "real", Algorithm: "single-objective",
			Crossover: "sbx", Pc: 0.9, Eta: 15,
			Mutation: "real-polynomial", Pm: 0.05, Workers: 1,
		}, nil
	case PresetBinaryOneMax:
		return &EngineConfig{
			Seed: 1, PopulationSize: 100, Objectives: 1, MaxGenerations: 200,
			Encoding: "binary", Algorithm: "single-objective",
			Crossover: "uniform", Pc: 0.9,
			Mutation: "bit-flip", Pm: 0.01, Workers: 1,
		}, nil
	case PresetMultiObjective:
		return &EngineConfig{
			Seed: 1, PopulationSize: 100, Objectives: 2, MaxGenerations: 250,
			Encoding: "real", Algorithm: "nsga2",
			Crossover: "sbx", Pc: 0.9, Eta: 20,
			Mutation: "real-polynomial", Pm: 0.05, Workers: 1,
		}, nil
	case PresetManyObjective:
		return &EngineConfig{
			Seed: 1, PopulationSize: 150, Objectives: 3, MaxGenerations: 300,
			Encoding: "real", Algorithm: "nsga3",
			Crossover: "sbx", Pc: 0.9, Eta: 20,
			Mutation: "real-polynomial", Pm: 0.05, Workers: 1,
		}, nil
	default:
		return nil, fmt.Errorf("goevo: unknown preset %q", preset)
	}
}

// LoadConfigFromFile reads and validates an EngineConfig from a JSON file.
func LoadConfigFromFile(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("goevo: read config file: %w", err)
	}
	cfg := &EngineConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("goevo: parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("goevo: invalid config: %w", err)
	}
	return cfg, nil
}

// SaveConfigToFile writes cfg as indented JSON to path.
func SaveConfigToFile(cfg *EngineConfig, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("goevo: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("goevo: write config file: %w", err)
	}
	return nil
}

// Validate checks cfg for internal consistency, eagerly, the way every
// other setter in this package reports misconfiguration (spec §7).
func (cfg *EngineConfig) Validate() error {
	if cfg.PopulationSize <= 0 {
		return newConfigError("population_size", "must be > 0")
	}
	if cfg.ChromosomeLength <= 0 {
		return newConfigError("chromosome_length", "must be > 0")
	}
	if cfg.Objectives <= 0 {
		return newConfigError("objectives", "must be > 0")
	}
	// An engine that can never run a generation is a config error, not a
	// silently-never-improving run; this resolves the "max_generations=0
	// underflow" question by rejecting it outright rather than letting
	// ceil(N/2) parent-pair construction run against an empty budget.
	if cfg.MaxGenerations <= 0 {
		return newConfigError("max_generations", "must be > 0")
	}
	switch cfg.Encoding {
	case "binary", "integer", "real", "permutation":
	default:
		return newConfigError("encoding", fmt.Sprintf("unknown encoding %q", cfg.Encoding))
	}
	if cfg.Encoding == "integer" && cfg.IntegerBase < 2 {
		return newConfigError("integer_base", "must be >= 2 for integer encoding")
	}
	if cfg.Encoding == "real" && len(cfg.Bounds) != cfg.ChromosomeLength {
		return newConfigError("bounds", "must have one entry per chromosome gene for real encoding")
	}
	switch cfg.Algorithm {
	case "single-objective", "nsga2", "nsga3":
	default:
		return newConfigError("algorithm", fmt.Sprintf("unknown algorithm %q", cfg.Algorithm))
	}
	if cfg.Pc < 0 || cfg.Pc > 1 {
		return newConfigError("pc", "must be in [0,1]")
	}
	if cfg.Pm < 0 || cfg.Pm > 1 {
		return newConfigError("pm", "must be in [0,1]")
	}
	return nil
}

// Build translates cfg into a ready-to-run Engine, wiring fitnessFn and
// the optional repairFn as the engine's external collaborators (spec §1's
// Non-goals: the fitness function and any problem-specific repair always
// come from outside this package).
func (cfg *EngineConfig) Build(fitnessFn FitnessFunc, repairFn RepairFunc) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	encoding, err := cfg.buildEncoding()
	if err != nil {
		return nil, err
	}

	rng := NewSource(cfg.Seed)
	algorithm, err := NewAlgorithm(cfg.Algorithm, cfg.Objectives, rng)
	if err != nil {
		return nil, err
	}

	crossover, err := cfg.buildCrossover(encoding)
	if err != nil {
		return nil, err
	}
	mutation, err := cfg.buildMutation(encoding)
	if err != nil {
		return nil, err
	}

	stopCond := MaxGenerations{Max: cfg.MaxGenerations}

	engine, err := NewEngine(encoding, algorithm, crossover, mutation, fitnessFn, stopCond, cfg.Seed, cfg.PopulationSize, cfg.ChromosomeLength, cfg.Objectives)
	if err != nil {
		return nil, err
	}
	engine.RepairFunc = repairFn
	engine.Workers = cfg.Workers
	engine.MaxGen = cfg.MaxGenerations
	return engine, nil
}

func (cfg *EngineConfig) buildEncoding() (Encoding, error) {
	switch cfg.Encoding {
	case "binary":
		return BinaryEncoding{}, nil
	case "integer":
		return NewIntegerEncoding(cfg.IntegerBase)
	case "real":
		return NewRealEncoding(cfg.Bounds)
	case "permutation":
		return PermutationEncoding{}, nil
	default:
		return nil, newConfigError("encoding", fmt.Sprintf("unknown encoding %q", cfg.Encoding))
	}
}

func (cfg *EngineConfig) buildCrossover(encoding Encoding) (Crossover, error) {
	real, isReal := encoding.(RealEncoding)
	switch cfg.Crossover {
	case "single-point":
		return SinglePointCrossover{Pc: cfg.Pc}, nil
	case "two-point":
		return TwoPointCrossover{Pc: cfg.Pc}, nil
	case "uniform":
		return UniformCrossover{Pc: cfg.Pc}, nil
	case "arithmetic":
		return ArithmeticCrossover{Pc: cfg.Pc}, nil
	case "blx-alpha":
		if !isReal {
			return nil, newConfigError("crossover", "blx-alpha requires a real encoding")
		}
		return BLXAlphaCrossover{Pc: cfg.Pc, Alpha: cfg.Alpha, Encoding: real}, nil
	case "sbx":
		if !isReal {
			return nil, newConfigError("crossover", "sbx requires a real encoding")
		}
		return SBXCrossover{Pc: cfg.Pc, Eta: cfg.Eta, Encoding: real}, nil
	case "wright":
		if !isReal {
			return nil, newConfigError("crossover", "wright requires a real encoding")
		}
		return WrightCrossover{Pc: cfg.Pc, Encoding: real}, nil
	case "order":
		return OrderCrossover{Pc: cfg.Pc}, nil
	case "pmx":
		return PMXCrossover{Pc: cfg.Pc}, nil
	case "cycle":
		return CycleCrossover{Pc: cfg.Pc}, nil
	case "erx":
		return EdgeRecombinationCrossover{Pc: cfg.Pc}, nil
	default:
		return nil, newConfigError("crossover", fmt.Sprintf("unknown crossover %q", cfg.Crossover))
	}
}

func (cfg *EngineConfig) buildMutation(encoding Encoding) (Mutation, error) {
	real, isReal := encoding.(RealEncoding)
	switch cfg.Mutation {
	case "bit-flip":
		return BitFlipMutation{Pm: cfg.Pm}, nil
	case "integer-swap":
		return IntegerSwapMutation{Pm: cfg.Pm}, nil
	case "integer-inversion":
		return IntegerInversionMutation{Pm: cfg.Pm}, nil
	case "integer-random-replace":
		integer, isInt := encoding.(IntegerEncoding)
		if !isInt {
			return nil, newConfigError("mutation", "integer-random-replace requires an integer encoding")
		}
		return IntegerRandomReplaceMutation{Pm: cfg.Pm, Base: integer.Base}, nil
	case "real-random":
		if !isReal {
			return nil, newConfigError("mutation", "real-random requires a real encoding")
		}
		return RealRandomMutation{Pm: cfg.Pm, Encoding: real}, nil
	case "real-boundary":
		if !isReal {
			return nil, newConfigError("mutation", "real-boundary requires a real encoding")
		}
		return RealBoundaryMutation{Pm: cfg.Pm, Encoding: real}, nil
	case "real-polynomial":
		if !isReal {
			return nil, newConfigError("mutation", "real-polynomial requires a real encoding")
		}
		return RealPolynomialMutation{Pm: cfg.Pm, Eta: cfg.Eta, Encoding: real}, nil
	case "real-gauss":
		if !isReal {
			return nil, newConfigError("mutation", "real-gauss requires a real encoding")
		}
		return RealGaussMutation{Pm: cfg.Pm, SigmaFraction: 0.1, Encoding: real}, nil
	case "real-levy":
		if !isReal {
			return nil, newConfigError("mutation", "real-levy requires a real encoding")
		}
		alpha := cfg.Eta
		if alpha <= 0 || alpha > 2 {
			alpha = 1.5
		}
		return RealLevyMutation{Pm: cfg.Pm, Alpha: alpha, Beta: 0.01, Encoding: real}, nil
	case "real-non-uniform":
		if !isReal {
			return nil, newConfigError("mutation", "real-non-uniform requires a real encoding")
		}
		return RealNonUniformMutation{Pm: cfg.Pm, B: cfg.Eta, Encoding: real, Generation: 0, MaxGen: cfg.MaxGenerations}, nil
	case "permutation-swap":
		return PermutationSwapMutation{Pm: cfg.Pm}, nil
	default:
		return nil, newConfigError("mutation", fmt.Sprintf("unknown mutation %q", cfg.Mutation))
	}
}
