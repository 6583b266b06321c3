package scoring

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iepathos/debtmap/pkg/model"
)

// PatternScale holds one pattern's exponential-scaling tunables.
type PatternScale struct {
	Exponent     float64 `yaml:"exponent"`
	MinThreshold float64 `yaml:"min_threshold"`
	MaxThreshold float64 `yaml:"max_threshold"`
}

// Config is the full set of configuration options §6 enumerates for the
// scoring engine, loaded as a unit so one YAML file can override any subset
// of it.
type Config struct {
	RoleCoverageWeights map[string]float64      `yaml:"role_coverage_weights"`
	RoleMultiplier      map[string]float64      `yaml:"role_multiplier"`
	ClampMin            float64                 `yaml:"clamp_min"`
	ClampMax            float64                 `yaml:"clamp_max"`
	EnableClamping      bool                    `yaml:"enable_clamping"`
	PatternScaling      map[string]PatternScale `yaml:"pattern_scaling"`

	GodObjectThresholds struct {
		MethodThreshold     int     `yaml:"method_threshold"`
		FieldThreshold      int     `yaml:"field_threshold"`
		WeightedMethodsHigh float64 `yaml:"weighted_methods_high"`
		MaxFields           int     `yaml:"max_fields"`
		MaxResponsibilities int     `yaml:"max_responsibilities"`
		ScoreThreshold      float64 `yaml:"score_threshold"`
	} `yaml:"god_object_thresholds"`

	TestDetection struct {
		TestFilePatterns     []string `yaml:"test_file_patterns"`
		CustomTestAttributes []string `yaml:"custom_test_attributes"`
	} `yaml:"test_detection"`

	StateDetection struct {
		UseTypeAnalysis       bool     `yaml:"use_type_analysis"`
		UsePatternRecognition bool     `yaml:"use_pattern_recognition"`
		MinEnumVariants       int      `yaml:"min_enum_variants"`
		CustomKeywords        []string `yaml:"custom_keywords"`
		CustomPatterns        []string `yaml:"custom_patterns"`
	} `yaml:"state_detection"`

	ObserverDetection struct {
		Enabled               bool     `yaml:"enabled"`
		RegistryFieldPatterns []string `yaml:"registry_field_patterns"`
		MinConfidence         float64  `yaml:"min_confidence"`
	} `yaml:"observer_detection"`

	Purity struct {
		UnknownDepsConfidence   float64 `yaml:"unknown_deps_confidence"`
		RecursivePureMultiplier float64 `yaml:"recursive_pure_multiplier"`
		PropagationDecay        float64 `yaml:"propagation_decay"`
	} `yaml:"purity"`

	BatchSize  int `yaml:"batch_size"`
	MaxThreads int `yaml:"max_threads"`
}

func roleName(r model.Role) string { return r.String() }

// DefaultConfig returns every default value §4.9/§6 specify.
func DefaultConfig() *Config {
	c := &Config{
		RoleCoverageWeights: map[string]float64{
			roleName(model.RoleEntryPoint):   0.6,
			roleName(model.RoleOrchestrator): 0.8,
			roleName(model.RoleIOWrapper):    0.7,
			roleName(model.RolePatternMatch): 1.0,
			roleName(model.RolePureLogic):    1.2,
			roleName(model.RoleUnknown):      1.0,
		},
		RoleMultiplier: map[string]float64{
			roleName(model.RoleEntryPoint):   1.3,
			roleName(model.RoleIOWrapper):    1.2,
			roleName(model.RoleOrchestrator): 1.0,
			roleName(model.RolePureLogic):    0.7,
			roleName(model.RolePatternMatch): 1.0,
			roleName(model.RoleUnknown):      1.0,
		},
		ClampMin:       0.3,
		ClampMax:       1.8,
		EnableClamping: true,
		PatternScaling: map[string]PatternScale{
			"god_object":          {Exponent: 1.4, MinThreshold: 0, MaxThreshold: 1e9},
			"long_function":       {Exponent: 1.3, MinThreshold: 0, MaxThreshold: 1e9},
			"complex_function":    {Exponent: 1.2, MinThreshold: 0, MaxThreshold: 1e9},
			"primitive_obsession": {Exponent: 1.1, MinThreshold: 0, MaxThreshold: 1e9},
		},
		BatchSize:  100,
		MaxThreads: 0,
	}
	c.GodObjectThresholds.MethodThreshold = 20
	c.GodObjectThresholds.FieldThreshold = 5
	c.GodObjectThresholds.ScoreThreshold = 70
	c.TestDetection.TestFilePatterns = []string{"tests/**", "**/*_test.*", "**/*_spec.*"}
	c.StateDetection.MinEnumVariants = 3
	c.ObserverDetection.Enabled = true
	c.ObserverDetection.MinConfidence = 0.8
	c.Purity.UnknownDepsConfidence = 0.3
	c.Purity.RecursivePureMultiplier = 0.7
	c.Purity.PropagationDecay = 0.9
	return c
}

// LoadConfig reads a YAML file at path, unmarshalled onto a copy of
// DefaultConfig so a partial file only overrides what it explicitly sets.
// An empty path returns the defaults unmodified.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
