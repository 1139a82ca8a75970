// Package sheetschema infers a relational schema from spreadsheet workbooks
// and lets callers correct it before export.
package sheetschema

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/inference"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/parser"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/vision"
)

// Mode represents the analysis mode.
type Mode string

const (
	// ModeLocal runs the inference heuristic in process.
	ModeLocal Mode = "local"
	// ModeMock simulates the remote analysis service (demo mode).
	ModeMock Mode = "mock"
)

// Options configures analysis behavior.
type Options struct {
	// Mode specifies the analysis mode (local, mock). Empty means local.
	Mode Mode `yaml:"mode"`
	// RowLimit and ColLimit bound the sampled grid. Zero uses the defaults.
	RowLimit int `yaml:"rowLimit"`
	ColLimit int `yaml:"colLimit"`
	// Strategy names the representative sample strategy (first, majority).
	Strategy string `yaml:"strategy"`
	// ColumnConfidence and TableConfidence are reported on inferred columns
	// and tables.
	ColumnConfidence float64 `yaml:"columnConfidence"`
	TableConfidence  float64 `yaml:"tableConfidence"`
	// SampleValues caps the sample values kept per column.
	SampleValues int `yaml:"sampleValues"`
	// MockDelay is the simulated service latency in mock mode.
	MockDelay time.Duration `yaml:"mockDelay"`
	// Password opens encrypted workbooks.
	Password string `yaml:"password"`
	// Analyzer replaces the analyzer chosen by Mode when set.
	Analyzer vision.Analyzer `yaml:"-"`
}

// DefaultOptions returns default analysis options.
func DefaultOptions() Options {
	return Options{
		Mode:             ModeLocal,
		RowLimit:         parser.DefaultRowLimit,
		ColLimit:         parser.DefaultColLimit,
		Strategy:         inference.StrategyFirst,
		ColumnConfidence: inference.DefaultColumnConfidence,
		TableConfidence:  inference.DefaultTableConfidence,
		SampleValues:     inference.DefaultSampleValues,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	switch o.Mode {
	case "", ModeLocal, ModeMock:
	default:
		return fmt.Errorf("invalid mode: %s (must be local or mock)", o.Mode)
	}
	if o.RowLimit < 0 || o.ColLimit < 0 {
		return fmt.Errorf("invalid limits: rows=%d cols=%d (must be non-negative)", o.RowLimit, o.ColLimit)
	}
	if o.SampleValues < 0 {
		return fmt.Errorf("invalid sample value count: %d", o.SampleValues)
	}
	if o.MockDelay < 0 {
		return fmt.Errorf("invalid mock delay: %s", o.MockDelay)
	}
	if err := checkConfidence("column", o.ColumnConfidence); err != nil {
		return err
	}
	if err := checkConfidence("table", o.TableConfidence); err != nil {
		return err
	}
	if _, err := o.strategy(); err != nil {
		return err
	}
	return nil
}

func checkConfidence(name string, c float64) error {
	if c < 0 || c > 1 {
		return fmt.Errorf("invalid %s confidence: %g (must be in [0, 1])", name, c)
	}
	return nil
}

func (o Options) strategy() (inference.Strategy, error) {
	return inference.StrategyByName(o.Strategy)
}

// Engine builds the inference engine these options describe.
func (o Options) Engine() (*inference.Engine, error) {
	strategy, err := o.strategy()
	if err != nil {
		return nil, err
	}
	return inference.New(inference.Config{
		Strategy:         strategy,
		ColumnConfidence: o.ColumnConfidence,
		TableConfidence:  o.TableConfidence,
		SampleValues:     o.SampleValues,
	}), nil
}

// NewAnalyzer returns Options.Analyzer when set, otherwise the analyzer
// selected by Mode.
func (o Options) NewAnalyzer() (vision.Analyzer, error) {
	if o.Analyzer != nil {
		return o.Analyzer, nil
	}
	engine, err := o.Engine()
	if err != nil {
		return nil, err
	}
	if o.Mode == ModeMock {
		return vision.NewMockAnalyzer(engine, o.MockDelay), nil
	}
	return vision.NewLocalAnalyzer(engine), nil
}

// LoadOptions reads a YAML options file. Values overlay DefaultOptions and
// unknown keys are rejected.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}
	return ParseOptions(data)
}

// ParseOptions decodes YAML options over DefaultOptions.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.UnmarshalWithOptions(data, &opts, yaml.DisallowUnknownField()); err != nil {
		return Options{}, fmt.Errorf("parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
