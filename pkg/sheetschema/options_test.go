package sheetschema

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/inference"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/vision"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("DefaultOptions().Validate() = %v", err)
	}
	if opts.Mode != ModeLocal {
		t.Errorf("Mode = %s, want %s", opts.Mode, ModeLocal)
	}
	if opts.RowLimit != 50 || opts.ColLimit != 40 {
		t.Errorf("limits = %d x %d, want 50 x 40", opts.RowLimit, opts.ColLimit)
	}
	if opts.Strategy != inference.StrategyFirst {
		t.Errorf("Strategy = %s, want %s", opts.Strategy, inference.StrategyFirst)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"empty mode", func(o *Options) { o.Mode = "" }, false},
		{"mock mode", func(o *Options) { o.Mode = ModeMock }, false},
		{"unknown mode", func(o *Options) { o.Mode = "remote" }, true},
		{"negative rows", func(o *Options) { o.RowLimit = -1 }, true},
		{"negative cols", func(o *Options) { o.ColLimit = -1 }, true},
		{"negative samples", func(o *Options) { o.SampleValues = -1 }, true},
		{"negative delay", func(o *Options) { o.MockDelay = -time.Second }, true},
		{"column confidence above one", func(o *Options) { o.ColumnConfidence = 1.1 }, true},
		{"negative table confidence", func(o *Options) { o.TableConfidence = -0.1 }, true},
		{"majority strategy", func(o *Options) { o.Strategy = inference.StrategyMajority }, false},
		{"empty strategy", func(o *Options) { o.Strategy = "" }, false},
		{"unknown strategy", func(o *Options) { o.Strategy = "median" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.edit(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseOptions(t *testing.T) {
	data := []byte(`
mode: mock
rowLimit: 10
strategy: majority
mockDelay: 250ms
`)
	opts, err := ParseOptions(data)
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}
	if opts.Mode != ModeMock {
		t.Errorf("Mode = %s, want mock", opts.Mode)
	}
	if opts.RowLimit != 10 {
		t.Errorf("RowLimit = %d, want 10", opts.RowLimit)
	}
	if opts.ColLimit != 40 {
		t.Errorf("ColLimit = %d, want the default 40", opts.ColLimit)
	}
	if opts.MockDelay != 250*time.Millisecond {
		t.Errorf("MockDelay = %s, want 250ms", opts.MockDelay)
	}

	analyzer, err := opts.NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	mock, ok := analyzer.(*vision.MockAnalyzer)
	if !ok {
		t.Fatalf("NewAnalyzer() = %T, want *vision.MockAnalyzer", analyzer)
	}
	if mock.Delay != 250*time.Millisecond {
		t.Errorf("Delay = %s, want 250ms", mock.Delay)
	}
	if mock.Engine.Strategy().Name() != inference.StrategyMajority {
		t.Errorf("strategy = %s, want majority", mock.Engine.Strategy().Name())
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "rows: 10\n"},
		{"invalid mode", "mode: remote\n"},
		{"invalid confidence", "tableConfidence: 2\n"},
		{"malformed", "rowLimit: [1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOptions([]byte(tt.data)); err == nil {
				t.Errorf("ParseOptions(%q) expected error", tt.data)
			}
		})
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	if err := os.WriteFile(path, []byte("colLimit: 12\nsampleValues: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if opts.ColLimit != 12 || opts.SampleValues != 2 {
		t.Errorf("got cols=%d samples=%d, want 12 and 2", opts.ColLimit, opts.SampleValues)
	}

	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadOptions() expected error for missing file")
	}
}

func TestNewAnalyzerDefaults(t *testing.T) {
	analyzer, err := DefaultOptions().NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	if analyzer.Name() != "local" {
		t.Errorf("Name() = %s, want local", analyzer.Name())
	}

	custom := vision.AnalyzerFunc(nil)
	opts := DefaultOptions()
	opts.Analyzer = custom
	analyzer, err = opts.NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	if analyzer.Name() != "func" {
		t.Errorf("Name() = %s, want func", analyzer.Name())
	}
}
