package vision

import (
	"context"
	"time"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/inference"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// Request is what the analysis service receives for one sheet.
type Request struct {
	SheetName string
	// Grid is the sampled grid.
	Grid models.Grid
	// Text is the RenderText form of Grid.
	Text string
	// Image is the RenderPNG form of Grid; nil for an empty grid.
	Image []byte
}

// NewRequest builds a Request with both renderings of grid.
func NewRequest(sheetName string, grid models.Grid) (Request, error) {
	img, err := RenderPNG(grid)
	if err != nil {
		return Request{}, err
	}
	return Request{
		SheetName: sheetName,
		Grid:      grid,
		Text:      RenderText(grid),
		Image:     img,
	}, nil
}

// Analyzer infers the tables of one sheet from its renderings.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, req Request) ([]models.Table, error)
}

// Simulated is implemented by analyzers that stand in for a real service.
type Simulated interface {
	Simulated() bool
}

// LocalAnalyzer runs the inference engine in process.
type LocalAnalyzer struct {
	Engine *inference.Engine
}

// NewLocalAnalyzer returns a LocalAnalyzer around engine, or around a
// default engine when engine is nil.
func NewLocalAnalyzer(engine *inference.Engine) *LocalAnalyzer {
	if engine == nil {
		engine = inference.New(inference.DefaultConfig())
	}
	return &LocalAnalyzer{Engine: engine}
}

func (a *LocalAnalyzer) Name() string { return "local" }

func (a *LocalAnalyzer) Analyze(ctx context.Context, req Request) ([]models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.Engine.Infer(req.SheetName, req.Grid), nil
}

// MockAnalyzer simulates the remote visual analysis service: it waits for
// Delay and then answers with the local heuristic.
type MockAnalyzer struct {
	LocalAnalyzer
	Delay time.Duration
}

// NewMockAnalyzer returns a MockAnalyzer around engine.
func NewMockAnalyzer(engine *inference.Engine, delay time.Duration) *MockAnalyzer {
	return &MockAnalyzer{LocalAnalyzer: *NewLocalAnalyzer(engine), Delay: delay}
}

func (a *MockAnalyzer) Name() string { return "mock" }

func (a *MockAnalyzer) Simulated() bool { return true }

func (a *MockAnalyzer) Analyze(ctx context.Context, req Request) ([]models.Table, error) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return a.LocalAnalyzer.Analyze(ctx, req)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, req Request) ([]models.Table, error)

func (fn AnalyzerFunc) Name() string { return "func" }

func (fn AnalyzerFunc) Analyze(ctx context.Context, req Request) ([]models.Table, error) {
	return fn(ctx, req)
}
