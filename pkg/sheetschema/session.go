package sheetschema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/notify"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/output"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/parser"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/schema"
)

// Phase is a session state.
type Phase string

const (
	PhaseUpload    Phase = "upload"
	PhaseAnalyzing Phase = "analyzing"
	PhaseReview    Phase = "review"
)

var transitions = map[Phase][]Phase{
	PhaseUpload:    {PhaseAnalyzing},
	PhaseAnalyzing: {PhaseUpload, PhaseReview},
	PhaseReview:    {PhaseAnalyzing, PhaseUpload},
}

// CanTransition reports whether a session may move from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// MockCredential unlocks a session when no real service key is configured.
// Local and mock analysis never send it anywhere.
const MockCredential = "MOCK_DEBUG_KEY"

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an export format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be json or yaml)", s)
	}
}

// Session holds the state of one upload, review and export cycle. Uploading
// a new workbook discards everything from the previous one. A Session is
// safe for concurrent use; only one upload runs at a time.
type Session struct {
	*emitter
	opts Options

	mu         sync.Mutex
	phase      Phase
	credential string
	pending    parser.Decoder
	source     string
	model      *schema.Model
}

// NewSession creates a session in the upload phase.
func NewSession(opts Options, sink notify.Sink) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		emitter: newEmitter(sink, uuid.NewString()),
		opts:    opts,
		phase:   PhaseUpload,
	}
	s.emit(notify.Info, "Application initialized. Upload an Excel file to begin.", nil)
	return s, nil
}

// ID returns the session id stamped on every event.
func (s *Session) ID() string { return s.session }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// HasCredential reports whether a credential has been supplied.
func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != ""
}

// HasPending reports whether an upload is waiting for a credential.
func (s *Session) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// SetCredential stores the analysis service credential. A pending upload,
// if any, runs immediately and its error is returned.
func (s *Session) SetCredential(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credential must not be empty")
	}

	s.mu.Lock()
	s.credential = key
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	s.emit(notify.Success, "API key configured", nil)
	if pending == nil {
		return nil
	}
	return s.Upload(ctx, pending)
}

// Upload analyzes a workbook. Without a credential the upload is parked and
// ErrCredentialRequired is returned with the session still in the upload
// phase. Prior state is discarded before analysis starts. On failure the
// session returns to the upload phase with no schema retained.
func (s *Session) Upload(ctx context.Context, dec parser.Decoder) error {
	s.mu.Lock()
	if s.credential == "" {
		if s.phase != PhaseUpload {
			s.mu.Unlock()
			return fmt.Errorf("%w: upload while %s", ErrInvalidTransition, s.phase)
		}
		s.pending = dec
		s.mu.Unlock()
		return ErrCredentialRequired
	}
	if err := s.transition(PhaseAnalyzing); err != nil {
		s.mu.Unlock()
		return err
	}
	s.source = ""
	s.model = nil
	s.mu.Unlock()

	res, err := s.analyze(ctx, dec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = PhaseUpload
		return err
	}
	model, err := schema.NewModel(res.Sheets)
	if err != nil {
		s.phase = PhaseUpload
		return s.fail(err)
	}
	s.source = res.Source
	s.model = model
	s.phase = PhaseReview
	return nil
}

func (s *Session) analyze(ctx context.Context, dec parser.Decoder) (*Result, error) {
	p, err := newPipeline(s.opts, s.emitter)
	if err != nil {
		return nil, s.fail(err)
	}
	return p.run(ctx, dec)
}

// transition must be called with s.mu held.
func (s *Session) transition(to Phase) error {
	if !CanTransition(s.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.phase, to)
	}
	s.phase = to
	return nil
}

// reviewModel returns the model when the session is in review.
func (s *Session) reviewModel() (*schema.Model, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReview {
		return nil, "", fmt.Errorf("%w (phase %s)", ErrNotInReview, s.phase)
	}
	return s.model, s.source, nil
}

// Source returns the name of the workbook under review.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// ApplyColumnUpdate applies a correction to the column with the given id.
func (s *Session) ApplyColumnUpdate(sheetIdx, tableIdx int, columnID string, u schema.ColumnUpdate) error {
	model, _, err := s.reviewModel()
	if err != nil {
		return err
	}
	return model.ApplyColumnUpdate(sheetIdx, tableIdx, columnID, u)
}

// Sheets returns a copy of the schema under review.
func (s *Session) Sheets() ([]models.SheetAnalysis, error) {
	model, _, err := s.reviewModel()
	if err != nil {
		return nil, err
	}
	return model.Sheets()
}

// SheetIndex returns the index of the named sheet under review.
func (s *Session) SheetIndex(name string) (int, error) {
	sheets, err := s.Sheets()
	if err != nil {
		return -1, err
	}
	for i, sheet := range sheets {
		if sheet.SheetName == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no sheet %q", schema.ErrColumnNotFound, name)
}

// Document builds the export document for the schema under review.
func (s *Session) Document() (*models.ExportDocument, error) {
	model, source, err := s.reviewModel()
	if err != nil {
		return nil, err
	}
	sheets, err := model.Sheets()
	if err != nil {
		return nil, err
	}
	return output.BuildDocument(sheets, source, s.now()), nil
}

// Export validates and writes the export document to w.
func (s *Session) Export(w io.Writer, format Format, pretty bool) error {
	if err := s.export(w, format, pretty); err != nil {
		return s.fail(err)
	}
	s.emit(notify.Success, "Schema exported successfully", nil)
	return nil
}

func (s *Session) export(w io.Writer, format Format, pretty bool) error {
	doc, err := s.Document()
	if err != nil {
		return &ExportError{Stage: "build", Err: err}
	}
	if err := output.ValidateDocument(doc); err != nil {
		return &ExportError{Stage: "validate", Err: err}
	}

	var data []byte
	switch format {
	case FormatJSON, "":
		data, err = output.ToJSON(doc, pretty)
	case FormatYAML:
		data, err = output.ToYAML(doc)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return &ExportError{Stage: "encode", Err: err}
	}
	if pretty || format == FormatYAML {
		data = appendNewline(data)
	}

	if _, err := w.Write(data); err != nil {
		return &ExportError{Stage: "write", Err: err}
	}
	return nil
}

func appendNewline(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\n' {
		return data
	}
	return append(data, '\n')
}

// Reset leaves review and discards the schema.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReview {
		return fmt.Errorf("%w: reset while %s", ErrInvalidTransition, s.phase)
	}
	s.phase = PhaseUpload
	s.source = ""
	s.model = nil
	s.pending = nil
	return nil
}
