package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/QuizImport/internal/logging"
)

// Import outcomes reported to the Recorder.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeStale     = "stale"
	OutcomePreview   = "preview"
)

// Recorder receives one observation per finished import.
type Recorder interface {
	ObserveImport(format Format, outcome string, records int, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveImport(Format, string, int, time.Duration) {}

// Options configures a Service. Zero values select defaults.
type Options struct {
	MaxFileBytes       int64
	EnforceAnswerRange bool
	MaxConcurrent      int
	MaxWait            time.Duration
	Alert              AlertDefaults
	Recorder           Recorder
}

// Service coordinates imports: it detects the format, reads the source,
// parses it and forwards the batch to the sink only if every row passed.
type Service struct {
	sink     Sink
	notifier Notifier
	rules    Rules
	maxBytes int64
	alert    AlertDefaults
	recorder Recorder
	limiter  *ImportLimiter
	sessions *sessions
}

// NewService creates a Service. A nil notifier logs alerts instead.
func NewService(sink Sink, notifier Notifier, opts Options) *Service {
	if notifier == nil {
		notifier = SlogNotifier{}
	}
	if opts.Alert == (AlertDefaults{}) {
		opts.Alert = DefaultAlert
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &Service{
		sink:     sink,
		notifier: notifier,
		rules:    Rules{EnforceAnswerRange: opts.EnforceAnswerRange},
		maxBytes: opts.MaxFileBytes,
		alert:    opts.Alert,
		recorder: opts.Recorder,
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		sessions: newSessions(),
	}
}

// Formats lists the importable formats.
func (s *Service) Formats() []FormatDefinition {
	return All()
}

// LimiterStatus reports how many imports are running.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// Drain waits for in-flight imports to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Import runs one import attempt.
//
// A request without a source or file name is a no-op and returns nil, nil.
// Otherwise the result is always returned; err is non-nil when nothing was
// committed. Every failure except a superseded import notifies the user,
// and the source is reset whether or not the import committed.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.Source == nil || req.Source.Name() == "" {
		return nil, nil
	}
	return s.run(ctx, req, false)
}

// Preview parses and validates like Import but never commits, notifies or
// resets the source.
func (s *Service) Preview(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if req.Source == nil || req.Source.Name() == "" {
		return nil, nil
	}
	req.Session = ""
	return s.run(ctx, req, true)
}

type attempt struct {
	req    ImportRequest
	result *ImportResult
	start  time.Time
	dryRun bool
	gen    generation
	logger *slog.Logger
}

func (s *Service) run(ctx context.Context, req ImportRequest, dryRun bool) (*ImportResult, error) {
	name := req.Source.Name()
	a := &attempt{
		req:    req,
		start:  time.Now(),
		dryRun: dryRun,
		result: &ImportResult{
			ImportID: uuid.NewString(),
			FileName: name,
			Records:  []QuestionRecord{},
			Errors:   []FieldError{},
		},
	}
	a.logger = logging.WithFields(ctx,
		"import_id", a.result.ImportID,
		"file", name,
		"dry_run", dryRun,
	)

	def, err := DetectFormat(name)
	if err != nil {
		return s.fail(ctx, a, err)
	}
	a.result.Format = def.Format
	a.result.Kind = def.Kind
	a.logger = a.logger.With("format", def.Format)

	readCtx, gen, cancel := s.sessions.begin(ctx, req.Session)
	defer cancel()
	defer s.sessions.end(req.Session, gen)
	a.gen = gen

	if err := s.limiter.Acquire(readCtx); err != nil {
		if !s.sessions.isCurrent(req.Session, gen) {
			return s.discard(a)
		}
		return s.fail(ctx, a, err)
	}
	defer s.limiter.Release()

	data, err := req.Source.Read(readCtx)
	if !s.sessions.isCurrent(req.Session, gen) {
		return s.discard(a)
	}
	if err != nil {
		var tooLarge *ErrTooLarge
		if errors.As(err, &tooLarge) {
			return s.fail(ctx, a, newImportError(KindIO, err, "File rejected"))
		}
		return s.fail(ctx, a, newImportError(KindIO, err, "Unable to read %s", name))
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return s.fail(ctx, a, newImportError(KindIO, &ErrTooLarge{Limit: s.maxBytes}, "File rejected"))
	}

	batch, err := def.Parse(data, s.rules)
	if !s.sessions.isCurrent(req.Session, gen) {
		return s.discard(a)
	}
	if err != nil {
		return s.fail(ctx, a, err)
	}

	if dryRun {
		a.result.Records = batch.Records
		return s.finish(a, OutcomePreview)
	}

	commit := Commit{
		ImportID: a.result.ImportID,
		Kind:     def.Kind,
		FileName: name,
		Target:   req.Target,
		Records:  batch.Records,
	}
	if err := s.sink.BulkImport(ctx, commit); err != nil {
		return s.fail(ctx, a, newImportError(KindStore, err, "Unable to save questions"))
	}

	a.result.Records = batch.Records
	a.result.Committed = true
	req.Source.Reset()
	return s.finish(a, OutcomeCommitted)
}

func (s *Service) finish(a *attempt, outcome string) (*ImportResult, error) {
	a.result.Duration = time.Since(a.start)
	s.recorder.ObserveImport(a.result.Format, outcome, len(a.result.Records), a.result.Duration)
	a.logger.Info("import finished",
		"outcome", outcome,
		"records", len(a.result.Records),
		"duration_ms", a.result.Duration.Milliseconds(),
	)
	return a.result, nil
}

// fail applies the commit gate to a failed attempt: nothing is forwarded,
// field errors stay on the result and the user is told what went wrong.
func (s *Service) fail(ctx context.Context, a *attempt, err error) (*ImportResult, error) {
	a.result.Records = []QuestionRecord{}
	a.result.Duration = time.Since(a.start)

	var ie *ImportError
	if errors.As(err, &ie) && len(ie.Fields) > 0 {
		a.result.Errors = ie.Fields
	}

	outcome := OutcomeFailed
	if k := KindOf(err); k == KindField || k == KindHeaderMismatch || k == KindUnsupportedFormat {
		outcome = OutcomeRejected
	}
	s.recorder.ObserveImport(a.result.Format, outcome, 0, a.result.Duration)

	a.logger.Warn("import rejected",
		"kind", KindOf(err),
		"error", err,
		"problems", len(a.result.Errors),
	)
	for _, line := range detailLines(err) {
		a.logger.Debug("import problem", "detail", line)
	}

	if !a.dryRun {
		s.notifier.Notify(ctx, s.alert.alert(alertMessage(err)))
		a.req.Source.Reset()
	}
	return a.result, err
}

// discard drops an attempt superseded by a newer import in its session.
func (s *Service) discard(a *attempt) (*ImportResult, error) {
	a.result.Records = []QuestionRecord{}
	a.result.Duration = time.Since(a.start)
	s.recorder.ObserveImport(a.result.Format, OutcomeStale, 0, a.result.Duration)
	a.logger.Info("import superseded", "generation", uint64(a.gen))
	return a.result, newImportError(KindStale, nil, "Import %s was superseded", a.result.ImportID)
}

func detailLines(err error) []string {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Details()
	}
	return nil
}
