package site

import (
	"context"
	"errors"
	"fmt"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StagePrepareOutput   StageName = "prepare_output"
	StageLoadContent     StageName = "load_content"
	StageRenderPages     StageName = "render_pages"
	StageTransformOutput StageName = "transform_output"
	StageWritePages      StageName = "write_pages"
	StagePassthroughCopy StageName = "passthrough_copy"
	StageWriteSitemap    StageName = "write_sitemap"
	StageVerifyLinks     StageName = "verify_links"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// Transient reports whether rerunning the build could clear the failure.
func (e *StageError) Transient() bool {
	if e == nil || e.Kind == StageErrorCanceled {
		return false
	}
	if ce, ok := foundation.AsClassified(e.Err); ok {
		return ce.IsTransient()
	}
	return false
}

func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
	StageResultSkipped  StageResult = "skipped"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *buildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 8)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage when cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// classifyStageError turns a stage's returned error into a StageError. Classified
// errors below fatal/error severity are warnings; cancellation is its own kind.
func classifyStageError(stage StageName, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewCanceledStageError(stage, err)
	}
	if ce, ok := foundation.AsClassified(err); ok {
		switch ce.Severity() {
		case foundation.SeverityWarning, foundation.SeverityInfo:
			return NewWarnStageError(stage, err)
		}
	}
	return NewFatalStageError(stage, err)
}

func resultFor(se *StageError) StageResult {
	if se == nil {
		return StageResultSuccess
	}
	switch se.Kind {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	}
	return StageResultFatal
}
