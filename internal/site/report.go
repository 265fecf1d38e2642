package site

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/metrics"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// BuildReport captures what one build did.
type BuildReport struct {
	BuildID         string
	Env             config.Environment
	Start           time.Time
	End             time.Time
	Pages           int // pages loaded
	Written         int // pages written
	Changed         int // pages whose fingerprint differs from the previous build
	Drafts          int
	Assets          int // passthrough files copied
	Images          int // image variants generated
	BrokenLinks     int
	Bytes           int64
	Errors          []error
	Warnings        []error
	StageDurations  map[StageName]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount
	Outcome         BuildOutcome
}

func newBuildReport(id string, env config.Environment) *BuildReport {
	return &BuildReport{
		BuildID:         id,
		Env:             env,
		Start:           time.Now(),
		StageDurations:  make(map[StageName]time.Duration),
		StageErrorKinds: make(map[StageName]StageErrorKind),
		StageCounts:     make(map[StageName]StageCount),
	}
}

// Duration is the wall time of the build.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// AddWarning records a non-fatal problem.
func (r *BuildReport) AddWarning(err error) {
	if err != nil {
		r.Warnings = append(r.Warnings, err)
	}
}

func (r *BuildReport) recordStage(stage StageName, d time.Duration, se *StageError, recorder metrics.Recorder) {
	r.StageDurations[stage] = d
	res := resultFor(se)
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
	case StageResultWarning:
		sc.Warning++
	case StageResultFatal:
		sc.Fatal++
	case StageResultCanceled:
		sc.Canceled++
	}
	r.StageCounts[stage] = sc

	if se != nil {
		r.StageErrorKinds[stage] = se.Kind
		if se.Kind == StageErrorWarning {
			if joined, ok := se.Err.(interface{ Unwrap() []error }); ok {
				for _, w := range joined.Unwrap() {
					r.AddWarning(w)
				}
			} else {
				r.AddWarning(se)
			}
		} else {
			r.Errors = append(r.Errors, se)
		}
	}

	recorder.ObserveStageDuration(string(stage), d)
	recorder.IncStageResult(string(stage), metrics.ResultLabel(res))
}

func (r *BuildReport) finish(recorder metrics.Recorder) {
	r.End = time.Now()
	r.deriveOutcome()
	recorder.ObserveBuildDuration(r.Duration())
	recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(r.Outcome))
}

func (r *BuildReport) deriveOutcome() {
	for _, k := range r.StageErrorKinds {
		if k == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
	}
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Summary is a one-line human description.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("%s: %s pages (%s changed), %s assets, %s images, %s written in %s, %d warnings",
		r.Outcome,
		humanize.Comma(int64(r.Written)),
		humanize.Comma(int64(r.Changed)),
		humanize.Comma(int64(r.Assets)),
		humanize.Comma(int64(r.Images)),
		humanize.Bytes(uint64(max(r.Bytes, 0))), // #nosec G115 -- clamped non-negative
		r.Duration().Round(time.Millisecond),
		len(r.Warnings),
	)
}
