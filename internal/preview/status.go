package preview

import (
	"sync"
	"time"

	"github.com/TotalLag/developer-docs/internal/site"
)

// buildStatus tracks the latest build for /healthz.
type buildStatus struct {
	mu           sync.RWMutex
	last         *site.BuildReport
	lastError    error
	hasGoodBuild bool
	builds       int
}

func (bs *buildStatus) record(report *site.BuildReport, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.last = report
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

// Health is the /healthz body.
type Health struct {
	Status       string    `json:"status"`
	Builds       int       `json:"builds"`
	HasGoodBuild bool      `json:"has_good_build"`
	BuildID      string    `json:"build_id,omitempty"`
	Outcome      string    `json:"outcome,omitempty"`
	Finished     time.Time `json:"finished,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Error        string    `json:"error,omitempty"`
}

func (bs *buildStatus) health() Health {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	h := Health{Status: "ok", Builds: bs.builds, HasGoodBuild: bs.hasGoodBuild}
	if bs.last != nil {
		h.BuildID = bs.last.BuildID
		h.Outcome = string(bs.last.Outcome)
		h.Finished = bs.last.End
		h.Summary = bs.last.Summary()
	}
	if bs.lastError != nil {
		h.Status = "error"
		h.Error = bs.lastError.Error()
	}
	return h
}
