package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/TotalLag/developer-docs/internal/state"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of builds to show" default:"10"`

	out io.Writer
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, _, err := root.loadConfig()
	if err != nil {
		return err
	}
	st, err := openState(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	builds, err := st.RecentBuilds(g.Ctx, h.Limit)
	if err != nil {
		return err
	}
	out := h.out
	if out == nil {
		out = os.Stdout
	}
	printHistory(out, builds)
	return nil
}

func printHistory(w io.Writer, builds []state.BuildRecord) {
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(w, "no builds recorded")
		return
	}
	for _, b := range builds {
		_, _ = fmt.Fprintf(w, "%s  %-8s %5d pages  %3d warnings  %s  (%s)\n",
			b.StartedAt.Format("2006-01-02 15:04:05"), b.Outcome, b.Pages, b.Warnings,
			b.Duration.Round(time.Millisecond), humanize.Time(b.StartedAt))
	}
}
