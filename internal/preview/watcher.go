package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/logfields"
)

var skipDirs = map[string]bool{".git": true, "node_modules": true, ".cache": true}

// target is a watch glob rooted at the longest literal directory prefix.
// A "**/" segment also matches zero directories, so each pattern compiles to
// itself plus every variant with some "**/" segments dropped.
type target struct {
	pattern string
	base    string
	globs   []glob.Glob
}

func compileTarget(pattern string) (target, error) {
	pattern = filepath.ToSlash(filepath.Clean(pattern))
	t := target{pattern: pattern, base: globBase(pattern)}
	for _, variant := range globstarVariants(pattern) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return target{}, fmt.Errorf("watch target %q: %w", pattern, err)
		}
		t.globs = append(t.globs, g)
	}
	return t, nil
}

func (t target) match(rel string) bool {
	for _, g := range t.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func globstarVariants(pattern string) []string {
	seen := map[string]bool{pattern: true}
	out := []string{pattern}
	for i := 0; i < len(out); i++ {
		p := out[i]
		for j := strings.Index(p, "**/"); j >= 0; {
			v := p[:j] + p[j+3:]
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
			next := strings.Index(p[j+3:], "**/")
			if next < 0 {
				break
			}
			j += 3 + next
		}
	}
	return out
}

func globBase(pattern string) string {
	parts := strings.Split(pattern, "/")
	var lit []string
	for _, p := range parts {
		if strings.ContainsAny(p, "*?[{") {
			break
		}
		lit = append(lit, p)
	}
	if len(lit) == len(parts) {
		lit = lit[:len(lit)-1]
	}
	if len(lit) == 0 {
		return "."
	}
	return strings.Join(lit, "/")
}

type watcher struct {
	fs      *fsnotify.Watcher
	input   string
	output  string
	targets []target
	logger  *slog.Logger
}

func newWatcher(cfg *config.Config, logger *slog.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &watcher{fs: fw, input: absOrSelf(cfg.Dir.Input), output: absOrSelf(cfg.Dir.Output), logger: logger}
	for _, p := range cfg.Watch.Targets {
		t, err := compileTarget(p)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		w.targets = append(w.targets, t)
	}

	if err := w.addDirsRecursive(w.input); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir.Input, err)
	}
	for _, t := range w.targets {
		if _, err := os.Stat(t.base); err != nil {
			logger.Debug("Watch target base missing", logfields.Path(t.base))
			continue
		}
		_ = w.addDirsRecursive(absOrSelf(t.base))
	}
	return w, nil
}

func (w *watcher) Close() error { return w.fs.Close() }

func (w *watcher) run(ctx context.Context, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev, trigger)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event, trigger func()) {
	if !w.relevant(ev.Name) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// relevant reports whether a change at path should rebuild the site.
func (w *watcher) relevant(path string) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	abs := absOrSelf(path)
	if within(abs, w.output) {
		return false
	}
	if within(abs, w.input) {
		return true
	}
	return w.matchesTarget(path)
}

func (w *watcher) matchesTarget(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			if r, err := filepath.Rel(wd, path); err == nil {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	for _, t := range w.targets {
		if t.match(rel) {
			return true
		}
	}
	return false
}

func (w *watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if within(absOrSelf(path), w.output) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// shouldIgnoreEvent filters hidden files, editor swap files and OS litter.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
