package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared by all packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeyURL        = "url"
	KeyLayout     = "layout"
	KeyAsset      = "asset"
	KeyPlugin     = "plugin"
	KeyEnv        = "env"
	KeyPath       = "path"
	KeyAttempt    = "attempt"
	KeyError      = "error"
)

func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func Page(inputPath string) slog.Attr    { return slog.String(KeyPage, inputPath) }
func URL(u string) slog.Attr             { return slog.String(KeyURL, u) }
func Layout(name string) slog.Attr       { return slog.String(KeyLayout, name) }
func Asset(p string) slog.Attr           { return slog.String(KeyAsset, p) }
func Plugin(name string) slog.Attr       { return slog.String(KeyPlugin, name) }
func Env(name string) slog.Attr          { return slog.String(KeyEnv, name) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func Attempt(n int) slog.Attr            { return slog.Int(KeyAttempt, n) }
func Duration(d time.Duration) slog.Attr { return slog.Int64(KeyDurationMS, d.Milliseconds()) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
