package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TotalLag/developer-docs/internal/config"
	"github.com/TotalLag/developer-docs/internal/state"
)

func TestResolveLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, slog.LevelDebug, resolveLevel(true, config.LogLevelError))
	assert.Equal(t, slog.LevelWarn, resolveLevel(false, config.LogLevelWarn))
	assert.Equal(t, slog.LevelInfo, resolveLevel(false, ""))

	t.Setenv(LogLevelEnv, "error")
	assert.Equal(t, slog.LevelError, resolveLevel(false, config.LogLevelDebug))
}

func TestNewLoggerJSON(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	var buf bytes.Buffer
	c := &CLI{logOut: &buf}
	c.newLogger(config.LoggingConfig{Format: config.LogFormatJSON}).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func parse(t *testing.T, args ...string) (*kong.Context, *CLI) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	cli.logOut = &bytes.Buffer{}
	return kctx, &cli
}

func TestBuildCommand(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	require.NoError(t, os.MkdirAll(filepath.Join("src", "_includes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("src", "_includes", "base.html"), []byte(`<html><body>{{ .Content }}</body></html>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join("src", "index.md"), []byte("---\ntitle: Home\nlayout: base\n---\n# Hello\n"), 0o644))

	kctx, cli := parse(t, "build", "--output", "out")
	code := Execute(kctx, cli)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join("out", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello</h1>")

	st, err := state.Open(config.DefaultStatePath)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	builds, err := st.RecentBuilds(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, builds, 1)
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	kctx, cli := parse(t, "init")
	require.Equal(t, 0, Execute(kctx, cli))
	_, err := os.Stat("sitebuilder.yaml")
	require.NoError(t, err)

	kctx, cli = parse(t, "init")
	assert.NotEqual(t, 0, Execute(kctx, cli))
}

func TestPublishWithoutBucketIsConfigError(t *testing.T) {
	t.Chdir(t.TempDir())
	kctx, cli := parse(t, "publish", "--skip-build")
	assert.Equal(t, 7, Execute(kctx, cli))
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	assert.Equal(t, "no builds recorded\n", buf.String())

	buf.Reset()
	printHistory(&buf, []state.BuildRecord{{
		ID: "b1", StartedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration: 1500 * time.Millisecond, Outcome: "success", Pages: 12,
	}})
	assert.Contains(t, buf.String(), "2024-01-02 03:04:05  success")
	assert.Contains(t, buf.String(), "12 pages")
}
