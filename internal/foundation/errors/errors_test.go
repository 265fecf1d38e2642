package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SetsFields(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	err := FetchError("feature image lookup failed").
		WithContext("url", "https://cms.example/img").
		WithCause(cause).
		Build()

	assert.Equal(t, CategoryNetwork, err.Category())
	assert.Equal(t, SeverityError, err.Severity())
	assert.Equal(t, RetryBackoff, err.RetryStrategy())
	assert.True(t, err.CanRetry())
	assert.True(t, err.IsTransient())
	assert.ErrorIs(t, err, cause)

	url, ok := err.Context().GetString("url")
	require.True(t, ok)
	assert.Equal(t, "https://cms.example/img", url)
	assert.Contains(t, err.Error(), "dial tcp: timeout")
}

func TestBuild_DoesNotShareContext(t *testing.T) {
	b := NotFound("page not in collection").WithContext("url", "/a/")
	first := b.Build()
	second := first.WithContext("url", "/b/")

	v, _ := first.Context().GetString("url")
	assert.Equal(t, "/a/", v)
	v, _ = second.Context().GetString("url")
	assert.Equal(t, "/b/", v)
}

func TestIs_MatchesCategoryAndMessage(t *testing.T) {
	sentinel := NotFound("page not in collection").Build()
	err := NotFound("page not in collection").WithContext("url", "/x/").Build()
	wrapped := fmt.Errorf("nextPage: %w", err)

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, NotFound("layout not found").Build())
	assert.True(t, HasCategory(wrapped, CategoryNotFound))
	assert.Equal(t, CategoryNotFound, GetCategory(wrapped))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		retry    bool
	}{
		{"config", ConfigError("x"), CategoryConfig, SeverityFatal, false},
		{"validation", ValidationError("x"), CategoryValidation, SeverityFatal, false},
		{"not found", NotFound("x"), CategoryNotFound, SeverityError, false},
		{"fetch", FetchError("x"), CategoryNetwork, SeverityError, true},
		{"language", UnsupportedLanguage("cobol"), CategoryValidation, SeverityError, false},
		{"css", CSSError("x"), CategoryCSS, SeverityError, false},
		{"image", ImageError("x"), CategoryImage, SeverityWarning, false},
		{"filesystem", FileSystemError("x"), CategoryFileSystem, SeverityFatal, false},
		{"publish", PublishError("x"), CategoryPublish, SeverityError, true},
		{"internal", InternalError("x"), CategoryInternal, SeverityFatal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.builder.Build()
			assert.Equal(t, tt.category, err.Category())
			assert.Equal(t, tt.severity, err.Severity())
			assert.Equal(t, tt.retry, err.CanRetry())
		})
	}
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.Default())

	assert.Equal(t, 0, a.ExitCodeFor(nil))
	assert.Equal(t, 1, a.ExitCodeFor(stderrors.New("plain")))
	assert.Equal(t, 2, a.ExitCodeFor(ValidationError("bad").Build()))
	assert.Equal(t, 3, a.ExitCodeFor(NotFound("missing").Build()))
	assert.Equal(t, 7, a.ExitCodeFor(ConfigError("bad").Build()))
	assert.Equal(t, 8, a.ExitCodeFor(FetchError("down").Build()))
	assert.Equal(t, 11, a.ExitCodeFor(fmt.Errorf("stage: %w", TemplateError("parse").Build())))
}

func TestCLIErrorAdapter_Handle(t *testing.T) {
	var out, logs bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out

	code := a.Handle(ConfigError("missing site title").WithContext("file", "sitebuilder.yaml").Build())

	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "Error (config): missing site title")
	assert.Contains(t, out.String(), "file: sitebuilder.yaml")
	assert.Contains(t, logs.String(), "missing site title")
}
