package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder with error severity and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// WrapError starts a builder around an existing cause.
func WrapError(cause error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(cause)
}

func (b *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	b.err.cause = cause
	return b
}

func (b *ErrorBuilder) WithSeverity(s ErrorSeverity) *ErrorBuilder {
	b.err.severity = s
	return b
}

func (b *ErrorBuilder) WithRetry(r RetryStrategy) *ErrorBuilder {
	b.err.retry = r
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder     { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder   { return b.WithSeverity(SeverityWarning) }
func (b *ErrorBuilder) Retryable() *ErrorBuilder { return b.WithRetry(RetryBackoff) }

// Build returns the finished error. The builder may be reused afterwards.
func (b *ErrorBuilder) Build() *ClassifiedError {
	out := b.err
	out.context = ErrorContext{}.Merge(b.err.context)
	return &out
}

// Constructors for the failure kinds the site builder reports.

func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal().WithRetry(RetryUserAction)
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal().WithRetry(RetryUserAction)
}

// NotFound reports a lookup (page, layout, data key) that had no match.
func NotFound(message string) *ErrorBuilder {
	return NewError(CategoryNotFound, message)
}

// FetchError reports a remote lookup that did not complete successfully.
func FetchError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message).Retryable()
}

// UnsupportedLanguage reports a code fence language without a known label.
func UnsupportedLanguage(lang string) *ErrorBuilder {
	return NewError(CategoryValidation, "unsupported language").WithContext("lang", lang)
}

func ContentError(message string) *ErrorBuilder {
	return NewError(CategoryContent, message)
}

func MarkdownError(message string) *ErrorBuilder {
	return NewError(CategoryMarkdown, message)
}

func TemplateError(message string) *ErrorBuilder {
	return NewError(CategoryTemplate, message)
}

func CSSError(message string) *ErrorBuilder {
	return NewError(CategoryCSS, message)
}

func ImageError(message string) *ErrorBuilder {
	return NewError(CategoryImage, message).Warning()
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Fatal()
}

func PublishError(message string) *ErrorBuilder {
	return NewError(CategoryPublish, message).Retryable()
}

func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
