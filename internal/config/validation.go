package config

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	foundation "github.com/TotalLag/developer-docs/internal/foundation/errors"
)

// Validate checks a defaulted configuration. Failures are classified as validation errors.
func Validate(c *Config) error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Site),
		validation.Field(&c.Dir),
		validation.Field(&c.Env, validation.Required, validation.In(EnvDevelopment, EnvProduction)),
		validation.Field(&c.Markdown),
		validation.Field(&c.CSS),
		validation.Field(&c.Images),
		validation.Field(&c.Sitemap),
		validation.Field(&c.FeatureImage),
		validation.Field(&c.Analytics),
		validation.Field(&c.Serve),
	)
	if err == nil {
		return nil
	}
	return foundation.ValidationError("invalid configuration").WithCause(err).Build()
}

func (s SiteConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required),
		validation.Field(&s.BaseURL, is.URL),
	)
}

func (d DirConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Input, validation.Required),
		validation.Field(&d.Output, validation.Required, validation.By(func(any) error {
			if cleanPath(d.Output) == cleanPath(d.Input) {
				return errors.New("must differ from the input directory")
			}
			return nil
		})),
	)
}

func (m MarkdownConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.TemplateEngine, validation.In(TemplateEngineGo, TemplateEngineNone)),
		validation.Field(&m.Anchors),
	)
}

func (a AnchorConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Levels, validation.Each(validation.Min(1), validation.Max(6))),
		validation.Field(&a.Placement, validation.In(PlacementBefore, PlacementAfter)),
	)
}

func (c CSSConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Themes),
		validation.Field(&c.DefaultTheme, validation.By(func(any) error {
			if c.DefaultTheme == "" {
				return nil
			}
			for _, t := range c.Themes {
				if t.Name == c.DefaultTheme {
					return nil
				}
			}
			return fmt.Errorf("unknown theme %q", c.DefaultTheme)
		})),
	)
}

func (t ThemeConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required),
		validation.Field(&t.Colors, validation.Required),
	)
}

func (i ImagesConfig) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.MinWidth, validation.Min(1)),
		validation.Field(&i.MaxWidth, validation.Min(i.MinWidth)),
		validation.Field(&i.WidthStep, validation.Min(1)),
		validation.Field(&i.Quality, validation.Min(1), validation.Max(100)),
		validation.Field(&i.Concurrency, validation.Min(1)),
	)
}

func (s SitemapConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Hostname, validation.Required, is.URL),
		validation.Field(&s.Filename, validation.Required),
	)
}

func (f FeatureImageConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Endpoint, is.URL),
		validation.Field(&f.RateLimit, validation.Min(0.0)),
		validation.Field(&f.Retry),
	)
}

func (r RetryConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.In(RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential)),
		validation.Field(&r.MaxRetries, validation.Min(0)),
	)
}

func (a AnalyticsConfig) Validate() error {
	return validation.ValidateStruct(&a, validation.Field(&a.ScriptURL, is.URL))
}

func (s ServeConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

func cleanPath(p string) string {
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(p), "./"), "/")
}
