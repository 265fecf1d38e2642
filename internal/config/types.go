package config

// Config is the complete site builder configuration (sitebuilder.yaml).
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Dir          DirConfig          `yaml:"dir"`
	Env          Environment        `yaml:"env,omitempty"`
	Passthrough  map[string]string  `yaml:"passthrough,omitempty"` // project-relative source -> output-relative target
	Markdown     MarkdownConfig     `yaml:"markdown"`
	CSS          CSSConfig          `yaml:"css"`
	Images       ImagesConfig       `yaml:"images"`
	Sitemap      SitemapConfig      `yaml:"sitemap"`
	LinkCheck    LinkCheckConfig    `yaml:"link_check"`
	FeatureImage FeatureImageConfig `yaml:"feature_image"`
	Analytics    AnalyticsConfig    `yaml:"analytics"`
	Watch        WatchConfig        `yaml:"watch"`
	Serve        ServeConfig        `yaml:"serve"`
	Publish      PublishConfig      `yaml:"publish,omitempty"`
	State        StateConfig        `yaml:"state"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// IsProduction reports whether the resolved environment is production.
func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// SiteConfig holds site-wide metadata exposed to templates as .Site.
type SiteConfig struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description,omitempty"`
	BaseURL       string `yaml:"base_url"`
	Language      string `yaml:"language,omitempty"`
	Author        string `yaml:"author,omitempty"`
	TwitterHandle string `yaml:"twitter_handle,omitempty"`
	Generator     string `yaml:"generator,omitempty"`
}

// DirConfig names the input and output trees. Includes and Data are relative to Input.
type DirConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Includes string `yaml:"includes"`
	Data     string `yaml:"data"`
}

// MarkdownConfig configures the Markdown engine and heading anchors.
type MarkdownConfig struct {
	HTML           *bool           `yaml:"html,omitempty"` // allow raw HTML (default true)
	TemplateEngine TemplateEngine  `yaml:"template_engine,omitempty"`
	Anchors        AnchorConfig    `yaml:"anchors"`
	Highlight      HighlightConfig `yaml:"highlight"`
}

// AllowHTML reports whether raw HTML passes through the renderer.
func (m MarkdownConfig) AllowHTML() bool { return m.HTML == nil || *m.HTML }

// AnchorConfig configures heading ids and permalink links.
type AnchorConfig struct {
	Levels    []int              `yaml:"levels"`
	Symbol    string             `yaml:"symbol,omitempty"`
	Class     string             `yaml:"class,omitempty"`
	Placement PermalinkPlacement `yaml:"placement,omitempty"`
}

// HighlightConfig configures fenced code syntax highlighting.
type HighlightConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Style   string `yaml:"style,omitempty"`
}

func (h HighlightConfig) IsEnabled() bool { return h.Enabled == nil || *h.Enabled }

// CSSConfig configures the postcss filter.
type CSSConfig struct {
	Themes       []ThemeConfig `yaml:"themes,omitempty"`
	Minify       *bool         `yaml:"minify,omitempty"` // nil: minify in production only
	Autoprefix   *bool         `yaml:"autoprefix,omitempty"`
	ThemeAttr    string        `yaml:"theme_attribute,omitempty"`
	DefaultTheme string        `yaml:"default_theme,omitempty"`
}

// ShouldMinify resolves the minify switch against the environment.
func (c CSSConfig) ShouldMinify(env Environment) bool {
	if c.Minify != nil {
		return *c.Minify
	}
	return env == EnvProduction
}

func (c CSSConfig) ShouldAutoprefix() bool { return c.Autoprefix == nil || *c.Autoprefix }

// ThemeConfig is a named set of color tokens emitted as CSS custom properties.
type ThemeConfig struct {
	Name   string            `yaml:"name"`
	Colors map[string]string `yaml:"colors"`
}

// ImagesConfig configures responsive image generation.
type ImagesConfig struct {
	Enabled       *bool    `yaml:"enabled,omitempty"`
	OutputDir     string   `yaml:"output_dir"` // relative to Dir.Output
	URLPath       string   `yaml:"url_path"`
	Extensions    []string `yaml:"extensions"`
	Formats       []string `yaml:"formats"`
	MinWidth      int      `yaml:"min_width"`
	MaxWidth      int      `yaml:"max_width"`
	WidthStep     int      `yaml:"width_step"`
	Quality       int      `yaml:"quality"`
	FetchRemote   bool     `yaml:"fetch_remote"`
	CacheDir      string   `yaml:"cache_dir"`
	CacheDuration Duration `yaml:"cache_duration"`
	Concurrency   int      `yaml:"concurrency"`
}

func (i ImagesConfig) IsEnabled() bool { return i.Enabled == nil || *i.Enabled }

// SitemapConfig configures sitemap.xml output.
type SitemapConfig struct {
	Enabled              *bool  `yaml:"enabled,omitempty"`
	Hostname             string `yaml:"hostname"`
	LastModifiedProperty string `yaml:"last_modified_property"`
	Filename             string `yaml:"filename"`
}

func (s SitemapConfig) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// FeatureImageConfig configures the remote feature image lookup.
type FeatureImageConfig struct {
	Endpoint  string            `yaml:"endpoint"`
	Timeout   Duration          `yaml:"timeout"`
	RateLimit float64           `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Retry     RetryConfig       `yaml:"retry"`
	Headers   map[string]string `yaml:"headers,omitempty"`
}

// RetryConfig configures retry/backoff behaviour.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    Duration         `yaml:"initial"`
	Max        Duration         `yaml:"max"`
	MaxRetries *int             `yaml:"max_retries,omitempty"`
}

// AnalyticsConfig configures the analytics shortcode.
type AnalyticsConfig struct {
	ScriptURL string `yaml:"script_url"`
}

// LinkCheckConfig configures verification of internal links in the rendered output.
type LinkCheckConfig struct {
	Enabled      *bool  `yaml:"enabled,omitempty"`
	FailOnBroken bool   `yaml:"fail_on_broken,omitempty"`
	NATSURL      string `yaml:"nats_url,omitempty"` // publish broken-link events when set
	Subject      string `yaml:"subject,omitempty"`
}

func (l LinkCheckConfig) IsEnabled() bool { return l.Enabled == nil || *l.Enabled }

// WatchConfig configures serve-mode file watching.
type WatchConfig struct {
	Targets  []string `yaml:"targets,omitempty"` // globs relative to the project root
	Debounce Duration `yaml:"debounce"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Port            int    `yaml:"port"`
	RebuildSchedule string `yaml:"rebuild_schedule,omitempty"` // cron expression
	Metrics         bool   `yaml:"metrics"`
}

// PublishConfig configures upload of the output tree to S3-compatible storage.
type PublishConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// StateConfig locates the SQLite state database.
type StateConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}
