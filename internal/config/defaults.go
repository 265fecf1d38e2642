package config

import "time"

// Default values mirrored by the generated example configuration.
const (
	DefaultInputDir          = "src"
	DefaultOutputDir         = "dist"
	DefaultIncludesDir       = "_includes"
	DefaultDataDir           = "_data"
	DefaultAnchorClass       = "header-anchor"
	DefaultHighlightStyle    = "github"
	DefaultThemeAttribute    = "data-theme"
	DefaultSitemapFilename   = "sitemap.xml"
	DefaultBrokenLinkSubject = "sitebuilder.links.broken"
	DefaultLastModProperty   = "modified"
	DefaultImageURLPath      = "/img/"
	DefaultImageOutputDir    = "img"
	DefaultImageCacheDir     = ".cache/images"
	DefaultStatePath         = ".cache/sitebuilder.db"
	DefaultAnalyticsScript   = "https://scripts.withcabin.com/hello.js"
	DefaultServePort         = 8080
	DefaultCacheDuration     = 14 * 24 * time.Hour
)

// DefaultAnchorSymbol is the link icon placed inside heading permalinks.
const DefaultAnchorSymbol = `<span aria-hidden="true"><svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24" stroke-width="3" stroke="#2c3e50" fill="none" stroke-linecap="round" stroke-linejoin="round">
<path stroke="none" d="M0 0h24v24H0z" fill="none"/>
<path d="M10 14a3.5 3.5 0 0 0 5 0l4 -4a3.5 3.5 0 0 0 -5 -5l-.5 .5" />
<path d="M14 10a3.5 3.5 0 0 0 -5 0l-4 4a3.5 3.5 0 0 0 5 5l.5 -.5" />
</svg></span>`

// DefaultApplier fills in defaults for one configuration domain.
type DefaultApplier interface {
	Domain() string
	ApplyDefaults(cfg *Config)
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}

var defaultAppliers = []DefaultApplier{
	siteDefaults{},
	dirDefaults{},
	markdownDefaults{},
	cssDefaults{},
	imageDefaults{},
	sitemapDefaults{},
	linkCheckDefaults{},
	featureImageDefaults{},
	ambientDefaults{},
}

type siteDefaults struct{}

func (siteDefaults) Domain() string { return "site" }
func (siteDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Developer Documentation"
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = "en"
	}
	if cfg.Site.Generator == "" {
		cfg.Site.Generator = "sitebuilder"
	}
	cfg.Env = NormalizeEnvironment(string(cfg.Env))
}

type dirDefaults struct{}

func (dirDefaults) Domain() string { return "dir" }
func (dirDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Dir.Input == "" {
		cfg.Dir.Input = DefaultInputDir
	}
	if cfg.Dir.Output == "" {
		cfg.Dir.Output = DefaultOutputDir
	}
	if cfg.Dir.Includes == "" {
		cfg.Dir.Includes = DefaultIncludesDir
	}
	if cfg.Dir.Data == "" {
		cfg.Dir.Data = DefaultDataDir
	}
	if cfg.Passthrough == nil {
		cfg.Passthrough = map[string]string{"public": "."}
	}
}

type markdownDefaults struct{}

func (markdownDefaults) Domain() string { return "markdown" }
func (markdownDefaults) ApplyDefaults(cfg *Config) {
	m := &cfg.Markdown
	m.TemplateEngine = NormalizeTemplateEngine(string(m.TemplateEngine))
	if len(m.Anchors.Levels) == 0 {
		m.Anchors.Levels = []int{2, 3}
	}
	if m.Anchors.Symbol == "" {
		m.Anchors.Symbol = DefaultAnchorSymbol
	}
	if m.Anchors.Class == "" {
		m.Anchors.Class = DefaultAnchorClass
	}
	m.Anchors.Placement = NormalizePlacement(string(m.Anchors.Placement))
	if m.Highlight.Style == "" {
		m.Highlight.Style = DefaultHighlightStyle
	}
}

type cssDefaults struct{}

func (cssDefaults) Domain() string { return "css" }
func (cssDefaults) ApplyDefaults(cfg *Config) {
	if cfg.CSS.ThemeAttr == "" {
		cfg.CSS.ThemeAttr = DefaultThemeAttribute
	}
	if cfg.CSS.DefaultTheme == "" && len(cfg.CSS.Themes) > 0 {
		cfg.CSS.DefaultTheme = cfg.CSS.Themes[0].Name
	}
}

type imageDefaults struct{}

func (imageDefaults) Domain() string { return "images" }
func (imageDefaults) ApplyDefaults(cfg *Config) {
	im := &cfg.Images
	if im.OutputDir == "" {
		im.OutputDir = DefaultImageOutputDir
	}
	if im.URLPath == "" {
		im.URLPath = DefaultImageURLPath
	}
	if len(im.Extensions) == 0 {
		im.Extensions = []string{"jpg", "png", "jpeg"}
	}
	if len(im.Formats) == 0 {
		im.Formats = []string{"avif", "webp", "jpeg"}
	}
	if im.MinWidth <= 0 {
		im.MinWidth = 200
	}
	if im.MaxWidth <= 0 {
		im.MaxWidth = 1500
	}
	if im.WidthStep <= 0 {
		im.WidthStep = 150
	}
	if im.Quality <= 0 || im.Quality > 100 {
		im.Quality = 80
	}
	if im.CacheDir == "" {
		im.CacheDir = DefaultImageCacheDir
	}
	if im.CacheDuration <= 0 {
		im.CacheDuration = Duration(DefaultCacheDuration)
	}
	if im.Concurrency <= 0 {
		im.Concurrency = 4
	}
}

type sitemapDefaults struct{}

func (sitemapDefaults) Domain() string { return "sitemap" }
func (sitemapDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Sitemap.Hostname == "" {
		cfg.Sitemap.Hostname = cfg.Site.BaseURL
	}
	if cfg.Sitemap.Hostname == "" {
		cfg.Sitemap.Hostname = "https://localhost"
	}
	if cfg.Sitemap.LastModifiedProperty == "" {
		cfg.Sitemap.LastModifiedProperty = DefaultLastModProperty
	}
	if cfg.Sitemap.Filename == "" {
		cfg.Sitemap.Filename = DefaultSitemapFilename
	}
}

type linkCheckDefaults struct{}

func (linkCheckDefaults) Domain() string { return "link_check" }
func (linkCheckDefaults) ApplyDefaults(cfg *Config) {
	if cfg.LinkCheck.Subject == "" {
		cfg.LinkCheck.Subject = DefaultBrokenLinkSubject
	}
}

type featureImageDefaults struct{}

func (featureImageDefaults) Domain() string { return "feature_image" }
func (featureImageDefaults) ApplyDefaults(cfg *Config) {
	f := &cfg.FeatureImage
	if f.Timeout <= 0 {
		f.Timeout = Duration(10 * time.Second)
	}
	if f.Retry.Mode == "" {
		f.Retry.Mode = RetryBackoffFixed
	} else {
		f.Retry.Mode = NormalizeRetryBackoff(string(f.Retry.Mode))
	}
	if f.Retry.Initial <= 0 {
		f.Retry.Initial = Duration(500 * time.Millisecond)
	}
	if f.Retry.Max <= 0 {
		f.Retry.Max = Duration(5 * time.Second)
	}
	// One retry unless explicitly configured (including 0).
	if f.Retry.MaxRetries == nil {
		one := 1
		f.Retry.MaxRetries = &one
	}
}

type ambientDefaults struct{}

func (ambientDefaults) Domain() string { return "ambient" }
func (ambientDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Analytics.ScriptURL == "" {
		cfg.Analytics.ScriptURL = DefaultAnalyticsScript
	}
	if len(cfg.Watch.Targets) == 0 {
		cfg.Watch.Targets = []string{"styles/**/*.css"}
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = Duration(300 * time.Millisecond)
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = DefaultServePort
	}
	if cfg.State.Path == "" {
		cfg.State.Path = DefaultStatePath
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
