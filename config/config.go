package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxPresignExpiry is the longest lifetime S3 accepts for a SigV4 presigned URL.
const MaxPresignExpiry = 7 * 24 * time.Hour

// Config holds all configuration for the harvest tool.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Output   OutputConfig   `yaml:"output"`
	Cache    CacheConfig    `yaml:"cache"`
	Upload   UploadConfig   `yaml:"upload"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CorpusConfig describes where documents come from and which ones to fetch.
type CorpusConfig struct {
	BaseURL string   `yaml:"base_url"`
	Suffix  string   `yaml:"suffix"`
	IDs     []string `yaml:"ids"`
	IDRange *IDRange `yaml:"id_range"` // used when IDs is empty
}

// IDRange is a half-open range of numeric document identifiers.
type IDRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// AnalysisConfig holds normalization and n-gram settings.
type AnalysisConfig struct {
	Orders         []int    `yaml:"orders"`
	Stemming       bool     `yaml:"stemming"`
	ExtraStopwords []string `yaml:"extra_stopwords"`
	KeepStopwords  []string `yaml:"keep_stopwords"`
	TopN           int      `yaml:"top_n"`
}

// FetchConfig holds HTTP client settings shared by the fetcher and scraper.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// OutputConfig holds output settings for frequency files.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// CacheConfig holds document cache settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // relative paths resolve against the root directory
}

// UploadConfig holds object store settings.
type UploadConfig struct {
	Bucket       string        `yaml:"bucket"`
	Region       string        `yaml:"region"`
	Endpoint     string        `yaml:"endpoint"` // optional, for S3-compatible stores
	PathStyle    bool          `yaml:"path_style"`
	AccessKeyEnv string        `yaml:"access_key_env"`
	SecretKeyEnv string        `yaml:"secret_key_env"`
	SourceDir    string        `yaml:"source_dir"`
	Prefix       string        `yaml:"prefix"`
	Includes     []string      `yaml:"includes"`
	Excludes     []string      `yaml:"excludes"`
	Recursive    bool          `yaml:"recursive"`
	Expiry       time.Duration `yaml:"expiry"`
}

// ScrapeConfig holds the faculty directory sites.
type ScrapeConfig struct {
	DefaultSite string       `yaml:"default_site"`
	Output      string       `yaml:"output"`
	Sites       []SiteConfig `yaml:"sites"`
}

// SiteConfig describes one faculty directory and how to read its pages.
type SiteConfig struct {
	Name          string        `yaml:"name"`
	University    string        `yaml:"university"`
	RootURL       string        `yaml:"root_url"`
	DirectoryPath string        `yaml:"directory_path"`
	Selectors     SiteSelectors `yaml:"selectors"`
	Rules         SiteRules     `yaml:"rules"`
}

// SiteSelectors are CSS selectors into the directory and profile pages.
type SiteSelectors struct {
	ProfileLinks       string `yaml:"profile_links"`
	Title              string `yaml:"title"`
	Department         string `yaml:"department"`
	DepartmentFallback string `yaml:"department_fallback"`
	Education          string `yaml:"education"`
}

// SiteRules parameterize the heuristics applied to profile text.
type SiteRules struct {
	DepartmentPattern  string   `yaml:"department_pattern"`
	TerminalDegree     string   `yaml:"terminal_degree"`
	InstitutionWords   []string `yaml:"institution_words"`
	LocationMaxWords   int      `yaml:"location_max_words"`
	DegreeSeparatorFix bool     `yaml:"degree_separator_fix"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			BaseURL: "https://s3-us-west-2.amazonaws.com/uspto-patentsclaims/",
			Suffix:  ".txt",
			IDRange: &IDRange{Start: 6334220, End: 6334230},
		},
		Analysis: AnalysisConfig{
			Orders:   []int{1, 2, 3},
			Stemming: true,
			TopN:     10,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			UserAgent: "harvest/1.0",
		},
		Output: OutputConfig{
			Dir: "output",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(".harvest", "cache.db"),
		},
		Upload: UploadConfig{
			Region:       "us-west-2",
			AccessKeyEnv: "AWS_ACCESS_KEY_ID",
			SecretKeyEnv: "AWS_SECRET_ACCESS_KEY",
			SourceDir:    "output",
			Prefix:       "ngram-output/",
			Includes:     []string{"**/*"},
			Expiry:       MaxPresignExpiry,
		},
		Scrape: ScrapeConfig{
			DefaultSite: "apu",
			Output:      "faculty.csv",
			Sites:       []SiteConfig{DefaultAPUSite()},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultAPUSite returns the Azusa Pacific University faculty directory layout.
func DefaultAPUSite() SiteConfig {
	return SiteConfig{
		Name:          "apu",
		University:    "Azusa Pacific University",
		RootURL:       "http://www.apu.edu",
		DirectoryPath: "/clas/faculty",
		Selectors: SiteSelectors{
			ProfileLinks:       "#template-page-content > ul:nth-of-type(n+3) > li > a:nth-of-type(2)",
			Title:              "#template-page-content > div > div:nth-of-type(1) > div.contact > h2",
			Department:         "#template-page-content > div > div:nth-of-type(1) > div:nth-of-type(2)",
			DepartmentFallback: "#template-page-content > div > div:nth-of-type(2) > div.sdepartment > ul > li",
			Education:          "#template-page-content > div > div:nth-of-type(2) > ul:nth-of-type(1) > li",
		},
		Rules: SiteRules{
			DepartmentPattern:  `Department of ([^'|]+)\|`,
			TerminalDegree:     `Ph\.D\.`,
			InstitutionWords:   []string{"University", "College", "School", "Seminary", "Institute"},
			LocationMaxWords:   2,
			DegreeSeparatorFix: true,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for harvest.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "harvest.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".harvest", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DocumentIDs returns the configured identifiers in processing order. A
// repeated id is kept at its first position only.
func (c *Config) DocumentIDs() []string {
	if len(c.Corpus.IDs) > 0 {
		seen := make(map[string]bool, len(c.Corpus.IDs))
		ids := make([]string, 0, len(c.Corpus.IDs))
		for _, id := range c.Corpus.IDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		return ids
	}
	if c.Corpus.IDRange == nil {
		return nil
	}
	ids := make([]string, 0, max(0, c.Corpus.IDRange.End-c.Corpus.IDRange.Start))
	for id := c.Corpus.IDRange.Start; id < c.Corpus.IDRange.End; id++ {
		ids = append(ids, strconv.Itoa(id))
	}
	return ids
}

// Site returns the site configuration with the given name.
func (c *Config) Site(name string) (SiteConfig, bool) {
	if name == "" {
		name = c.Scrape.DefaultSite
	}
	for _, s := range c.Scrape.Sites {
		if s.Name == name {
			return s, true
		}
	}
	return SiteConfig{}, false
}

// Validate checks settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if c.Corpus.BaseURL == "" {
		return fmt.Errorf("corpus.base_url is required")
	}
	if len(c.DocumentIDs()) == 0 {
		return fmt.Errorf("corpus: no document ids configured")
	}
	if len(c.Analysis.Orders) == 0 {
		return fmt.Errorf("analysis.orders must not be empty")
	}
	seenOrders := make(map[int]bool, len(c.Analysis.Orders))
	for _, n := range c.Analysis.Orders {
		if n < 1 || n > 3 {
			return fmt.Errorf("analysis.orders: unsupported n-gram order %d (want 1..3)", n)
		}
		if seenOrders[n] {
			return fmt.Errorf("analysis.orders: order %d listed twice", n)
		}
		seenOrders[n] = true
	}
	if c.Upload.Expiry <= 0 || c.Upload.Expiry > MaxPresignExpiry {
		return fmt.Errorf("upload.expiry must be in (0, %s], got %s", MaxPresignExpiry, c.Upload.Expiry)
	}
	for _, s := range c.Scrape.Sites {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("scrape site %q: %w", s.Name, err)
		}
	}
	return nil
}

// Validate checks that a site has enough configuration to be scraped.
func (s SiteConfig) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RootURL == "" {
		return fmt.Errorf("root_url is required")
	}
	if s.Selectors.ProfileLinks == "" || s.Selectors.Title == "" {
		return fmt.Errorf("selectors.profile_links and selectors.title are required")
	}
	for _, p := range []string{s.Rules.DepartmentPattern, s.Rules.TerminalDegree} {
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// ResolvePath makes a configured path absolute relative to the root directory.
func ResolvePath(rootDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

// EnsureDir ensures a directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
