package linkpreview

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rohmanhakim/link-preview/fetch"
	"github.com/rohmanhakim/link-preview/providers"
)

type Config struct {
	//===============
	// Limits
	//===============
	// Maximum number of fetches a single resolution session may issue
	maxRequests int

	//===============
	// Fetch
	//===============
	// Whether redirects are followed at all
	followRedirects bool
	// Redirect budget per request
	maxRedirects int
	// Maximum time of a single fetch request including body read
	timeout time.Duration
	// Maximum time to establish a connection
	openTimeout time.Duration
	// User agent sent with every request. In raw string
	userAgent string

	//===============
	// Extraction
	//===============
	// Skip the nested fetch of OpenGraph video groups typed text/html
	ignoreOpenGraphVideoHTML bool

	//===============
	// Collaborators
	//===============
	// HTTP client override; built from the fetch settings above when nil
	httpClient fetch.Client
	// oEmbed provider directory; the embedded registry when nil
	directory providers.Directory
	// Callback invoked with every swallowed transport failure
	errorHandler func(error)
	// Logger backing the observability sink
	logger *zap.Logger
}

type configDTO struct {
	MaxRequests              int           `json:"maxRequests,omitempty"`
	FollowRedirects          *bool         `json:"followRedirects,omitempty"`
	MaxRedirects             int           `json:"maxRedirects,omitempty"`
	Timeout                  time.Duration `json:"timeout,omitempty"`
	OpenTimeout              time.Duration `json:"openTimeout,omitempty"`
	UserAgent                string        `json:"userAgent,omitempty"`
	IgnoreOpenGraphVideoHTML bool          `json:"ignoreOpengraphVideoHtml,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg, err := WithDefault().Build()
	if err != nil {
		return Config{}, err
	}

	if dto.MaxRequests != 0 {
		cfg.maxRequests = dto.MaxRequests
	}
	if dto.FollowRedirects != nil {
		cfg.followRedirects = *dto.FollowRedirects
	}
	if dto.MaxRedirects != 0 {
		cfg.maxRedirects = dto.MaxRedirects
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.OpenTimeout != 0 {
		cfg.openTimeout = dto.OpenTimeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	cfg.ignoreOpenGraphVideoHTML = dto.IgnoreOpenGraphVideoHTML

	return cfg, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with default values for all fields.
func WithDefault() *Config {
	defaultConfig := Config{
		maxRequests:              10,
		followRedirects:          true,
		maxRedirects:             3,
		timeout:                  5 * time.Second,
		openTimeout:              2 * time.Second,
		userAgent:                "link-preview/1.0",
		ignoreOpenGraphVideoHTML: false,
	}
	return &defaultConfig
}

func (c *Config) WithMaxRequests(max int) *Config {
	c.maxRequests = max
	return c
}

func (c *Config) WithFollowRedirects(follow bool) *Config {
	c.followRedirects = follow
	return c
}

func (c *Config) WithMaxRedirects(max int) *Config {
	c.maxRedirects = max
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithOpenTimeout(timeout time.Duration) *Config {
	c.openTimeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithIgnoreOpenGraphVideoHTML(ignore bool) *Config {
	c.ignoreOpenGraphVideoHTML = ignore
	return c
}

func (c *Config) WithHTTPClient(client fetch.Client) *Config {
	c.httpClient = client
	return c
}

func (c *Config) WithProviderDirectory(directory providers.Directory) *Config {
	c.directory = directory
	return c
}

func (c *Config) WithErrorHandler(handler func(error)) *Config {
	c.errorHandler = handler
	return c
}

func (c *Config) WithLogger(logger *zap.Logger) *Config {
	c.logger = logger
	return c
}

func (c *Config) Build() (Config, error) {
	if c.maxRequests <= 0 {
		return Config{}, fmt.Errorf("%w: maxRequests must be positive", ErrInvalidConfig)
	}
	if c.maxRedirects < 0 {
		return Config{}, fmt.Errorf("%w: maxRedirects must not be negative", ErrInvalidConfig)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.openTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: openTimeout must be positive", ErrInvalidConfig)
	}
	return *c, nil
}

func (c Config) MaxRequests() int {
	return c.maxRequests
}

func (c Config) FollowRedirects() bool {
	return c.followRedirects
}

func (c Config) MaxRedirects() int {
	return c.maxRedirects
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) OpenTimeout() time.Duration {
	return c.openTimeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) IgnoreOpenGraphVideoHTML() bool {
	return c.ignoreOpenGraphVideoHTML
}
