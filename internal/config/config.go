package config

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/csheth/postdeck/internal/compose"
)

// Config aggregates runtime configuration for postdeck.
type Config struct {
	Backend   BackendConfig
	Poll      PollConfig
	Log       LogConfig
	UI        UIConfig
	Platforms PlatformConfig
}

// BackendConfig points at the posting backend.
type BackendConfig struct {
	BaseURL       string        `env:"POSTDECK_BASE_URL,default=http://localhost:5000"`
	SubmitPath    string        `env:"POSTDECK_SUBMIT_PATH,default=/"`
	SessionCookie string        `env:"POSTDECK_SESSION_COOKIE"`
	HTTPTimeout   time.Duration `env:"POSTDECK_HTTP_TIMEOUT,default=2m"`
}

// PollConfig tunes status polling.
type PollConfig struct {
	Attempts int           `env:"POSTDECK_POLL_ATTEMPTS,default=20"`
	Interval time.Duration `env:"POSTDECK_POLL_INTERVAL,default=3s"`
}

// LogConfig configures the structured log file.
type LogConfig struct {
	Level string `env:"POSTDECK_LOG_LEVEL,default=info"`
	File  string `env:"POSTDECK_LOG_FILE"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	TZ         string `env:"POSTDECK_TZ"`
	ThemeFile  string `env:"POSTDECK_THEME_FILE"`
	Signatures string `env:"POSTDECK_SIGNATURES"`
}

// PlatformConfig preselects publishing targets.
type PlatformConfig struct {
	Publish         []string `env:"POSTDECK_PUBLISH,default=tg"`
	TelegramChannel string   `env:"POSTDECK_CHANNEL_TG"`
	VKGroup         string   `env:"POSTDECK_CHANNEL_VK"`
	OKGroup         string   `env:"POSTDECK_CHANNEL_OK"`
	MaxChat         string   `env:"POSTDECK_CHANNEL_MAX"`
	VKLayout        string   `env:"POSTDECK_VK_LAYOUT,default=grid"`
}

// Load reads a .env file when present and then the environment.
func Load(ctx context.Context) (Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves configuration from lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, lookuper); err != nil {
		return Config{}, fmt.Errorf("parsing env vars: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	if c.Poll.Attempts <= 0 {
		return fmt.Errorf("POSTDECK_POLL_ATTEMPTS must be positive, got %d", c.Poll.Attempts)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("POSTDECK_POLL_INTERVAL must be positive, got %s", c.Poll.Interval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for _, p := range c.Platforms.Publish {
		if !knownPlatform(compose.Platform(strings.TrimSpace(p))) {
			return fmt.Errorf("unknown platform %q in POSTDECK_PUBLISH", p)
		}
	}
	return nil
}

// Location resolves POSTDECK_TZ, defaulting to the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.UI.TZ == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.TZ)
	if err != nil {
		return nil, fmt.Errorf("invalid POSTDECK_TZ %q: %w", c.UI.TZ, err)
	}
	return loc, nil
}

// Signatures splits the configured signatures on ';'.
func (c Config) Signatures() []string {
	var out []string
	for _, s := range strings.Split(c.UI.Signatures, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Targets builds the initial platform selection.
func (c Config) Targets() compose.Platforms {
	channels := map[compose.Platform]string{
		compose.Telegram: c.Platforms.TelegramChannel,
		compose.VK:       c.Platforms.VKGroup,
		compose.OK:       c.Platforms.OKGroup,
		compose.Max:      c.Platforms.MaxChat,
	}
	out := compose.Platforms{VKLayout: c.Platforms.VKLayout, Targets: map[compose.Platform]compose.Target{}}
	for _, p := range compose.AllPlatforms {
		out.Targets[p] = compose.Target{Channel: channels[p]}
	}
	for _, name := range c.Platforms.Publish {
		p := compose.Platform(strings.TrimSpace(name))
		target := out.Targets[p]
		target.Publish = true
		out.Targets[p] = target
	}
	return out
}

func knownPlatform(p compose.Platform) bool {
	for _, known := range compose.AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}
