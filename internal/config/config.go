// Package config loads the server and CLI settings from an optional YAML
// file and FORMROWS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FORMROWS_SERVER_ADDR.
const EnvPrefix = "FORMROWS"

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Session SessionConfig `mapstructure:"session"`
	// Layouts lists layout files or glob patterns (YAML or TOML) loaded next
	// to the built-in forms.
	Layouts []string `mapstructure:"layouts" validate:"dive,required"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required,listen_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Human bool   `mapstructure:"human"`
}

type ThemeConfig struct {
	// Name selects the theme manifest.
	Name string `mapstructure:"name"`
	// SystemDark is the fallback preference when nothing is saved.
	SystemDark bool `mapstructure:"system_dark"`
	// PreferencesFile persists the CLI's preference.
	PreferencesFile string `mapstructure:"preferences_file"`
	// CookieMaxAge bounds the browser preference cookie.
	CookieMaxAge time.Duration `mapstructure:"cookie_max_age" validate:"gte=0"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl" validate:"gte=0"`
	PruneInterval time.Duration `mapstructure:"prune_interval" validate:"gte=0"`
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("listen_addr", func(fl validator.FieldLevel) bool {
			_, port, err := net.SplitHostPort(fl.Field().String())
			if err != nil {
				return false
			}
			n, err := strconv.Atoi(port)
			return err == nil && n >= 0 && n <= 65535
		})
		validateInst = v
	})
	return validateInst
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Theme: ThemeConfig{
			CookieMaxAge: 365 * 24 * time.Hour,
		},
		Session: SessionConfig{
			TTL:           2 * time.Hour,
			PruneInterval: 5 * time.Minute,
		},
	}
}

// Load reads path (optional) and the environment into a validated Config.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.human", d.Log.Human)
	v.SetDefault("theme.name", d.Theme.Name)
	v.SetDefault("theme.system_dark", d.Theme.SystemDark)
	v.SetDefault("theme.preferences_file", d.Theme.PreferencesFile)
	v.SetDefault("theme.cookie_max_age", d.Theme.CookieMaxAge)
	v.SetDefault("session.ttl", d.Session.TTL)
	v.SetDefault("session.prune_interval", d.Session.PruneInterval)
}

// Validate checks cfg against its struct tags.
func Validate(cfg Config) error {
	if err := validatorInstance().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
