package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/traitgame/similar-backend/internal/client/api"
	"github.com/traitgame/similar-backend/internal/client/session"
	"github.com/traitgame/similar-backend/internal/client/storage"
	"github.com/traitgame/similar-backend/internal/logger"
)

type Config struct {
	apiURL   string
	apiKey   string
	stateDir string
	logMode  string
}

// validate enforces the two required remote-store values before anything
// else runs.
func (c *Config) validate() error {
	if c.apiKey == "" {
		return errors.New("--api-key is required (env: SIMILAR_API_KEY)")
	}
	u, err := url.Parse(c.apiURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid --api-url %q (env: SIMILAR_API_URL)", c.apiURL)
	}
	return nil
}

// store opens the persistent state directory, falling back to a no-op store
// when none is available so the game still runs, just without persistence.
func (c *Config) store(log *logger.Logger) storage.Store {
	dir := c.stateDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			log.Warn("No config directory available, state will not persist", "error", err)
			return storage.NoopStore{}
		}
		dir = filepath.Join(base, "similar")
	}
	fs, err := storage.NewFileStore(dir)
	if err != nil {
		log.Warn("State directory unavailable, state will not persist", "dir", dir, "error", err)
		return storage.NoopStore{}
	}
	return fs
}

func (c *Config) client(log *logger.Logger, store storage.Store) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL: c.apiURL,
		APIKey:  c.apiKey,
		Session: session.NewProvider(store),
		Log:     log,
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SIMILAR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "rater",
		Short:         "Rate the similarity of trait pairs from the terminal.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.apiURL, "api-url", "http://localhost:8080", "base URL of the similar server (env: SIMILAR_API_URL)")
	fs.StringVar(&cfg.apiKey, "api-key", "", "API key for the similar server (env: SIMILAR_API_KEY)")
	fs.StringVar(&cfg.stateDir, "state-dir", "", "directory for persisted game state (env: SIMILAR_STATE_DIR)")
	fs.StringVar(&cfg.logMode, "log-mode", "production", "logger mode (env: SIMILAR_LOG_MODE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(newRateCmd(cfg))
	cmd.AddCommand(newStatsCmd(cfg))

	return cmd
}

func main() {
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
