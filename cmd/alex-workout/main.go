// Command alex-workout manages the spoken guidance cache and drives
// voice-guided countdown workouts from the terminal.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/systomic777/alex-workout/guide"
	"github.com/systomic777/alex-workout/guide/cache"
	"github.com/systomic777/alex-workout/guide/engines"
)

var (
	// Version as provided by goreleaser.
	Version = ""

	configFile    string
	exercisesFile string
	verbose       bool

	rootCmd = &cobra.Command{
		Use:          "alex-workout",
		Short:        "Voice-guided workout countdowns with cached speech",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default from user config dirs)")
	rootCmd.PersistentFlags().StringVarP(&exercisesFile, "exercises", "e", "exercises.yml", "exercise list (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(statusCmd, generateCmd, clearCmd, runCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "alex-workout")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "alex-workout")}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("workout")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("could not read config", "err", err)
		}
	}
}

// loadConfig resolves the effective guidance configuration from the
// config file (explicit or discovered) and the environment.
func loadConfig() (guide.Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return guide.Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return guide.LoadConfigFromViper()
}

// openCache opens the guidance cache at the configured location, or
// the user data directory by default.
func openCache(cfg guide.Config, engine engines.Engine) (*cache.Cache, error) {
	path := cfg.CachePath
	if path == "" {
		scope := gap.NewScope(gap.User, "alex-workout")
		var err error
		path, err = scope.DataPath("guidance.db")
		if err != nil {
			return nil, fmt.Errorf("resolve cache path: %w", err)
		}
	}
	store, err := cache.Open(path, cfg.CacheCompression)
	if err != nil {
		return nil, err
	}
	log.Debug("guidance cache opened", "path", path)
	return cache.New(store, engine), nil
}
