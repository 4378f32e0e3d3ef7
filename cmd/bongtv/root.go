// Command bongtv is a terminal client for the bong.tv web PVR: browse the
// guide, search broadcasts, and manage recordings.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/tvheim/bongtv/internal/bong"
	"github.com/tvheim/bongtv/internal/config"
	"github.com/tvheim/bongtv/internal/ratelimit"
	"github.com/tvheim/bongtv/internal/service"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagHost    string
	flagTimeout time.Duration
	flagDebug   bool
)

// cfg and logger are initialized by the persistent pre-run for every command.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bongtv",
	Short: "Terminal client for the bong.tv web PVR",
	Long: `bongtv talks to the bong.tv web service: browse the electronic program
guide, search broadcasts across channels, and schedule, list, or delete
recordings in your personal recording area.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "Provider endpoint (default from config)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-call timeout (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(guideCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recordingsCmd)
	rootCmd.AddCommand(quotaCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the configuration and sets up logging: defaults < config
// file < environment < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagHost != "" {
		cfg.Provider.Host = flagHost
	}
	if flagTimeout > 0 {
		cfg.Provider.Timeout = flagTimeout
	}

	if flagDebug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger, err = config.SetupLogger(&cfg.Logging)
		if err != nil {
			// logging must never block the actual command
			logger = config.NullLogger()
		}
	}
	return nil
}

// newSession builds the provider session from the loaded configuration:
// a cookie session when a cookie is configured, otherwise a credential one.
func newSession() (*bong.Session, error) {
	sessionCfg := bong.SessionConfig{
		BaseURL:    cfg.Provider.Host,
		CookieDir:  cfg.Provider.CookieDir,
		Timeout:    cfg.Provider.Timeout,
		HTTPClient: &http.Client{},
		Gate:       ratelimit.NewGate(cfg.Provider.CallDelay),
		Logger:     logger,
	}
	// manual clients must not follow redirects either
	sessionCfg.HTTPClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	if cfg.Auth.Cookie != "" {
		return bong.NewCookieSession(cfg.Auth.Cookie, sessionCfg)
	}
	if cfg.Auth.CookieFile != "" {
		return bong.NewCookieSessionFromFile(cfg.Auth.CookieFile, sessionCfg)
	}
	creds := bong.Credentials{Username: cfg.Auth.Username, Password: cfg.Auth.Password}
	s, err := bong.NewSession(creds, sessionCfg)
	if err != nil {
		return nil, fmt.Errorf("no account configured, run 'bongtv login' first: %w", err)
	}
	return s, nil
}

// client is built once per invocation so every command shares one session
// and one rate gate.
var client *bong.Client

// newClient wires the provider client, including the configured series-title
// pattern.
func newClient() (*bong.Client, error) {
	if client != nil {
		return client, nil
	}
	session, err := newSession()
	if err != nil {
		return nil, err
	}
	c := bong.NewClient(session, logger)
	if p := cfg.Guide.TVShowPattern; p != "" {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid guide.tvshow_pattern: %w", err)
		}
		c.SetTVShowPattern(re)
	}
	client = c
	return client, nil
}

func newGuideFor(client *bong.Client) *service.Guide {
	return service.NewGuide(client, logger)
}

func newSpaceFor(client *bong.Client) *service.Space {
	return service.NewSpace(client, logger)
}

func newGuide() (*service.Guide, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	return newGuideFor(client), nil
}

func newSpace() (*service.Space, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	return newSpaceFor(client), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("bongtv", Version)
	},
}
