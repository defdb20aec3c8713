// cmd/farmcal/main.go
//
// Entry point for farmcal. The default command launches the calendar
// TUI against the configured task service; `farmcal serve` runs the
// bundled service locally.

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agrimitra/farmcal/internal/agent"
	"github.com/agrimitra/farmcal/internal/config"
	"github.com/agrimitra/farmcal/internal/logging"
	"github.com/agrimitra/farmcal/internal/server"
	"github.com/agrimitra/farmcal/internal/tui"
)

var Version = "dev"

var configDir string

func main() {
	rootCmd := &cobra.Command{
		Use:     "farmcal",
		Short:   "Smart farming calendar with an AI schedule assistant",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.farmcal)")

	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	dir := configDir
	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	if err := config.InitDir(dir); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", dir, err)
	}
	return config.New(dir)
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the calendar TUI (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
}

func runTUI() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := tui.NewApp(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func serveCmd() *cobra.Command {
	var listenAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bundled task service",
		Long: `Run the REST task service the TUI talks to.

Tasks live in memory by default; set server.redis_addr in config.yaml
to persist them in redis. AI features activate when FARMCAL_API_KEY_1..3
carry valid keys.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logging.Setup()
			if closer, err := logging.TeeToFile(cfg.LogsDir(), "server.log"); err == nil {
				defer closer.Close()
			} else {
				log.Warnf("log file unavailable: %v", err)
			}
			addr := listenAddr
			if addr == "" {
				addr = cfg.ListenAddr()
			}

			var repo server.Repository = server.NewMemoryRepository()
			if cfg.RedisAddr() != "" {
				rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
				repo = server.NewRedisRepository(rc)
				log.Infof("task storage: redis at %s", cfg.RedisAddr())
			} else {
				log.Info("task storage: in-memory")
			}

			adv := agent.New(
				agent.WithBaseURL(cfg.AIEndpoint()),
				agent.WithModel(cfg.AIModel()),
			)
			if adv.Active() {
				log.Info("AI advisor: active")
			} else {
				log.Warn("AI advisor: inactive, check FARMCAL_API_KEY_1..3")
			}

			srv := server.New(repo, adv)
			log.Infof("listening on %s", addr)
			return srv.Start(addr)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides config)")
	return cmd
}
