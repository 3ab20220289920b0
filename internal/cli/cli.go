// Package cli implements the aletheia command tree.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aletheia-intel/aletheia/config"
	"github.com/aletheia-intel/aletheia/internal/display"
	"github.com/aletheia-intel/aletheia/internal/logging"
	"github.com/aletheia-intel/aletheia/internal/report"
	"github.com/aletheia-intel/aletheia/internal/server"
)

const version = "0.1.0"

// NewRootCmd builds the aletheia command tree.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "aletheia",
		Short: "Aletheia - multi-agent market intelligence",
		Long: `Aletheia runs a team of LLM agents that hunt market narratives,
collect quantitative data, analyze sentiment and risk, and synthesize
intelligence reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			logging.Setup(cfg.Debug)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return cfg.EnsureDirectories()
		},
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newChatCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			// Hot-reload the .env file while serving. Provider and
			// store clients are built at startup; log level and run
			// limits pick up changes immediately.
			mgr := config.NewManager(cfg)
			if err := mgr.Watch(ctx, func(next *config.Config) {
				logging.Setup(next.Debug)
				a.applyConfig(next)
			}); err != nil {
				log.Warn().Err(err).Msg("env watcher unavailable")
			}

			var reports server.ReportStore
			if a.store != nil {
				reports = a.store
			}
			srv := server.New(cfg.ListenAddr, a.orchestrator, reports, a.healthChecks(), a.metrics)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				return srv.Shutdown(context.Background())
			}
		},
	}
	return cmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [directive]",
		Short: "Run one analysis and print the report",
		Long: `Run the full analysis pipeline for a directive.
Example: aletheia analyze "assess AI capex sustainability for NVDA and AMD"`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			directive := strings.TrimSpace(strings.Join(args, " "))
			if directive == "" {
				prompted, err := PromptForDirective()
				if err != nil {
					return err
				}
				directive = prompted
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Println(display.Banner())
			rep, err := a.orchestrator.Run(ctx, directive)
			if err != nil {
				fmt.Println(display.RenderError(err))
				return err
			}
			fmt.Println(display.RenderReport(rep))

			if export, _ := cmd.Flags().GetBool("export"); export {
				path, err := report.WriteMarkdown(cfg.ResultsDir, rep)
				if err != nil {
					return err
				}
				fmt.Printf("saved to %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().Bool("export", false, "also write the report as markdown under the results directory")
	return cmd
}

func newChatCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the strategist interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Println(display.Banner())
			fmt.Println(`Ask about markets, or say "exit" to quit. Deep questions trigger a full analysis run.`)

			sessionID := uuid.NewString()
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				answer, err := a.strategist.Chat(ctx, sessionID, line)
				if err != nil {
					fmt.Println(display.RenderError(err))
					continue
				}
				fmt.Println(answer)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("aletheia %s\n", version)
		},
	}
}
