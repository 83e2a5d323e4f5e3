package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"suri/internal/config"
	"suri/internal/di"
	"suri/internal/logging"
	"suri/internal/pipeline"
	"suri/internal/server"
	"suri/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "suri",
		Short: "Turn captured snippets into actionable suggestions",
		Long:  "suri ingests captured text (voice transcripts, OCR output, notes, chat) and turns it into structured, executable action suggestions.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("model", false, "enable the learned classifier backend")
	root.PersistentFlags().String("model-url", config.DefaultModelBaseURL, "model backend base URL")
	root.PersistentFlags().Float64("threshold", config.DefaultFallbackThreshold, "confidence threshold below which the keyword fallback is used")
	root.PersistentFlags().Bool("json", false, "emit JSON instead of formatted output")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())
	return root
}

func initViper(cmd *cobra.Command) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.suri")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("SURI")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return viper.BindPFlags(cmd.Flags())
}

func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("model") {
		cfg.ModelEnabled, _ = cmd.Flags().GetBool("model")
	}
	if cmd.Flags().Changed("model-url") {
		cfg.ModelBaseURL, _ = cmd.Flags().GetString("model-url")
	}
	if cmd.Flags().Changed("threshold") {
		cfg.FallbackThreshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if strings.EqualFold(cfg.LogLevel, "debug") {
		logging.SetLevel(logging.DEBUG)
	} else {
		logging.SetLevel(logging.INFO)
	}
	return cfg, nil
}

func newAnalyzeCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Extract entities, classify intent and suggest actions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			container, err := di.BuildContainer(cfg, di.Options{})
			if err != nil {
				return err
			}
			defer cleanup(container)

			text := strings.Join(args, " ")
			analysis := container.Pipeline.Analyze(cmd.Context(), types.RawInput{
				Text:   text,
				Source: types.InputSource(source),
			})

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(analysis)
			}
			printAnalysis(analysis)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", string(types.SourceManual), "input source: voice|chat|manual|screenshot|location")
	return cmd
}

func newRunCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "run <text>",
		Short: "Analyze text and execute every suggested action",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			container, err := di.BuildContainer(cfg, di.Options{})
			if err != nil {
				return err
			}
			defer cleanup(container)

			text := strings.Join(args, " ")
			analysis := container.Pipeline.Analyze(cmd.Context(), types.RawInput{
				Text:   text,
				Source: types.InputSource(source),
			})
			printAnalysis(analysis)

			if len(analysis.Suggestions) == 0 {
				fmt.Println(gray("nothing to execute"))
				return nil
			}

			actions := make([]*types.Action, 0, len(analysis.Suggestions))
			for i := range analysis.Suggestions {
				actions = append(actions, &analysis.Suggestions[i])
			}

			fmt.Println(bold("\nExecuting..."))
			results := container.Executor.ExecuteBatch(cmd.Context(), actions, func(done, total int) {
				fmt.Printf("%s %d/%d\n", gray("progress"), done, total)
			})
			for _, r := range results {
				if r.Success {
					fmt.Printf("%s %s\n", green("✓"), r.ActionID)
				} else {
					fmt.Printf("%s %s: %s\n", red("✗"), r.ActionID, r.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", string(types.SourceManual), "input source: voice|chat|manual|screenshot|location")
	return cmd
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ServerAddr = addr
			}
			container, err := di.BuildContainer(cfg, di.Options{})
			if err != nil {
				return err
			}
			defer cleanup(container)

			srv := server.New(server.Config{
				Addr:       cfg.ServerAddr,
				EnableCORS: true,
			}, container.Pipeline, container.Executor, container.Scheduler, logging.NewComponentLogger("Server"))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()
			fmt.Printf("%s listening on %s\n", green("suri"), bold(cfg.ServerAddr))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func cleanup(container *di.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := container.Cleanup(ctx); err != nil {
		fmt.Fprintln(os.Stderr, gray("cleanup: "+err.Error()))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAnalysis(a pipeline.Analysis) {
	fmt.Printf("%s %s %s\n", bold("intent:"), cyan(string(a.Intent.Intent)), gray(fmt.Sprintf("(%.2f)", a.Intent.Confidence)))
	if a.Intent.UsedFallback {
		fmt.Println(gray("  classified by keyword fallback"))
	}

	if len(a.Entities) > 0 {
		fmt.Println(bold("entities:"))
		for _, e := range a.Entities {
			fmt.Printf("  %s %s %s %s\n", yellow(string(e.Type)), e.Value, gray("from"), gray(e.Raw))
		}
	}

	fmt.Printf("%s %d", bold("urgency:"), a.Temporal.Urgency)
	if a.Temporal.Deadline != nil {
		fmt.Printf(" %s %s", gray("deadline"), a.Temporal.Deadline.Format("2006-01-02 15:04"))
	}
	fmt.Println()

	if len(a.Suggestions) == 0 {
		fmt.Println(gray("no suggested actions"))
		return
	}
	fmt.Println(bold("suggestions:"))
	for _, s := range a.Suggestions {
		fmt.Printf("  %s [%s] %s %s\n", green("→"), s.Category, s.Title, gray(fmt.Sprintf("p%d", s.Priority)))
	}
}
