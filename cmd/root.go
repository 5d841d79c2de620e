package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitrise-io/pr-review-bot/common"
	"github.com/bitrise-io/pr-review-bot/logger"
	"github.com/bitrise-io/pr-review-bot/pipeline"
	"github.com/spf13/cobra"
)

const usage = "pr-review-bot <owner/name> <pr-number>"

var (
	// Command line flags
	logLevel   string
	logFile    string
	configPath string
	envFile    string
	provider   string
	model      string
	dryRun     bool

	// Settings resolved in the pre-run hook
	settings common.Settings
)

var rootCmd = &cobra.Command{
	Use:   usage,
	Short: "PR Review Bot - posts an AI review of a pull request as a comment",
	Long: `PR Review Bot fetches the changed files of a GitHub pull request, asks a
chat completion model for a structured review, and posts the answer as a
comment on the pull request.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return &common.UsageError{Message: fmt.Sprintf("expected 2 arguments, got %d. Usage: %s", len(args), usage)}
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var source common.SettingsSource
		var err error
		settings, source, err = common.LoadSettings(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, &settings)

		// Initialize logger once for the whole process
		logger.Init(settings.Log.Level, settings.Log.File)
		logger.Debugf("Log level set to: %s", settings.Log.Level)
		settings.LogSummary(source)
		return nil
	},
	RunE: runReview,
}

func applyFlags(cmd *cobra.Command, s *common.Settings) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		s.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		s.Log.File = logFile
	}
	if flags.Changed("provider") {
		s.LLM.Provider = provider
	}
	if flags.Changed("model") {
		s.LLM.Model = model
	}
}

func runReview(cmd *cobra.Command, args []string) error {
	ref, err := common.ParsePullRequestRef(args[0], args[1])
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(pipeline.Options{
		Settings:       settings,
		EnvFile:        envFile,
		RequireEnvFile: cmd.Flags().Changed("env-file"),
		DryRun:         dryRun,
	})

	result, err := runner.Run(cmd.Context(), ref)
	if err != nil {
		return &reportedError{err: err}
	}

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), result.Review)
	}
	return nil
}

// reportedError marks errors that were already logged by the pipeline
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the root command with the process arguments and returns the exit code
func Execute() int {
	return ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the root command with the given arguments and returns the exit code
func ExecuteArgs(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return common.ExitOK
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		logger.Errorf("%v", err)
	}
	return common.ExitCode(err)
}

func init() {
	// Add persistent flags that will be available to all subcommands
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Set the logging level (debug, info, warn, error, dpanic, panic, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", common.DefaultLogFile,
		"File the log is appended to, empty to log to stdout only")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Settings YAML file (defaults to review.bot.yml in the working directory, if present)")

	rootCmd.Flags().StringVar(&envFile, "env-file", common.DefaultEnvFile, "File to load environment variables from before reading credentials")
	rootCmd.Flags().StringVarP(&provider, "provider", "p", common.ProviderOpenRouter, "LLM provider to use (openrouter, openai, anthropic)")
	rootCmd.Flags().StringVarP(&model, "model", "m", "", "LLM model to use for the review (defaults to "+common.DefaultModel+" on openrouter)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the review instead of posting it to the pull request")
}
