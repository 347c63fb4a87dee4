// Package main provides the rma CLI entry point: the interactive RMA intake
// form plus one-shot classification and config inspection commands.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rmaintake/internal/assistant"
	"rmaintake/internal/config"
	"rmaintake/internal/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	apiKey    string
	model     string
	workspace string
	timeout   time.Duration

	// classify flags
	parallel int

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "rma",
	Short: "RMA intake - returns and claims capture form",
	Long: `rma captures a product return / claim (RMA) in four steps:
  1. Datos Generales
  2. Productos
  3. Tipificación
  4. Evidencia y Solución

With a Gemini API key configured, observations can be classified into a
root-cause category from the Tipificación step (ctrl+g).

Run without arguments to start the interactive form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveWorkspace(); err != nil {
			return err
		}
		if err := config.LoadDotEnv(workspace); err != nil {
			return err
		}
		if err := logging.Initialize(workspace); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		if err := logging.InitAudit(); err != nil {
			logging.BootWarn("audit disabled: %v", err)
		}
		logging.Boot("rma starting: command=%s workspace=%s", cmd.Name(), workspace)

		// Skip logger init for interactive mode (it has its own UI)
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAudit()
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runForm(cmd)
	},
}

// classifyCmd classifies observation texts without the form
var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Suggest a root-cause category for one or more observation texts",
	Long: `Sends each argument to the classification assistant and prints the
suggested category and reasoning. Texts are classified in parallel.

Example:
  rma classify "las bolsas llegaron con olor a solvente" "faltan 3 bultos"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration (API key masked)",
	RunE:  showConfig,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Gemini model (default: "+config.DefaultModel+")")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Classification timeout (default: 30s)")

	classifyCmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "Maximum concurrent classification calls")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveWorkspace() error {
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		workspace = wd
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("invalid workspace %q: %w", workspace, err)
	}
	workspace = abs
	return nil
}

// loadConfig reads the workspace config and applies flag overrides, which
// take precedence over file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path(workspace))
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.Assistant.APIKey = apiKey
	}
	if model != "" {
		cfg.Assistant.Model = model
	}
	if timeout > 0 {
		cfg.Assistant.Timeout = timeout.String()
	}
	logging.Config("config loaded: model=%s timeout=%v key=%v", cfg.GetModel(), cfg.GetAssistantTimeout(), cfg.HasAPIKey())
	return cfg, nil
}

// newAssistant builds the classifier for cfg. A session id ties its audit
// events to the caller's.
func newAssistant(ctx context.Context, cfg *config.Config, audit *logging.AuditLogger) (*assistant.Assistant, error) {
	a, err := assistant.New(ctx, assistant.Config{
		APIKey:  cfg.Assistant.APIKey,
		Model:   cfg.GetModel(),
		BaseURL: cfg.Assistant.BaseURL,
		Timeout: cfg.GetAssistantTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return a.WithAudit(audit), nil
}

func newSession() *logging.AuditLogger {
	a := logging.NewAuditLogger(uuid.NewString())
	a.SessionStart(workspace)
	return a
}
