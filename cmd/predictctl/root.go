package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/disease-predictor/internal/config"
	"github.com/disease-predictor/internal/domain"
)

// version is set via -ldflags at build time.
var version = "(devel)"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "predictctl",
		Short:        "Diabetes, heart disease and Parkinson's predictions",
		Long:         "predictctl runs the disease prediction models on patient measurements and writes the downloadable reports.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to config file (default: ./config.yaml)")
	root.PersistentFlags().Bool("verbose", false, "Log model loading and pipeline details to stderr")

	root.AddCommand(newDomainsCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newAuditCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "predictctl", version)
		},
	})

	return root
}

// loadConfig reads the configuration named by --config. Logs go to stderr so
// they never mix with command output.
func loadConfig(cmd *cobra.Command) (*domain.Config, *logrus.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	manager, err := config.NewManager(path)
	if err != nil {
		return nil, nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, nil, err
	}

	cfg := manager.GetConfig()
	cfg.Logging.Output = "stderr"
	cfg.Logging.Format = "text"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	} else {
		cfg.Logging.Level = "warn"
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return cfg, logger, nil
}
