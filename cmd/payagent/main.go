package main

import (
	"fmt"
	"os"

	"github.com/payagent/payagent/internal/config"
	"github.com/payagent/payagent/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "payagent",
	Short: "PayAgent - natural-language payments with a confirmation gate",
	Long: `PayAgent turns natural-language commands ("send 50 USDC to 0xABC")
into settlement-layer calls, holding monetarily sensitive actions
behind an explicit confirmation step.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		if closeLogs, err := logging.Setup(logging.DefaultConfig(verbose)); err != nil {
			logger.WithError(err).Warn("Failed to set up component logging")
		} else {
			cobra.OnFinalize(func() { closeLogs() })
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load config, using defaults")
			cfg = config.Default()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.payagent/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`PayAgent {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(statusCmd)
}
