package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// log is shared by every subcommand, configured once in PersistentPreRunE.
// Grounded on the teacher's cmd/cli/cmd package-level logger, adapted to
// logrus since SPEC_FULL.md commits this module to that library rather
// than the teacher's own utils.Logger wrapper.
var log = logrus.New()

var (
	cfgFile   string
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "cia-solve",
	Short: "Round relaxed multi-control trajectories to binary ones",
	Long: `cia-solve solves the Combinatorial Integral Approximation problem:
given a relaxed (fractional) multi-control trajectory, it searches for a
binary trajectory minimizing the worst-case deviation between the two,
subject to switch-count, dwell-time and forbidden-transition constraints.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.SetOutput(os.Stderr)
		switch {
		case verbosity >= 2:
			log.SetLevel(logrus.DebugLevel)
		case verbosity == 1:
			log.SetLevel(logrus.InfoLevel)
		default:
			log.SetLevel(logrus.ErrorLevel)
		}

		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return fmt.Errorf("reading config file %q: %w", cfgFile, err)
				}
				log.Warnf("config file %q not found, using flag defaults", cfgFile)
			}
		}
		viper.AutomaticEnv()
		return nil
	},
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, overrides flag defaults)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging verbosity (-v, -vv)")
}

// BinName returns the executable's invocation name, used in usage text.
func BinName() string {
	return rootCmd.Name()
}
