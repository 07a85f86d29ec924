// Package cli implements the lexanno command-line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lexanno",
	Short: "Lexanno - semantic grouping and categorization of legal-argument XML",
	Long: `Lexanno annotates legal-text XML documents using a text-completion backend.

The grouping pass partitions a document's sentences into semantically
coherent groups and wraps them in ArgumentGroup containers. The
categorization pass labels each group with one of six constitutional-argument
modalities: Historical, Textual, Structural, Prudential, Doctrinal, Ethical.

Every run writes an annotated XML file together with a JSON summary; the pair
is written atomically, so a failed run leaves no inconsistent outputs.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Lexanno.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("lexanno v0.2.1")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.lexanno/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.lexanno")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match LEXANNO_*; nested keys map
	// dots to underscores (backend.model -> LEXANNO_BACKEND_MODEL)
	viper.SetEnvPrefix("LEXANNO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
