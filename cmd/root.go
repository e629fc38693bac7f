package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	quiet   bool
	verbose bool
	noColor bool
)

// configKeys are the flags that may also be set from a config file.
var configKeys = []string{"workers", "indent", "ext", "recursive", "lenient", "sample", "top"}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkmine",
	Short: "Extract, combine and query URL references in text corpora",
	Long: `Linkmine mines URL references out of a corpus of plain-text documents
(typically the text of scientific papers) and manages the resulting JSON
collections.

A typical workflow converts PDFs to text, extracts URLs from each source,
combines the per-source collections and then searches or summarizes them:

  linkmine convert pdfs/ texts/
  linkmine extract texts/ web.json
  linkmine extract --lenient texts/ internet.json
  linkmine combine web.json internet.json -o combined.json
  linkmine search combined.json doi
  linkmine count combined.json --detailed`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file providing flag defaults (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet output (suppress status messages and warnings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig reads the config file given with --config, if any. No other
// location or environment variable is consulted.
func initConfig(cmd *cobra.Command, _ []string) error {
	if noColor {
		color.NoColor = true
	}

	if cfgFile == "" {
		return nil
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}

	verbosef(cmd, "Using config file: %s\n", viper.ConfigFileUsed())

	return applyConfig(cmd)
}

// applyConfig copies config file values into the running command's flags
// that were not set on the command line.
func applyConfig(cmd *cobra.Command) error {
	for _, key := range configKeys {
		flag := cmd.Flags().Lookup(key)
		if flag == nil || flag.Changed || !viper.IsSet(key) {
			continue
		}

		value := viper.GetString(key)
		if key == "ext" {
			value = strings.Join(viper.GetStringSlice(key), ",")
		}

		if err := cmd.Flags().Set(key, value); err != nil {
			return fmt.Errorf("invalid value for %q in %s: %w", key, cfgFile, err)
		}
	}

	return nil
}
