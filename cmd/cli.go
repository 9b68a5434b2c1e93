// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"algcore/internal/config"
	applog "algcore/internal/log"
	"algcore/pkg/build"
)

// Execute parses os.Args and runs the selected command.
func Execute(ctx context.Context) error {
	root := NewRootCommand(os.Stdout)
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}

// globalOptions holds the flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	byteOrder  string
	debug      bool

	cfg *config.Config
}

// NewRootCommand builds the command tree. Command output goes to out; logs go
// to stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	buildInfo := build.Get()
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	rootCmd.SetOut(out)

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Configuration
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to a YAML config file. Defaults to ./algcore.yaml or ./config.yaml if present.")
	rootCmd.PersistentFlags().StringVarP(&opts.byteOrder, "byte-order", "b", config.DefaultByteOrder,
		"Byte order of multi-byte frame fields (big, little)")

	// Debug Configuration
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "verbose", "v", false,
		"Show debug output")

	rootCmd.AddCommand(newReplayCommand(opts))
	rootCmd.AddCommand(newDecodeCommand(opts))
	rootCmd.AddCommand(newConvertCommand())

	return rootCmd
}

// load reads the config file and lets explicitly set flags override it.
func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("byte-order") {
		cfg.Frame.ByteOrder = o.byteOrder
	}
	if flags.Changed("verbose") {
		cfg.Debug = o.debug
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)

	o.cfg = cfg
	return nil
}

func (o *globalOptions) loaded() (*config.Config, error) {
	if o.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return o.cfg, nil
}
