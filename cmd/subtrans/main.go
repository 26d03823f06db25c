package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/subtrans/internal/cli"
	"codeberg.org/snonux/subtrans/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Config file and environment may override flag defaults
	flags.ContextLines = viper.GetInt("translate.context_lines")

	logger := cli.NewLogger(os.Stderr, viper.GetString("log.level"))
	proc := processor.NewProcessor(flags, logger)

	switch {
	case flags.ListModels:
		return proc.ListModels(ctx)

	case flags.Chat:
		return proc.RunChat(ctx)

	case flags.File != "":
		summary, err := proc.ProcessFile(ctx)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d cue(s) kept their original text\n", summary.Failed)
		}
		return nil

	case len(args) > 0:
		return proc.ProcessText(ctx, args[0])

	default:
		return cmd.Help()
	}
}
