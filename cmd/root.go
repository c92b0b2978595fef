// Package cmd is for command line interactions with the cellbouncer application
package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/Pollen-lab/cellbouncer/config"
	"github.com/Pollen-lab/cellbouncer/internal/speciesref"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)

	// settingsFile is an optional yaml, toml or json file of settings
	settingsFile string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "cellbouncer",
	Short: `Tools for demultiplexing single cell sequencing data.
Build species references from transcriptomes or annotated genomes`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(settingsFile); err != nil {
			return &speciesref.Error{Kind: speciesref.KindValidation, Err: err}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
//
// SIGINT and SIGTERM cancel the running command, which still cleans up
// after itself before the process exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		stderr.Printf("ERROR: %v", err)
		os.Exit(speciesref.ExitCode(err))
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (yaml, toml or json)")
	viper.BindPFlag("settings", RootCmd.PersistentFlags().Lookup("settings"))
}
