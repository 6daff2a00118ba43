package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cmdConfig = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run:   printConfig,
}

func init() {
	cmdMain.AddCommand(cmdConfig)
}

func printConfig(*cobra.Command, []string) {
	cfg, _ := loadConfig()
	check(cfg.Write(os.Stdout))
}
