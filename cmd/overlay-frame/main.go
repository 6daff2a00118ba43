package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/overlay/config"
)

var cmdMain = &cobra.Command{
	Use:   "overlay-frame",
	Short: "Write and read overlay message frames",
	Run:   printUsageAndExit1,
}

var flagMain struct {
	ConfigFile string
}

var configFlags = config.Default().Flags()

func init() {
	cmdMain.PersistentFlags().StringVarP(&flagMain.ConfigFile, "config", "c", "", "Configuration file (TOML)")
	cmdMain.PersistentFlags().AddFlagSet(configFlags)
}

func main() {
	_ = cmdMain.Execute()
}

func loadConfig() (*config.Config, *slog.Logger) {
	cfg, err := config.Load(flagMain.ConfigFile, configFlags)
	checkf(err, "load configuration")

	logger, err := cfg.NewLogger(os.Stderr)
	checkf(err, "create logger")
	return cfg, logger.With("module", "overlay-frame")
}

var (
	typeColor  = color.New(color.FgCyan)
	sizeColor  = color.New(color.FgGreen)
	errorColor = color.New(color.FgRed)
)

func printUsageAndExit1(cmd *cobra.Command, args []string) {
	_ = cmd.Usage()
	os.Exit(1)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, errorColor.Sprint("Error: ")+format+"\n", args...)
	os.Exit(1)
}

func check(err error) {
	if err != nil {
		fatalf("%v", err)
	}
}

func checkf(err error, format string, otherArgs ...interface{}) {
	if err != nil {
		fatalf(format+": %v", append(otherArgs, err)...)
	}
}
