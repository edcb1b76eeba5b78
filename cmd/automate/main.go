package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hud-govt-nz/hud-automate/internal/cli/cmd"
	"github.com/hud-govt-nz/hud-automate/internal/common"
)

func main() {
	common.InitConf()
	common.InitLog()
	defer common.GetLogger().Sync()

	rootCmd := &cobra.Command{
		Use:   "automate",
		Short: "Run the data pipeline and report the outcome",
	}
	cmd.RegisterCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
