package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hud-govt-nz/hud-automate/internal/blob"
	"github.com/hud-govt-nz/hud-automate/internal/common"
	"github.com/hud-govt-nz/hud-automate/internal/notify"
	"github.com/hud-govt-nz/hud-automate/internal/orchestrator"
	"github.com/hud-govt-nz/hud-automate/internal/runner"
	"github.com/hud-govt-nz/hud-automate/internal/server"
	"github.com/hud-govt-nz/hud-automate/internal/server/dao"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP trigger and history server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := common.GetConfig()

	if err := dao.Init(cfg.DBPath); err != nil {
		return fmt.Errorf("open history store: %w", err)
	}

	store, err := blob.NewMinioStore(cfg.ContainerURL, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		return err
	}

	orc := orchestrator.New(
		runner.NewClient(cfg.RunnerAddr),
		store,
		notify.New(cfg.WebhookURL),
		dao.NewRunExecDao(),
	)

	r := server.NewRouter(orc, cfg.WebhookSecret)
	common.GetLogger().Info("server listening")
	return r.Run(cfg.ServerAddr)
}
