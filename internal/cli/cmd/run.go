package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hud-govt-nz/hud-automate/internal/blob"
	"github.com/hud-govt-nz/hud-automate/internal/card"
	"github.com/hud-govt-nz/hud-automate/internal/common"
	"github.com/hud-govt-nz/hud-automate/internal/notify"
	"github.com/hud-govt-nz/hud-automate/internal/orchestrator"
	"github.com/hud-govt-nz/hud-automate/internal/runner"
	"github.com/hud-govt-nz/hud-automate/internal/server/dao"
	"github.com/hud-govt-nz/hud-automate/pkg/api"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run and post the status notification",
		RunE:  runRun,
	}

	cmd.Flags().String("run-name", "", "name of this run, used in upload paths and the notification")
	cmd.Flags().String("project", "", "project name, first segment of upload paths")
	cmd.Flags().String("container-url", "", "blob container URL (scheme://host/bucket), defaults to CONTAINER_URL")
	cmd.Flags().StringArray("target", nil, "artifact to upload, as name.ext (repeatable)")
	cmd.Flags().StringArray("folder", nil, "local folder to upload in full (repeatable)")
	cmd.Flags().StringArray("ping", nil, "recipient to mention, as Name:id (repeatable)")
	cmd.Flags().Bool("invalidate", false, "discard all cached task outputs before executing")
	cmd.Flags().Bool("forced", false, "run even when the situation report shows nothing pending")
	cmd.Flags().String("manifest", "", "YAML manifest describing the run; flags override its fields")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	params, containerURL, err := collectParams(cmd)
	if err != nil {
		return err
	}
	if params.RunName == "" || params.ProjectName == "" {
		return fmt.Errorf("--run-name and --project are required")
	}

	cfg := common.GetConfig()
	if containerURL == "" {
		containerURL = cfg.ContainerURL
	}
	store, err := blob.NewMinioStore(containerURL, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		return err
	}

	var recorder orchestrator.Recorder
	if cfg.DBPath != "" {
		if err := dao.Init(cfg.DBPath); err != nil {
			fmt.Printf("Warning: run history disabled - %v\n", err)
		} else {
			recorder = dao.NewRunExecDao()
		}
	}

	orc := orchestrator.New(
		runner.NewClient(cfg.RunnerAddr),
		store,
		notify.New(cfg.WebhookURL),
		recorder,
	)
	return orc.Run(context.Background(), params)
}

func collectParams(cmd *cobra.Command) (orchestrator.Params, string, error) {
	var params orchestrator.Params
	containerURL := ""

	if manifestPath, _ := cmd.Flags().GetString("manifest"); manifestPath != "" {
		content, err := os.ReadFile(manifestPath)
		if err != nil {
			return params, "", fmt.Errorf("read manifest: %w", err)
		}
		m, err := api.ParseManifest(content)
		if err != nil {
			return params, "", fmt.Errorf("parse manifest: %w", err)
		}
		params.RunName = m.RunName
		params.ProjectName = m.Project
		params.Invalidate = m.Invalidate
		params.Forced = m.Forced
		params.UploadFolders = m.Folders
		containerURL = m.ContainerURL
		for _, t := range m.Targets {
			params.UploadTargets = append(params.UploadTargets, orchestrator.Target{Name: t.Name, Ext: t.Ext})
		}
		for _, p := range m.Ping {
			params.Ping = append(params.Ping, card.Recipient{Name: p.Name, ID: p.ID})
		}
	}

	if v, _ := cmd.Flags().GetString("run-name"); v != "" {
		params.RunName = v
	}
	if v, _ := cmd.Flags().GetString("project"); v != "" {
		params.ProjectName = v
	}
	if v, _ := cmd.Flags().GetString("container-url"); v != "" {
		containerURL = v
	}
	if cmd.Flags().Changed("invalidate") {
		params.Invalidate, _ = cmd.Flags().GetBool("invalidate")
	}
	if cmd.Flags().Changed("forced") {
		params.Forced, _ = cmd.Flags().GetBool("forced")
	}
	if folders, _ := cmd.Flags().GetStringArray("folder"); len(folders) > 0 {
		params.UploadFolders = folders
	}

	if targets, _ := cmd.Flags().GetStringArray("target"); len(targets) > 0 {
		params.UploadTargets = nil
		for _, t := range targets {
			idx := strings.LastIndex(t, ".")
			if idx <= 0 || idx == len(t)-1 {
				return params, "", fmt.Errorf("target %q must look like name.ext", t)
			}
			params.UploadTargets = append(params.UploadTargets, orchestrator.Target{Name: t[:idx], Ext: t[idx+1:]})
		}
	}
	if pings, _ := cmd.Flags().GetStringArray("ping"); len(pings) > 0 {
		params.Ping = nil
		for _, p := range pings {
			name, id, found := strings.Cut(p, ":")
			if !found || name == "" || id == "" {
				return params, "", fmt.Errorf("ping %q must look like Name:id", p)
			}
			params.Ping = append(params.Ping, card.Recipient{Name: name, ID: id})
		}
	}

	return params, containerURL, nil
}
