package cli

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jgoldverg/canopy/backend"
	"github.com/jgoldverg/canopy/backend/localfs"
	"github.com/jgoldverg/canopy/cli/output"
	"github.com/jgoldverg/canopy/internal"
)

func PlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run batches of tree and transfer steps from a plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(planValidateCommand())
	cmd.AddCommand(planRunCommand())
	return cmd
}

func planValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Parse a plan file and report problems without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadPlanDocument(args[0])
			if err != nil {
				return err
			}
			pterm.Success.Printfln("plan ok: %d steps against credential %q", len(doc.Steps), doc.Credential)
			return nil
		},
	}
}

func planRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <plan-file>",
		Short: "Execute the steps of a plan file over one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadPlanDocument(args[0])
			if err != nil {
				return err
			}

			rs, err := openRemoteSession(cmd, doc.Credential)
			if err != nil {
				return err
			}
			defer rs.Close()

			cfg := GetAppConfig(cmd)
			local := localfs.New()

			for i, step := range doc.Steps {
				if err := runPlanStep(cmd, rs, local, cfg, step); err != nil {
					internal.Error("plan step failed", internal.Fields{
						internal.FieldError: err.Error(),
						internal.FieldStep:  fmt.Sprintf("%d/%d", i+1, len(doc.Steps)),
					})
					return fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
				}
				internal.Info("plan step done", internal.Fields{
					internal.FieldStep: fmt.Sprintf("%d/%d %s", i+1, len(doc.Steps), step.Op),
				})
			}

			pterm.Success.Printfln("plan finished: %d steps", len(doc.Steps))
			output.PrintCallSummary(rs.collector.Snapshot())
			return nil
		},
	}
}

func runPlanStep(cmd *cobra.Command, rs *remoteSession, local backend.LocalFS, cfg *internal.AppConfig, step planStep) error {
	ctx := cmd.Context()
	timeout := opTimeout(cfg)

	switch strings.ToLower(strings.TrimSpace(step.Op)) {
	case "mkdirs":
		return backend.MakeDirRecursive(ctx, rs.channel, step.Path, backend.TreeOptions{Timeout: timeout})
	case "remove":
		return backend.RemoveDirRecursive(ctx, rs.channel, step.Path, backend.TreeOptions{Timeout: timeout})
	case "list":
		included, err := parseEntryTypes(step.Types)
		if err != nil {
			return err
		}
		entries, err := backend.ListDirRecursive(ctx, rs.channel, step.Path, backend.ListOptions{
			Timeout:       timeout,
			IncludedTypes: included,
			WithInfo:      step.WithInfo,
			Iterate:       excludeFilter(step.Exclude),
		})
		if err != nil {
			return err
		}
		return output.PrintEntryTable(entries, step.WithInfo)
	case "upload":
		return backend.UploadFile(ctx, rs.channel, local, step.LocalPath, step.RemotePath, backend.TransferOptions{
			Timeout:   timeout,
			ChunkSize: stepChunkSize(step, cfg),
		})
	case "download":
		return backend.DownloadFile(ctx, rs.channel, local, step.RemotePath, step.LocalPath, backend.TransferOptions{
			Timeout:   timeout,
			ChunkSize: stepChunkSize(step, cfg),
		})
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func stepChunkSize(step planStep, cfg *internal.AppConfig) int {
	if step.ChunkSize > 0 {
		return step.ChunkSize
	}
	if cfg != nil && cfg.ChunkSize > 0 {
		return cfg.ChunkSize
	}
	return backend.DefaultChunkSize
}
