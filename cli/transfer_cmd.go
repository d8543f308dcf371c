package cli

import (
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jgoldverg/canopy/backend"
	"github.com/jgoldverg/canopy/backend/localfs"
	"github.com/jgoldverg/canopy/cli/output"
	"github.com/jgoldverg/canopy/internal"
)

type TransferCommandOpts struct {
	CredentialName string
	ChunkSize      int
	RemotePath     string
	LocalPath      string
}

func TransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transfer",
		Short:   "Move single files between the local machine and a remote",
		Long:    "Move single files between the local machine and a remote",
		Aliases: []string{"tx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(getCommand())
	cmd.AddCommand(putCommand())
	return cmd
}

func getCommand() *cobra.Command {
	opts := &TransferCommandOpts{}

	cmd := &cobra.Command{
		Use:     "get <remote-path> <local-path>",
		Short:   "Download a remote file in chunks",
		Aliases: []string{"download", "g"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RemotePath, opts.LocalPath = args[0], args[1]
			return runTransfer(cmd, opts, false)
		},
	}

	cmd.Flags().StringVar(&opts.CredentialName, "cred", "", "Name of the stored credential to connect with")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "Bytes per read/write call (0 uses the configured default)")
	_ = cmd.MarkFlagRequired("cred")
	return cmd
}

func putCommand() *cobra.Command {
	opts := &TransferCommandOpts{}

	cmd := &cobra.Command{
		Use:     "put <local-path> <remote-path>",
		Short:   "Upload a local file in chunks",
		Aliases: []string{"upload", "p"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.LocalPath, opts.RemotePath = args[0], args[1]
			return runTransfer(cmd, opts, true)
		},
	}

	cmd.Flags().StringVar(&opts.CredentialName, "cred", "", "Name of the stored credential to connect with")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "Bytes per read/write call (0 uses the configured default)")
	_ = cmd.MarkFlagRequired("cred")
	return cmd
}

func runTransfer(cmd *cobra.Command, opts *TransferCommandOpts, upload bool) error {
	cfg := GetAppConfig(cmd)

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = cfg.ChunkSize
	}

	rs, err := openRemoteSession(cmd, opts.CredentialName)
	if err != nil {
		return err
	}
	defer rs.Close()

	jobID := uuid.New()
	internal.Info("starting transfer", internal.Fields{
		internal.FieldJobID:     jobID.String(),
		internal.FieldPath:      opts.RemotePath,
		internal.FieldLocalPath: opts.LocalPath,
		internal.FieldChunkSize: chunkSize,
	})

	transferOpts := backend.TransferOptions{
		Timeout:   opTimeout(cfg),
		ChunkSize: chunkSize,
	}
	local := localfs.New()

	start := time.Now()
	if upload {
		err = backend.UploadFile(cmd.Context(), rs.channel, local, opts.LocalPath, opts.RemotePath, transferOpts)
	} else {
		err = backend.DownloadFile(cmd.Context(), rs.channel, local, opts.RemotePath, opts.LocalPath, transferOpts)
	}
	elapsed := time.Since(start)

	if err != nil {
		internal.Error("transfer failed", internal.Fields{
			internal.FieldJobID: jobID.String(),
			internal.FieldError: err.Error(),
		})
		return err
	}

	pterm.Success.Printfln("transfer %s finished", jobID.String())
	output.PrintTransferSummary(rs.collector.Snapshot(), elapsed)
	return nil
}
