package cli

import (
	"fmt"
	"path"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jgoldverg/canopy/backend"
	"github.com/jgoldverg/canopy/cli/output"
	"github.com/jgoldverg/canopy/internal"
)

type MkdirsCommandOpts struct {
	CredentialName string
	Path           string
}

type LsCommandOpts struct {
	CredentialName string
	Path           string
	Types          []string
	WithInfo       bool
	Exclude        []string
	MaxDepth       int
}

type RmCommandOpts struct {
	CredentialName string
	Path           string
}

func TreeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tree",
		Short:   "Recursive operations on remote directory trees",
		Long:    "Recursive operations on remote directory trees",
		Aliases: []string{"t"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(mkdirsCommand())
	cmd.AddCommand(lsCommand())
	cmd.AddCommand(rmCommand())
	return cmd
}

func mkdirsCommand() *cobra.Command {
	opts := &MkdirsCommandOpts{}

	cmd := &cobra.Command{
		Use:     "mkdirs <path>",
		Short:   "Create a remote directory and every missing parent",
		Aliases: []string{"mkdir", "md"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			cfg := GetAppConfig(cmd)

			rs, err := openRemoteSession(cmd, opts.CredentialName)
			if err != nil {
				return err
			}
			defer rs.Close()

			err = backend.MakeDirRecursive(cmd.Context(), rs.channel, opts.Path, backend.TreeOptions{
				Timeout: opTimeout(cfg),
			})
			if err != nil {
				return err
			}
			pterm.Success.Printfln("created %s", opts.Path)
			output.PrintCallSummary(rs.collector.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.CredentialName, "cred", "", "Name of the stored credential to connect with")
	_ = cmd.MarkFlagRequired("cred")
	return cmd
}

func lsCommand() *cobra.Command {
	opts := &LsCommandOpts{}

	cmd := &cobra.Command{
		Use:     "ls <path>",
		Short:   "List a remote directory tree recursively",
		Aliases: []string{"list", "l"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			cfg := GetAppConfig(cmd)

			included, err := parseEntryTypes(opts.Types)
			if err != nil {
				return err
			}

			rs, err := openRemoteSession(cmd, opts.CredentialName)
			if err != nil {
				return err
			}
			defer rs.Close()

			listOpts := backend.ListOptions{
				Timeout:       opTimeout(cfg),
				IncludedTypes: included,
				WithInfo:      opts.WithInfo,
				Iterate:       excludeFilter(opts.Exclude),
				Recurse:       depthLimit(opts.Path, opts.MaxDepth),
			}

			entries, err := backend.ListDirRecursive(cmd.Context(), rs.channel, opts.Path, listOpts)
			if err != nil {
				return err
			}
			if err := output.PrintEntryTable(entries, opts.WithInfo); err != nil {
				return err
			}
			output.PrintCallSummary(rs.collector.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.CredentialName, "cred", "", "Name of the stored credential to connect with")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "Entry types to include (regular, directory, symlink, device, other)")
	cmd.Flags().BoolVar(&opts.WithInfo, "with-info", false, "Include size, type, access and mtime per entry")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Glob patterns of basenames to skip")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "Descend at most this many levels (0 means unlimited)")
	_ = cmd.MarkFlagRequired("cred")
	return cmd
}

func rmCommand() *cobra.Command {
	opts := &RmCommandOpts{}

	cmd := &cobra.Command{
		Use:     "rm <path>",
		Short:   "Delete a remote directory tree recursively",
		Aliases: []string{"delete", "r"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = args[0]
			cfg := GetAppConfig(cmd)

			rs, err := openRemoteSession(cmd, opts.CredentialName)
			if err != nil {
				return err
			}
			defer rs.Close()

			err = backend.RemoveDirRecursive(cmd.Context(), rs.channel, opts.Path, backend.TreeOptions{
				Timeout: opTimeout(cfg),
			})
			if err != nil {
				internal.Error("failed to delete tree", internal.Fields{
					internal.FieldPath:  opts.Path,
					internal.FieldError: err.Error(),
				})
				return err
			}
			pterm.Success.Printfln("removed %s", opts.Path)
			output.PrintCallSummary(rs.collector.Snapshot())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.CredentialName, "cred", "", "Name of the stored credential to connect with")
	_ = cmd.MarkFlagRequired("cred")
	return cmd
}

func parseEntryTypes(names []string) ([]backend.EntryType, error) {
	if len(names) == 0 {
		return nil, nil
	}
	types := make([]backend.EntryType, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "regular", "file":
			types = append(types, backend.TypeRegular)
		case "directory", "dir":
			types = append(types, backend.TypeDirectory)
		case "symlink", "link":
			types = append(types, backend.TypeSymlink)
		case "device":
			types = append(types, backend.TypeDevice)
		case "other":
			types = append(types, backend.TypeOther)
		default:
			return nil, fmt.Errorf("unknown entry type %q", name)
		}
	}
	return types, nil
}

// excludeFilter builds an iterate callback that drops entries whose basename
// matches any of the given glob patterns. Matches are skipped before the stat
// round trip.
func excludeFilter(patterns []string) backend.IterateFunc {
	if len(patterns) == 0 {
		return nil
	}
	return func(p string) backend.WalkDecision {
		base := path.Base(p)
		for _, pattern := range patterns {
			if ok, _ := path.Match(pattern, base); ok {
				return backend.DecisionSkip
			}
		}
		return backend.DecisionProceed
	}
}

// depthLimit builds a recurse callback that stops descending below maxDepth
// levels under root. Directories at the cutoff still appear in the result.
func depthLimit(root string, maxDepth int) backend.RecurseFunc {
	if maxDepth <= 0 {
		return nil
	}
	rootDepth := len(backend.SplitPath(root))
	return func(p string) backend.WalkDecision {
		if len(backend.SplitPath(p))-rootDepth >= maxDepth {
			return backend.DecisionSkipButInclude
		}
		return backend.DecisionProceed
	}
}
