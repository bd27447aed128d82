package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dwalast/drugguide/cmd/api"
	"github.com/dwalast/drugguide/internal/app"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/core/importer"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/spf13/cobra"
)

type runFunc func(ctx context.Context, s *app.Services, args []string) error

// withServices connects storage and builds the services around fn.
func withServices(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api.InitStorage(ctx)
		defer api.CloseStorage(ctx)

		s, err := app.New(ctx)
		if err != nil {
			logger.Errorf(ctx, "init services err: %+v", err)
			return err
		}
		defer func() {
			if err := s.Close(ctx); err != nil {
				logger.Warnf(ctx, "close services err: %+v", err)
			}
		}()
		return fn(ctx, s, args)
	}
}

func New() *cobra.Command {
	root := &cobra.Command{
		Use:   "admin",
		Short: "Drug data maintenance",
		Long: "Import, export and back up drug data. Commands touching the local " +
			"mirror need a persistent STORAGE_BACKEND (redis or postgres).",
		SilenceUsage: true,
	}
	root.AddCommand(newImport(), newSync(), newExport(), newBackup(), newRestore(), newMirror(), newExec())
	return root
}

func newImport() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a json or csv drug file into the RemoteStore",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(ctx context.Context, s *app.Services, args []string) error {
			m := importer.Mode(mode)
			if !m.Valid() {
				return fmt.Errorf("unknown mode: %s", mode)
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return report(s.Importer.ImportFile(ctx, filepath.Base(args[0]), content, m))
		}),
	}
	cmd.Flags().StringVar(&mode, "mode", string(importer.ModeReplace), "replace or merge")
	return cmd
}

func newSync() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Re-validate the remote drug mapping and write back the valid entries",
		Args:  cobra.NoArgs,
		RunE: withServices(func(ctx context.Context, s *app.Services, _ []string) error {
			return report(s.Importer.ImportFromRemote(ctx))
		}),
	}
}

func newExport() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the remote drug mapping",
		Args:  cobra.NoArgs,
		RunE: withServices(func(ctx context.Context, s *app.Services, _ []string) error {
			raw, err := s.Importer.ExportToFile(ctx)
			if err != nil {
				return err
			}
			return write(out, raw)
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func newBackup() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full backup of the mirror, pages and ratings",
		Args:  cobra.NoArgs,
		RunE: withServices(func(ctx context.Context, s *app.Services, _ []string) error {
			backup, err := s.Command.FullBackup(ctx)
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(backup, "", "  ")
			if err != nil {
				return err
			}
			return write(out, raw)
		}),
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, stdout when empty")
	return cmd
}

func newRestore() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Load a mirror export into the mirror and write its drugs to the RemoteStore",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(ctx context.Context, s *app.Services, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return report(s.Importer.ImportBackupToMirror(ctx, content))
		}),
	}
}

func newMirror() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Manage the local mirror",
	}
	export := &cobra.Command{
		Use:  "export",
		Args: cobra.NoArgs,
		RunE: withServices(func(ctx context.Context, s *app.Services, _ []string) error {
			exp, ok := s.Mirror.ExportData(ctx)
			if !ok {
				return code.MirrorEmpty
			}
			raw, err := json.MarshalIndent(exp, "", "  ")
			if err != nil {
				return err
			}
			return write(out, raw)
		}),
	}
	export.Flags().StringVarP(&out, "output", "o", "", "output file, stdout when empty")

	cmd.AddCommand(
		&cobra.Command{
			Use:  "import <file>",
			Args: cobra.ExactArgs(1),
			RunE: withServices(func(ctx context.Context, s *app.Services, args []string) error {
				content, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				if !s.Mirror.ImportData(ctx, content) {
					return code.MirrorFormatErr
				}
				return nil
			}),
		},
		export,
		&cobra.Command{
			Use:  "stats",
			Args: cobra.NoArgs,
			RunE: withServices(func(ctx context.Context, s *app.Services, _ []string) error {
				stats, ok := s.Mirror.GetStats(ctx)
				if !ok {
					return code.MirrorEmpty
				}
				return printJSON(os.Stdout, stats)
			}),
		},
		&cobra.Command{
			Use:  "clear",
			Args: cobra.NoArgs,
			RunE: withServices(func(ctx context.Context, s *app.Services, _ []string) error {
				if !s.Mirror.ClearAllData(ctx) {
					return code.StorageErr
				}
				return nil
			}),
		},
	)
	return cmd
}

func newExec() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command>",
		Short: "Run a dashboard command: display-records, export, clear, system-info, backup",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(ctx context.Context, s *app.Services, args []string) error {
			res := s.Command.Execute(ctx, args[0])
			if err := printJSON(os.Stdout, res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s", res.Message)
			}
			return nil
		}),
	}
}

func report(res *importer.ImportResult) error {
	if err := printJSON(os.Stdout, res); err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%s", res.Message)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func write(path string, raw []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(raw, '\n'))
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
