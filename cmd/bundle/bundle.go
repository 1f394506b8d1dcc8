// Package bundle implements the archive preview and upload commands.
package bundle

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/libingest/cmd/common"
	"github.com/jonesrussell/libingest/internal/bundle"
	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
)

// Command returns the bundle command with its subcommands.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Preview and upload archive bundles",
		Long:  `Enumerate supported entries in zip/tar archives and upload selections to the content library.`,
	}

	cmd.AddCommand(newPreviewCommand())
	cmd.AddCommand(newUploadCommand())

	return cmd
}

// TableRenderer displays archive entries in a table.
type TableRenderer struct {
	logger logger.Interface
}

// NewTableRenderer creates a new TableRenderer instance.
func NewTableRenderer(log logger.Interface) *TableRenderer {
	return &TableRenderer{
		logger: log,
	}
}

// RenderPreview formats and displays the archive entry partition.
func (r *TableRenderer) RenderPreview(preview *domain.ArchivePreview) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Name", "Path", "Size", "Category"})
	for i := range preview.Entries {
		entry := &preview.Entries[i]
		t.AppendRow(table.Row{entry.Name, entry.Path, entry.SizeBytes, entry.Category})
	}
	t.Render()

	if len(preview.SkippedPaths) > 0 {
		fmt.Printf("\nSkipped %d unsupported entries:\n", len(preview.SkippedPaths))
		for _, p := range preview.SkippedPaths {
			fmt.Printf("  %s\n", p)
		}
	}
}

// newPreviewCommand creates the preview subcommand.
func newPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview [archive]",
		Short: "List the supported entries in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}

			engine := bundle.NewEngine(deps.Logger)
			preview, _, err := engine.Enumerate(args[0], data)
			if err != nil {
				return fmt.Errorf("enumerate archive: %w", err)
			}

			NewTableRenderer(deps.Logger).RenderPreview(preview)
			return nil
		},
	}
}

// newUploadCommand creates the upload subcommand.
func newUploadCommand() *cobra.Command {
	var selectedPaths []string

	cmd := &cobra.Command{
		Use:   "upload [archive]",
		Short: "Upload selected archive entries to the content library",
		Long: `Extract the selected entries from an archive and upload each one to
object storage. Entries default to every supported entry when no
--select flag is given. Failures are reported per entry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args[0], selectedPaths)
		},
	}

	cmd.Flags().StringSliceVar(&selectedPaths, "select", nil,
		"archive paths to upload (repeatable; default is all supported entries)")

	return cmd
}

// runUpload extracts and uploads the selection, reporting partial success.
func runUpload(cmd *cobra.Command, archivePath string, selectedPaths []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}

	format, err := bundle.DetectFormat(archivePath)
	if err != nil {
		return err
	}

	engine := bundle.NewEngine(deps.Logger)
	preview, cache, err := engine.Enumerate(archivePath, data)
	if err != nil {
		return fmt.Errorf("enumerate archive: %w", err)
	}

	selection := selectedPaths
	if len(selection) == 0 {
		for i := range preview.Entries {
			selection = append(selection, preview.Entries[i].Path)
		}
	}

	files, err := engine.ExtractSelected(archivePath, data, selection, cache)
	if err != nil {
		return fmt.Errorf("extract selection: %w", err)
	}

	store, err := common.NewMaterializer(deps)
	if err != nil {
		return err
	}

	uploader := common.NewBatchUploader(deps, store)
	result := uploader.UploadSelected(cmd.Context(), preview.ArchiveName, format, files)

	cmd.Printf("%d of %d files uploaded\n", len(result.Uploaded), len(result.Uploaded)+len(result.Failed))
	for _, f := range result.Uploaded {
		cmd.Printf("  ok   %s -> %s\n", f.Name, f.URL)
	}
	for _, f := range result.Failed {
		cmd.Printf("  fail %s: %s\n", f.Name, f.Error)
	}

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d uploads failed", len(result.Failed))
	}
	return nil
}
