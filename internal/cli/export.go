package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panelforge/panelforge/pkg/render"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output string
}

// newExportCmd creates the export command that renders a board to PDF.
func newExportCmd() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <board.pfp>",
		Short: "Render a board to a paginated PDF",
		Long: `Render a board to a paginated PDF.

The document starts with the title page, lays panels out six to a page
in reading order, and closes with the end page. Output defaults to the
board's name with a .pdf extension.

Examples:
  panelforge export board.pfp
  panelforge export board.pfp -o proofs/board-v2.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PDF path")

	return cmd
}

// runExport loads the board, renders it, and writes the PDF.
func runExport(ctx context.Context, input string, opts *exportOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	out := opts.output
	if out == "" {
		base := filepath.Base(input)
		out = strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
		if cfg.OutputDir != "" {
			out = filepath.Join(cfg.OutputDir, out)
		}
	}

	s := newSession(logger)
	p, err := s.LoadFile(input)
	if err != nil {
		return err
	}
	mark := s.mark()

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", filepath.Base(input)))
	sp.Start()

	data, err := s.ExportDocument(ctx, p)
	if err != nil {
		if sp.Cancelled() {
			sp.Stop()
			return err
		}
		sp.StopWithError("Export failed")
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			sp.StopWithError("Export failed")
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		sp.StopWithError("Export failed")
		return fmt.Errorf("write %s: %w", out, err)
	}

	sp.StopWithSuccess(fmt.Sprintf("Exported %s", p.Title))
	s.warn(mark)

	pages := 2 + (len(p.Panels)+render.PanelsPerPage-1)/render.PanelsPerPage
	printFile(out)
	printStats(fmt.Sprintf("%d pages", pages), formatSize(int64(len(data))))
	return nil
}
