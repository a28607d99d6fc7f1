package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/panelforge/panelforge/pkg/project"
)

// newInitCmd creates the init command for starting a fresh board.
// The new package carries the default backgrounds and closing line, so
// it renders to a complete document before any panels are added.
func newInitCmd() *cobra.Command {
	var (
		title string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init <board.pfp>",
		Short: "Create a fresh storyboard package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.Context(), args[0], title, force)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", project.DefaultTitle, "board title")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// runInit writes a fresh default board to path. Without --force an
// existing file is left alone.
func runInit(ctx context.Context, path, title string, force bool) error {
	logger := loggerFromContext(ctx)

	if filepath.Ext(path) == "" {
		path += ".pfp"
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	s := newSession(logger)
	p := project.New(title)
	if err := s.SaveFile(path, p); err != nil {
		return err
	}
	logger.Debugf("wrote %s with %d assets", path, s.Store().Len())

	printSuccess("Created %s", path)
	printDetail("title: %s", p.Title)
	printNextStep("Add panels", fmt.Sprintf("panelforge add %s <images...>", path))
	return nil
}
