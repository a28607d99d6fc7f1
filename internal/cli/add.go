package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/panelforge/panelforge/pkg/assetstore"
	"github.com/panelforge/panelforge/pkg/project"
)

// addOpts holds the command-line flags for the add command.
type addOpts struct {
	scripts []string // script text per image, in argument order
}

// newAddCmd creates the add command for appending panels to a board.
// Image arguments become one panel each; a directory argument opens an
// interactive picker over the images it contains.
func newAddCmd() *cobra.Command {
	var opts addOpts

	cmd := &cobra.Command{
		Use:   "add <board.pfp> <image|dir>...",
		Short: "Register artwork and append panels to a board",
		Long: `Register artwork and append panels to a board.

Each image becomes one panel, in argument order. Passing a directory
opens an interactive picker over the images inside it.

Examples:
  panelforge add board.pfp shot1.png shot2.jpg
  panelforge add board.pfp ./artwork
  panelforge add board.pfp shot1.png -s "EXT. RIDGE - [DAWN]"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), args[0], args[1:], &opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.scripts, "script", "s", nil, "script for the matching image, repeatable ([brackets] mark emphasis)")

	return cmd
}

// runAdd loads the board, imports the given images as panels, and saves
// the board back.
func runAdd(ctx context.Context, path string, sources []string, opts *addOpts) error {
	logger := loggerFromContext(ctx)

	files, err := expandSources(sources)
	if err != nil {
		return err
	}
	if files == nil {
		printInfo("No images selected; nothing added")
		return nil
	}
	if len(opts.scripts) > len(files) {
		return fmt.Errorf("%d scripts for %d images", len(opts.scripts), len(files))
	}

	s := newSession(logger)
	p, err := s.LoadFile(path)
	if err != nil {
		return err
	}
	mark := s.mark()

	prog := newProgress(logger)
	added := 0
	for i, file := range files {
		ref, err := importImage(s.Store(), file)
		if err != nil {
			printWarning("%v, skipping", err)
			continue
		}
		panel := project.NewPanel()
		panel.Image = ref
		if i < len(opts.scripts) {
			panel.Script = opts.scripts[i]
		}
		p.Panels = append(p.Panels, panel)
		added++
		logger.Debugf("added %s as %s", file, ref)
	}
	if added == 0 {
		return fmt.Errorf("no usable images among %d files", len(files))
	}

	if err := s.SaveFile(path, p); err != nil {
		return err
	}
	s.warn(mark)
	prog.done(fmt.Sprintf("Imported %d panels", added))

	printSuccess("Added %d panels to %s", added, p.Title)
	printStats(fmt.Sprintf("%d panels", len(p.Panels)), fmt.Sprintf("%d assets", s.Store().Len()))
	return nil
}

// expandSources turns the source arguments into a flat file list,
// running the interactive picker for directory arguments. It returns
// nil when the user cancels a picker.
func expandSources(sources []string) ([]string, error) {
	var files []string
	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", src, err)
		}
		if !info.IsDir() {
			files = append(files, src)
			continue
		}
		picked, err := pickImages(src)
		if err != nil {
			return nil, err
		}
		if picked == nil {
			return nil, nil
		}
		files = append(files, picked...)
	}
	return files, nil
}

// importImage reads file, checks that it decodes as an image, and puts
// the bytes into the store. It returns the minted asset reference.
func importImage(store *assetstore.Store, file string) (project.AssetRef, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return project.EmptyRef(), fmt.Errorf("read %s: %w", file, err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return project.EmptyRef(), fmt.Errorf("%s is not a supported image", file)
	}
	key, err := store.Register(data, filepath.Base(file))
	if err != nil {
		return project.EmptyRef(), err
	}
	return project.KeyRef(key), nil
}
