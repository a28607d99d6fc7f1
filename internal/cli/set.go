package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panelforge/panelforge/pkg/project"
)

// setOpts holds the command-line flags for the set command.
type setOpts struct {
	title     string
	header    string
	subheader string

	endText  string
	showText bool
	mirror   bool

	linkSizes bool

	background    string
	endBackground string

	logoFile   string
	logoAnchor string
	logoSize   string

	endLogoFile   string
	endLogoAnchor string
	endLogoSize   string
}

// newSetCmd creates the set command for updating board fields in place.
// Only flags that were explicitly passed are applied, so unrelated
// fields keep their current values.
func newSetCmd() *cobra.Command {
	var opts setOpts

	cmd := &cobra.Command{
		Use:   "set <board.pfp>",
		Short: "Update board, title page, and end page fields",
		Long: `Update board, title page, and end page fields.

Only the fields named by flags change; everything else is preserved.

Examples:
  panelforge set board.pfp --header "Nightfall Ridge" --subheader "Episode 3"
  panelforge set board.pfp --logo mark.png --logo-anchor top-right
  panelforge set board.pfp --mirror --end-text "Fin"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd.Context(), args[0], cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.title, "title", "", "board title")
	f.StringVar(&opts.header, "header", "", "title page header")
	f.StringVar(&opts.subheader, "subheader", "", "title page subheader")
	f.StringVar(&opts.endText, "end-text", "", "end page closing line")
	f.BoolVar(&opts.showText, "show-end-text", true, "draw the closing line on the end page")
	f.BoolVar(&opts.mirror, "mirror", false, "reuse title page artwork on the end page")
	f.BoolVar(&opts.linkSizes, "link-logo-sizes", false, "keep title and end logo sizes in sync")
	f.StringVar(&opts.background, "background", "", "title page background image file")
	f.StringVar(&opts.endBackground, "end-background", "", "end page background image file")
	f.StringVar(&opts.logoFile, "logo", "", "title page logo image file")
	f.StringVar(&opts.logoAnchor, "logo-anchor", "", "title logo anchor (e.g. bottom-right)")
	f.StringVar(&opts.logoSize, "logo-size", "", "title logo size: S, M, L, or XL")
	f.StringVar(&opts.endLogoFile, "end-logo", "", "end page logo image file")
	f.StringVar(&opts.endLogoAnchor, "end-logo-anchor", "", "end logo anchor")
	f.StringVar(&opts.endLogoSize, "end-logo-size", "", "end logo size: S, M, L, or XL")

	return cmd
}

// runSet loads the board, applies every flag the user passed, and saves
// the board back.
func runSet(ctx context.Context, path string, cmd *cobra.Command, opts *setOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	s := newSession(logger)
	p, err := s.LoadFile(path)
	if err != nil {
		return err
	}
	mark := s.mark()

	var changed []string
	apply := func(flag string, fn func() error) error {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		if err := fn(); err != nil {
			return err
		}
		changed = append(changed, flag)
		return nil
	}

	// defaultLogo builds a logo with the config-provided placement.
	defaultLogo := func(ref project.AssetRef) *project.Logo {
		l := project.NewLogo(ref)
		if cfg.Logo.Anchor != "" {
			l.Anchor = project.Anchor(cfg.Logo.Anchor)
		}
		if cfg.Logo.Size != "" {
			l.Size = project.SizeClass(cfg.Logo.Size)
		}
		return l
	}

	steps := []struct {
		flag string
		fn   func() error
	}{
		{"title", func() error { p.Title = opts.title; return nil }},
		{"header", func() error { p.TitlePage.Header = opts.header; return nil }},
		{"subheader", func() error { p.TitlePage.Subheader = opts.subheader; return nil }},
		{"end-text", func() error { p.EndPage.Text = opts.endText; return nil }},
		{"show-end-text", func() error { p.EndPage.ShowText = opts.showText; return nil }},
		{"mirror", func() error { p.EndPage.MirrorTitle = opts.mirror; return nil }},
		{"link-logo-sizes", func() error { p.LinkLogoSizes = opts.linkSizes; return nil }},
		{"background", func() error {
			ref, err := importImage(s.Store(), opts.background)
			if err != nil {
				return err
			}
			p.TitlePage.Background = ref
			return nil
		}},
		{"end-background", func() error {
			ref, err := importImage(s.Store(), opts.endBackground)
			if err != nil {
				return err
			}
			p.EndPage.Background = ref
			return nil
		}},
		{"logo", func() error {
			ref, err := importImage(s.Store(), opts.logoFile)
			if err != nil {
				return err
			}
			p.TitlePage.Logo = defaultLogo(ref)
			return nil
		}},
		{"logo-anchor", func() error {
			if p.TitlePage.Logo == nil {
				return fmt.Errorf("no title logo to position (set one with --logo)")
			}
			return setAnchor(&p.TitlePage.Logo.Anchor, opts.logoAnchor)
		}},
		{"logo-size", func() error {
			if p.TitlePage.Logo == nil {
				return fmt.Errorf("no title logo to size (set one with --logo)")
			}
			return setSize(&p.TitlePage.Logo.Size, opts.logoSize)
		}},
		{"end-logo", func() error {
			ref, err := importImage(s.Store(), opts.endLogoFile)
			if err != nil {
				return err
			}
			p.EndPage.Logo = defaultLogo(ref)
			return nil
		}},
		{"end-logo-anchor", func() error {
			if p.EndPage.Logo == nil {
				return fmt.Errorf("no end logo to position (set one with --end-logo)")
			}
			return setAnchor(&p.EndPage.Logo.Anchor, opts.endLogoAnchor)
		}},
		{"end-logo-size", func() error {
			if p.EndPage.Logo == nil {
				return fmt.Errorf("no end logo to size (set one with --end-logo)")
			}
			return setSize(&p.EndPage.Logo.Size, opts.endLogoSize)
		}},
	}
	for _, step := range steps {
		if err := apply(step.flag, step.fn); err != nil {
			return err
		}
	}

	if len(changed) == 0 {
		return fmt.Errorf("nothing to set: pass at least one field flag")
	}

	if err := s.SaveFile(path, p); err != nil {
		return err
	}
	s.warn(mark)

	printSuccess("Updated %s", path)
	printDetail("changed: %s", strings.Join(changed, ", "))
	return nil
}

// setAnchor validates and stores an anchor name.
func setAnchor(dst *project.Anchor, value string) error {
	a := project.Anchor(value)
	if !project.ValidAnchor(a) {
		return fmt.Errorf("invalid anchor %q", value)
	}
	*dst = a
	return nil
}

// setSize validates and stores a logo size class.
func setSize(dst *project.SizeClass, value string) error {
	sc := project.SizeClass(value)
	if !project.ValidSizeClass(sc) {
		return fmt.Errorf("invalid size %q (must be S, M, L, or XL)", value)
	}
	*dst = sc
	return nil
}
