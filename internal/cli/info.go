package cli

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panelforge/panelforge/pkg/project"
)

// newInfoCmd creates the info command that summarizes a board file.
func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <board.pfp>",
		Short: "Show a board's pages, panels, and assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), args[0])
		},
	}
}

// runInfo loads the board and prints a human-readable summary.
func runInfo(ctx context.Context, input string) error {
	logger := loggerFromContext(ctx)

	s := newSession(logger)
	p, err := s.LoadFile(input)
	if err != nil {
		return err
	}
	mark := s.mark()
	s.warn(mark)

	store := s.Store()
	var total int64
	for _, key := range store.Keys() {
		total += int64(store.Size(key))
	}

	fmt.Println(StyleTitle.Render(p.Title))
	printStats(
		fmt.Sprintf("%d panels", len(p.Panels)),
		fmt.Sprintf("%d assets", store.Len()),
		formatSize(total),
	)
	printNewline()

	printKeyValue("Header", valueOrNone(p.TitlePage.Header))
	printKeyValue("Subheader", valueOrNone(p.TitlePage.Subheader))
	printKeyValue("Background", describeRef(p.TitlePage.Background))
	printKeyValue("Title logo", describeLogo(p.TitlePage.Logo))
	printKeyValue("End text", endTextSummary(p.EndPage))
	printKeyValue("End logo", describeLogo(p.EndPage.Logo))
	printKeyValue("Mirror", onOff(p.EndPage.MirrorTitle))
	printKeyValue("Linked", onOff(p.LinkLogoSizes))

	if len(p.Panels) > 0 {
		printNewline()
		for i, panel := range p.Panels {
			printDetail("%2d  %-24s %s", i+1, describeRef(panel.Image), truncate(firstLine(panel.Script), 48))
		}
	}
	return nil
}

// describeRef renders an asset reference for display, shortening opaque
// store keys to a readable prefix.
func describeRef(ref project.AssetRef) string {
	if ref.IsEmpty() {
		return "none"
	}
	if kind, ok := ref.Builtin(); ok {
		return fmt.Sprintf("built-in %s", kind)
	}
	key, _ := ref.Key()
	if len(key) > 12 {
		return key[:8] + "…" + path.Ext(key)
	}
	return key
}

// describeLogo renders a logo's image, anchor, and size on one line.
func describeLogo(l *project.Logo) string {
	if l == nil {
		return "none"
	}
	return fmt.Sprintf("%s at %s (%s)", describeRef(l.Ref), l.Anchor, l.Size)
}

func endTextSummary(ep project.EndPage) string {
	if !ep.ShowText {
		return "hidden"
	}
	return fmt.Sprintf("%q", ep.Text)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func valueOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// firstLine returns s up to the first line break.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
