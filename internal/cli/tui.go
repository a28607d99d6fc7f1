package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Image Picker - Interactive artwork selection
// =============================================================================

// imageEntry is one selectable file in the picker.
type imageEntry struct {
	path string // full path, as returned to the caller
	name string
	size int64
	mod  time.Time
}

// imageExts are the artwork extensions the picker and the add command
// accept.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// isImagePath reports whether name has a supported artwork extension.
func isImagePath(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// listImages returns the image files directly inside dir, sorted by name.
func listImages(dir string) ([]imageEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []imageEntry
	for _, de := range dirEntries {
		if de.IsDir() || !isImagePath(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		out = append(out, imageEntry{
			path: filepath.Join(dir, de.Name()),
			name: de.Name(),
			size: info.Size(),
			mod:  info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out, nil
}

// imagePickerModel is the bubbletea model for choosing images from a
// directory. Space toggles the entry under the cursor, a toggles all,
// enter confirms, q or esc cancels.
type imagePickerModel struct {
	dir      string
	entries  []imageEntry
	cursor   int
	offset   int
	height   int
	selected map[int]bool
	accepted bool
}

// newImagePicker creates a picker over the given entries.
func newImagePicker(dir string, entries []imageEntry) imagePickerModel {
	return imagePickerModel{
		dir:      dir,
		entries:  entries,
		height:   15,
		selected: make(map[int]bool),
	}
}

func (m imagePickerModel) Init() tea.Cmd {
	return nil
}

func (m imagePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			all := len(m.picked()) == len(m.entries)
			for i := range m.entries {
				m.selected[i] = !all
			}
		case "enter":
			if len(m.picked()) == 0 {
				m.selected[m.cursor] = true
			}
			m.accepted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m imagePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Add Panels"))
	b.WriteString(listDimStyle.Render("  " + m.dir))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.entries) {
		end = len(m.entries)
	}

	for i := m.offset; i < end; i++ {
		e := m.entries[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.selected[i] {
			mark = "[x]"
		}

		line := fmt.Sprintf("%s%s %-32s %8s  %s", cursor, mark, e.name, formatSize(e.size), formatRelativeTime(e.mod))
		switch {
		case i == m.cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.selected[i]:
			b.WriteString(StyleSuccess.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", len(m.picked()), len(m.entries))))

	return b.String()
}

// picked returns the paths of the selected entries in list order.
func (m imagePickerModel) picked() []string {
	var out []string
	for i := range m.entries {
		if m.selected[i] {
			out = append(out, m.entries[i].path)
		}
	}
	return out
}

// pickImages lists the images in dir and lets the user choose some
// interactively. It returns nil with no error when the user cancels.
func pickImages(dir string) ([]string, error) {
	entries, err := listImages(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}

	final, err := tea.NewProgram(newImagePicker(dir, entries)).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	m, ok := final.(imagePickerModel)
	if !ok || !m.accepted {
		return nil, nil
	}
	return m.picked(), nil
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
