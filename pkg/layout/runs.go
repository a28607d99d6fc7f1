package layout

import (
	"regexp"
	"strings"
)

// Run is a span of script text with a single style.
type Run struct {
	Text     string
	Emphasis bool
}

// emphasisPattern matches a complete bracketed span. An unterminated
// opening bracket never matches and stays literal text.
var emphasisPattern = regexp.MustCompile(`\[[^\]]*\]`)

// SplitRuns divides script text into styled runs. Text inside square
// brackets becomes an emphasis run with the brackets stripped;
// everything else stays plain. Empty spans produce no run, so the
// result holds only non-empty text.
func SplitRuns(script string) []Run {
	var runs []Run
	plain := func(s string) {
		if s != "" {
			runs = append(runs, Run{Text: s})
		}
	}

	last := 0
	for _, loc := range emphasisPattern.FindAllStringIndex(script, -1) {
		plain(script[last:loc[0]])
		if inner := script[loc[0]+1 : loc[1]-1]; inner != "" {
			runs = append(runs, Run{Text: inner, Emphasis: true})
		}
		last = loc[1]
	}
	plain(script[last:])
	return runs
}

// SplitLines divides runs at explicit newline characters, producing
// one run group per source line. Emphasis survives the break: a span
// whose text continues past a newline resumes on the next line still
// emphasized. A blank source line yields an empty group, so callers
// can keep its vertical space.
func SplitLines(runs []Run) [][]Run {
	lines := [][]Run{nil}
	for _, run := range runs {
		for i, part := range strings.Split(run.Text, "\n") {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				last := len(lines) - 1
				lines[last] = append(lines[last], Run{Text: part, Emphasis: run.Emphasis})
			}
		}
	}
	return lines
}
