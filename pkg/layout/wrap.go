package layout

import "unicode"

// Measure reports the advance width of text drawn in the plain or
// emphasis face at the layout's point size.
type Measure func(text string, emphasis bool) float64

// Fragment is a placed piece of one line: a horizontal offset from the
// wrapping box's left edge plus the text drawn there in one style.
type Fragment struct {
	Text     string
	Emphasis bool
	X        float64
}

// Line is one wrapped line of fragments. Width is the advance from the
// box's left edge to the end of the last fragment.
type Line struct {
	Fragments []Fragment
	Width     float64
}

// Wrap lays out styled runs into lines no wider than boxWidth using
// greedy word packing. Words never split across lines or styles; a
// word goes on the current line when the line is empty or when the
// word (plus its separating space) still ends within the box. The
// cursor carries across run boundaries, so a style change mid-line
// does not force a break, and fragments that touch without whitespace
// stay glued together through wrapping.
//
// Vertical limits are the caller's concern: every line is returned.
func Wrap(runs []Run, boxWidth float64, measure Measure) []Line {
	words := splitWords(runs)
	if len(words) == 0 {
		return nil
	}

	var lines []Line
	var cur Line
	cursor := 0.0

	flush := func() {
		cur.Width = cursor
		lines = append(lines, cur)
		cur = Line{}
		cursor = 0
	}
	place := func(w word, x float64) {
		width := measure(w.text, w.emph)
		// Extend the previous fragment instead of opening a new one
		// when style allows; advances are additive, so the merged
		// text measures the same as its parts.
		if n := len(cur.Fragments); n > 0 {
			prev := &cur.Fragments[n-1]
			if prev.Emphasis == w.emph && (!w.gapBefore || w.gapEmph == w.emph) {
				if w.gapBefore {
					prev.Text += " "
				}
				prev.Text += w.text
				cursor = x + width
				return
			}
		}
		cur.Fragments = append(cur.Fragments, Fragment{Text: w.text, Emphasis: w.emph, X: x})
		cursor = x + width
	}

	for _, w := range words {
		width := measure(w.text, w.emph)

		if len(cur.Fragments) == 0 {
			place(w, 0)
			continue
		}

		gap := 0.0
		if w.gapBefore {
			gap = measure(" ", w.gapEmph)
		}
		if cursor+gap+width <= boxWidth {
			place(w, cursor+gap)
		} else {
			flush()
			place(w, 0)
		}
	}
	if len(cur.Fragments) > 0 {
		flush()
	}
	return lines
}

// word is a wrap unit: one whitespace-free token plus what separated
// it from the token before.
type word struct {
	text      string
	emph      bool
	gapBefore bool
	gapEmph   bool
}

// splitWords tokenizes runs into words. Consecutive whitespace, within
// or across runs, collapses to a single gap credited to the run it
// started in. A run that begins directly after the previous run's text
// produces a word glued to it (no gap).
func splitWords(runs []Run) []word {
	var words []word
	pendingGap := false
	gapEmph := false
	first := true

	for _, run := range runs {
		start := -1
		for i, r := range run.Text {
			if unicode.IsSpace(r) {
				if start >= 0 {
					words = append(words, word{
						text:      run.Text[start:i],
						emph:      run.Emphasis,
						gapBefore: pendingGap && !first,
						gapEmph:   gapEmph,
					})
					first = false
					start = -1
					pendingGap = false
				}
				if !pendingGap {
					pendingGap = true
					gapEmph = run.Emphasis
				}
				continue
			}
			if start < 0 {
				start = i
			}
		}
		if start >= 0 {
			words = append(words, word{
				text:      run.Text[start:],
				emph:      run.Emphasis,
				gapBefore: pendingGap && !first,
				gapEmph:   gapEmph,
			})
			first = false
			pendingGap = false
		}
	}
	return words
}
