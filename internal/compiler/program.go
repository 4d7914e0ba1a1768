package compiler

import "strings"

// Line is one emitted statement fragment of the intermediate program.
// Owners lists the keys of the mixin definitions open when it was emitted.
type Line struct {
	Text   string
	Owners []string
}

// Program is the intermediate program produced by the Generator: an ordered
// sequence of lines, each tagged with the mixin definitions that own it.
type Program struct {
	lines []Line
}

// Len returns the number of lines.
func (p *Program) Len() int {
	return len(p.lines)
}

func (p *Program) append(text string, owners []string) {
	var own []string
	if len(owners) > 0 {
		own = make([]string, len(owners))
		copy(own, owners)
	}
	p.lines = append(p.lines, Line{Text: text, Owners: own})
}

// Filter removes every line for which drop returns true and reports how
// many lines were removed.
func (p *Program) Filter(drop func(Line) bool) int {
	kept := p.lines[:0]
	removed := 0
	for _, l := range p.lines {
		if drop(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	p.lines = kept
	return removed
}

// String joins the program's lines with newlines.
func (p *Program) String() string {
	var sb strings.Builder
	for i, l := range p.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.Text)
	}
	return sb.String()
}
