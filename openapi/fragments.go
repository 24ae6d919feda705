package openapi

import (
	"strings"
)

type fragmentKind int

const (
	rowFragment fragmentKind = iota
	noteFragment
)

// Fragment is one piece of search parameter documentation: a table row or
// a free standing note.
type Fragment struct {
	Kind fragmentKind
	Text string
}

// Fragments accumulates search parameter documentation in order. Values are
// never modified in place, so a resolved chain can share its tail with the
// direct resolution of that tail.
type Fragments []Fragment

const conformanceTableHeader = "\n\n **Search Parameter Conformance** \n\n" +
	" | Conformance Expectation | Name | OAS format / FHIR Type | Expression | Description | \n" +
	" |--------|--------|--------|--------|--------| \n"

// Row returns f with a table row built from cells.
func (f Fragments) Row(cells ...string) Fragments {
	return f.with(Fragment{rowFragment, " | " + strings.Join(cells, " | ") + " | \n"})
}

// Note returns f with a note paragraph.
func (f Fragments) Note(text string) Fragments {
	return f.with(Fragment{noteFragment, text})
}

// Concat returns f followed by g.
func (f Fragments) Concat(g Fragments) Fragments {
	out := make(Fragments, 0, len(f)+len(g))
	return append(append(out, f...), g...)
}

func (f Fragments) with(x Fragment) Fragments {
	out := make(Fragments, len(f), len(f)+1)
	copy(out, f)
	return append(out, x)
}

// Rows returns the number of table rows.
func (f Fragments) Rows() int {
	n := 0
	for _, x := range f {
		if x.Kind == rowFragment {
			n++
		}
	}
	return n
}

// Markdown renders the conformance table, headed once, followed by the notes.
func (f Fragments) Markdown() string {
	var b strings.Builder
	if f.Rows() > 0 {
		b.WriteString(conformanceTableHeader)
		for _, x := range f {
			if x.Kind == rowFragment {
				b.WriteString(x.Text)
			}
		}
	}
	for _, x := range f {
		if x.Kind == noteFragment {
			b.WriteString("\n\n ")
			b.WriteString(x.Text)
		}
	}
	return b.String()
}
