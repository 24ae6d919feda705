package transform_test

import (
	"testing"

	"github.com/Gobd/fhiroas/transform"
	"github.com/stretchr/testify/assert"
)

type narrative struct {
	Documentation string
	Title         *string
	Notes         []string
	Children      []narrative
	ByCode        map[string]string
	raw           string
}

func TestStructTrimSpace(t *testing.T) {
	title := "  Patient  "
	n := &narrative{
		Documentation: " read ",
		Title:         &title,
		Notes:         []string{" a "},
		Children:      []narrative{{Documentation: " child "}},
		ByCode:        map[string]string{"x": " y "},
		raw:           " raw ",
	}

	transform.StructTrimSpace(n)

	assert.Equal(t, "read", n.Documentation)
	assert.Equal(t, "Patient", *n.Title)
	assert.Equal(t, []string{"a"}, n.Notes)
	assert.Equal(t, "child", n.Children[0].Documentation)
	assert.Equal(t, "y", n.ByCode["x"])
	assert.Equal(t, " raw ", n.raw)
}

func TestStructUnescapeHTML(t *testing.T) {
	n := &narrative{Documentation: "Search by &lt;b&gt;name&lt;/b&gt; &amp; birthdate"}

	transform.StructMulti(n, transform.StructUnescapeHTML, transform.StructTrimSpace)

	assert.Equal(t, "Search by <b>name</b> & birthdate", n.Documentation)
}

func TestStructStringFunc_NonStruct(t *testing.T) {
	s := "x"
	transform.StructStringFunc(&s, func(string) string { return "y" })
	assert.Equal(t, "x", s)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "line one<br/>line two", transform.EscapeMarkdown("line one\r\nline two", false))
	assert.Equal(t, "a &#124; b", transform.EscapeMarkdown("a | b", true))
	assert.Equal(t, "a | b", transform.EscapeMarkdown("a | b", false))
}

func TestUnescapeHTML_NoEntities(t *testing.T) {
	assert.Equal(t, "plain", transform.UnescapeHTML("plain"))
}
