package structdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(scripts ...string) []byte {
	html := "<html><head><title>t</title>"
	for _, s := range scripts {
		html += s
	}
	return []byte(html + "</head><body><p>recipe</p></body></html>")
}

func TestParseTakesFirstArrayElement(t *testing.T) {
	t.Parallel()

	content := page(`<script type="application/ld+json">[{"@type":"Recipe","name":"Pie"},{"name":"Other"}]</script>`)
	doc, err := Parse(content)
	require.NoError(t, err)

	name, ok := doc.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "Pie", name.String())

	typ, ok := doc.Lookup("@type")
	require.True(t, ok)
	assert.Equal(t, "Recipe", typ.String())
}

func TestParseUsesFirstLinkedDataBlock(t *testing.T) {
	t.Parallel()

	content := page(
		`<script type="text/javascript">var x = {"name":"js"};</script>`,
		`<script type="Application/LD+JSON; charset=utf-8">{"name":"First"}</script>`,
		`<script type="application/ld+json">{"name":"Second"}</script>`,
	)
	doc, err := Parse(content)
	require.NoError(t, err)
	name, _ := doc.Lookup("name")
	assert.Equal(t, "First", name.String())
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content []byte
		want    error
	}{
		{name: "no block", content: page(), want: ErrNoBlock},
		{name: "empty block", content: page(`<script type="application/ld+json">  </script>`), want: ErrEmptyBlock},
		{name: "invalid json", content: page(`<script type="application/ld+json">{"name": </script>`), want: ErrInvalidJSON},
		{name: "empty array", content: page(`<script type="application/ld+json">[]</script>`), want: ErrEmptyArray},
		{name: "scalar", content: page(`<script type="application/ld+json">"recipe"</script>`), want: ErrNotObject},
		{name: "array of scalars", content: page(`<script type="application/ld+json">[1,2]</script>`), want: ErrNotObject},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.content)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFieldMatchesKeysLiterally(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument(`{"@graph":[1],"a.b":"dotted","name":"n"}`)
	require.NoError(t, err)

	v, ok := doc.Lookup("a.b")
	require.True(t, ok)
	assert.Equal(t, "dotted", v.String())

	_, ok = doc.Lookup("missing")
	assert.False(t, ok)

	_, ok = Field(doc.Root().Get("name"), "x")
	assert.False(t, ok)
}
