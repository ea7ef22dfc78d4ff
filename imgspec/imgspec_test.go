package imgspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlesthegreat77/xdvdfs-go/pathrewrite"
)

const sampleDoc = `
metadata:
  output: game.iso
map_rules:
  - bin: /
  - assets/**: /assets/{1}
  - "!sound/excluded.*": ""
  - sound/excluded.c: /c/excluded
`

func TestParseOrderedMapRules(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), "/src")
	require.NoError(t, err, "Parse should decode a well-formed document")

	assert.Equal(t, "game.iso", doc.Metadata.Output)
	require.Len(t, doc.Rules, 4, "map_rules should decode to 4 ordered rules")

	assert.Equal(t, "sound/excluded.*", doc.Rules[2].Pattern)
	assert.True(t, doc.Rules[2].Exclude, "a \"!\"-prefixed key is an exclusion regardless of its value")

	assert.Equal(t, "sound/excluded.c", doc.Rules[3].Pattern)
	assert.Equal(t, "/c/excluded", doc.Rules[3].Template)
}

func TestResolveOutputRelativeToBaseDir(t *testing.T) {
	doc := &Document{Metadata: Metadata{Output: "out.iso"}, BaseDir: "/work/spec"}
	assert.Equal(t, "/work/spec/out.iso", doc.ResolveOutput())

	doc.Metadata.Output = "/abs/out.iso"
	assert.Equal(t, "/abs/out.iso", doc.ResolveOutput(), "an absolute Output should pass through untouched")
}

func TestParseRuleArgAndFormatRuleArgRoundTrip(t *testing.T) {
	cases := []string{"bin=/", "!sound/excluded.*", "assets/**=/assets/{1}"}
	for _, arg := range cases {
		r, err := ParseRuleArg(arg)
		require.NoErrorf(t, err, "ParseRuleArg(%q)", arg)
		assert.Equal(t, arg, FormatRuleArg(r), "FormatRuleArg should invert ParseRuleArg")
	}
}

func TestDocumentMarshalParseRoundTrip(t *testing.T) {
	doc := New("game.iso", []pathrewrite.Rule{
		{Pattern: "bin", Template: "/"},
		{Pattern: "sound/excluded.*", Exclude: true},
	}, "/src")

	data, err := doc.Marshal()
	require.NoError(t, err)

	reparsed, err := Parse(data, "/src")
	require.NoError(t, err, "Parse(Marshal(doc)) should round trip")

	require.Len(t, reparsed.Rules, len(doc.Rules))
	for i := range doc.Rules {
		assert.Equal(t, doc.Rules[i], reparsed.Rules[i], "rule %d should survive the round trip", i)
	}
	assert.Equal(t, doc.Metadata.Output, reparsed.Metadata.Output)
}

func TestEngineCompilesDocumentRules(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), "/src")
	require.NoError(t, err)
	engine, err := doc.Engine()
	require.NoError(t, err)

	_, ok, err := engine.Rewrite("sound/excluded.b")
	require.NoError(t, err)
	assert.False(t, ok, "sound/excluded.b should be dropped by the exclude rule")

	out, ok, err := engine.Rewrite("sound/excluded.c")
	require.NoError(t, err)
	require.True(t, ok, "the later, more specific include rule should reclaim sound/excluded.c")
	assert.Equal(t, "/c/excluded", out)
}
