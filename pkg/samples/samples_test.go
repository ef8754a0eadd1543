package samples

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/compedit/pkg/codegen"
	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/extractor"
	"github.com/gnana997/compedit/pkg/parser"
	"github.com/gnana997/compedit/pkg/parser/queries"
)

func TestGet(t *testing.T) {
	s, ok := Get("badge")
	require.True(t, ok)
	assert.Equal(t, "Badge", s.Name)
	assert.Contains(t, s.Code, "export default function Badge")

	_, ok = Get("Carousel")
	assert.False(t, ok)
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, len(Names()))
	assert.Equal(t, "Button", all[0].Name)
}

func newParser(t *testing.T) *extractor.Parser {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	pm := parser.NewParserManager(logger)
	qm := queries.NewQueryManager(pm, logger)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return extractor.New(pm, qm, logger)
}

// outline lists tag names and text content in walk order.
func outline(roots []*element.Node) []string {
	var out []string
	element.Walk(roots, func(n *element.Node, _ int) bool {
		out = append(out, n.TagName+"|"+n.TextContent)
		return true
	})
	return out
}

func TestSamplesExtract(t *testing.T) {
	p := newParser(t)

	for _, s := range All() {
		t.Run(s.Name, func(t *testing.T) {
			pc, err := p.Parse(context.Background(), s.Code)
			require.NoError(t, err)
			assert.Equal(t, s.Name, pc.Name)
			assert.NotEmpty(t, pc.Elements)
			assert.Equal(t, []string{"react"}, pc.Dependencies)
		})
	}
}

// TestSamplesRegenerate checks that generated source for every sample parses
// again, including samples whose children are captured expressions.
func TestSamplesRegenerate(t *testing.T) {
	p := newParser(t)

	for _, s := range All() {
		t.Run(s.Name, func(t *testing.T) {
			first, err := p.Parse(context.Background(), s.Code)
			require.NoError(t, err)

			code := codegen.Generate(first.Elements, first.Name)
			second, err := p.Parse(context.Background(), code)
			require.NoError(t, err, "regenerated source does not parse:\n%s", code)

			assert.Equal(t, first.Name, second.Name)
			assert.Equal(t, element.Count(first.Elements), element.Count(second.Elements))
			assert.Equal(t, outline(first.Elements), outline(second.Elements))
		})
	}
}
