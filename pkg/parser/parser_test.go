package parser

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const badgeSource = `import React from 'react';

export default function Badge() {
  return <span style={{ color: "red" }}>Hi</span>;
}
`

func newTestManager(t *testing.T) *ParserManager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	manager := NewParserManager(logger)
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestParseTSX(t *testing.T) {
	manager := newTestManager(t)

	tree, err := manager.Parse([]byte(badgeSource), LanguageTypeScript, true)
	require.NoError(t, err)
	require.NotNil(t, tree)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())
	assert.False(t, root.HasError())
	assert.Contains(t, root.ToSexp(), "jsx_element")
	assert.Nil(t, FirstSyntaxError(tree, []byte(badgeSource)))
}

func TestParseJSX(t *testing.T) {
	manager := newTestManager(t)

	source := []byte(`const Card = () => <div className="card"><h2>Title</h2></div>;`)
	tree, err := manager.Parse(source, LanguageJavaScript, false)
	require.NoError(t, err)
	defer tree.Close()

	assert.Equal(t, "program", tree.RootNode().Kind())
	assert.Contains(t, tree.RootNode().ToSexp(), "jsx_element")
}

func TestParseFile(t *testing.T) {
	manager := newTestManager(t)

	testCases := []struct {
		fileName string
		source   string
		hasError bool
	}{
		{"Badge.tsx", badgeSource, false},
		{"Badge.jsx", `export default function Badge() { return <span>Hi</span> }`, false},
		{"util.ts", `const n = <number>value;`, false},
	}

	for _, tc := range testCases {
		t.Run(tc.fileName, func(t *testing.T) {
			tree, err := manager.ParseFile([]byte(tc.source), tc.fileName)
			require.NoError(t, err)
			defer tree.Close()
			assert.Equal(t, tc.hasError, tree.RootNode().HasError())
		})
	}

	_, err := manager.ParseFile([]byte("x"), "README.md")
	assert.Error(t, err)
}

func TestLazyInitialization(t *testing.T) {
	manager := newTestManager(t)

	assert.Equal(t, 0, manager.GetStats().ParsersCreated)

	source := []byte("const x: number = 1;")
	for i := 0; i < 2; i++ {
		tree, err := manager.Parse(source, LanguageTypeScript, true)
		require.NoError(t, err)
		tree.Close()
	}

	stats := manager.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated, "parser should be reused")
	assert.Equal(t, 2, stats.ParsesCalled)

	tree, err := manager.Parse([]byte("const y = 2;"), LanguageJavaScript, false)
	require.NoError(t, err)
	tree.Close()

	stats = manager.GetStats()
	assert.Equal(t, 2, stats.ParsersCreated)
	assert.Equal(t, 3, stats.ParsesCalled)
}

func TestParseUnknownLanguage(t *testing.T) {
	manager := newTestManager(t)

	tree, err := manager.Parse([]byte("some random text"), LanguageUnknown, false)
	assert.Error(t, err)
	assert.Nil(t, tree)
}

func TestFirstSyntaxError(t *testing.T) {
	manager := newTestManager(t)

	testCases := []struct {
		name   string
		source string
		line   int
	}{
		{"unclosed element", "export default function A() {\n  return <div>\n}\n", 2},
		{"dangling operator", "const x = ;", 1},
		{"broken attribute", "const A = () => <div className=></div>;", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := manager.Parse([]byte(tc.source), LanguageTypeScript, true)
			require.NoError(t, err, "tree-sitter recovers from syntax errors")
			defer tree.Close()

			se := FirstSyntaxError(tree, []byte(tc.source))
			require.NotNil(t, se)
			assert.GreaterOrEqual(t, se.Line, 1)
			assert.LessOrEqual(t, se.Line, tc.line+1)
			assert.GreaterOrEqual(t, se.Column, 1)
			assert.Contains(t, se.Error(), "Failed to parse component")
		})
	}

	stats := manager.GetStats()
	assert.Equal(t, len(testCases), stats.ParsesFailed)
}

func TestFirstSyntaxError_NilTree(t *testing.T) {
	se := FirstSyntaxError(nil, nil)
	require.NotNil(t, se)
	assert.Equal(t, 1, se.Line)
}

func TestSyntaxErrorMessage(t *testing.T) {
	assert.Equal(t, `Failed to parse component: unexpected "=>" (3:7)`,
		(&SyntaxError{Line: 3, Column: 7, Snippet: "=>"}).Error())
	assert.Equal(t, `Failed to parse component: missing } (1:10)`,
		(&SyntaxError{Line: 1, Column: 10, Missing: true, Kind: "}"}).Error())
	assert.Equal(t, `Failed to parse component: unexpected end of input (2:1)`,
		(&SyntaxError{Line: 2, Column: 1}).Error())
}

func TestSnippetTruncates(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"
	assert.Equal(t, long[:maxSnippet]+"...", snippet(long))
	assert.Equal(t, "first", snippet("  first\nsecond"))
}

func TestMemoryCleanup(t *testing.T) {
	manager := NewParserManager(nil)

	for _, lang := range []Language{LanguageTypeScript, LanguageJavaScript} {
		tree, err := manager.Parse([]byte("const x = 1;"), lang, true)
		require.NoError(t, err)
		tree.Close()
	}

	assert.NoError(t, manager.Close())
	assert.Empty(t, manager.pools)
}

func TestLanguageDetection(t *testing.T) {
	testCases := []struct {
		filePath string
		expected Language
		plainTS  bool
		tsx      bool
	}{
		{"Badge.tsx", LanguageTypeScript, false, true},
		{"Badge.TSX", LanguageTypeScript, false, true},
		{"util.ts", LanguageTypeScript, true, false},
		{"util.mts", LanguageTypeScript, true, false},
		{"Card.jsx", LanguageJavaScript, false, false},
		{"card.mjs", LanguageJavaScript, false, false},
		{"styles.css", LanguageUnknown, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.filePath, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectLanguage(tc.filePath))
			assert.Equal(t, tc.plainTS, IsPlainTSFile(tc.filePath))
			assert.Equal(t, tc.tsx, IsTSXFile(tc.filePath))
		})
	}
}

func TestParseLanguageString(t *testing.T) {
	testCases := []struct {
		input    string
		expected Language
	}{
		{"typescript", LanguageTypeScript},
		{"TSX", LanguageTypeScript},
		{"js", LanguageJavaScript},
		{"jsx", LanguageJavaScript},
		{"python", LanguageUnknown},
		{"", LanguageUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLanguageString(tc.input))
		})
	}
	assert.Equal(t, "unknown", LanguageUnknown.String())
}
