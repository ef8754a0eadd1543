// Package extractor turns component source text into an editable element
// tree.
//
// Parsing is delegated to the tree-sitter grammars in pkg/parser; this
// package only walks the resulting syntax tree. Extraction itself never fails:
// a missing component name falls back to element.DefaultComponentName and a
// file without markup yields no elements. The only hard error is a syntax
// error in the source, reported as *parser.SyntaxError.
package extractor

import (
	"context"
	"fmt"
	"log/slog"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/parser"
	"github.com/gnana997/compedit/pkg/parser/queries"
)

// Options tunes a Parser.
type Options struct {
	// KeepTree stores the syntax tree on the ParsedComponent instead of
	// closing it. The caller must then call ParsedComponent.Close.
	KeepTree bool
}

// Parser parses component source into element.ParsedComponent values.
//
// Usage:
//
//	p := extractor.New(parserManager, queryManager, logger)
//	component, err := p.Parse(ctx, code)
//	if err != nil {
//	    return err // *parser.SyntaxError
//	}
//
// A Parser is safe for concurrent use.
type Parser struct {
	parserManager *parser.ParserManager
	queryManager  *queries.QueryManager
	logger        *slog.Logger
	opts          Options
}

// New creates a Parser. Logger can be nil.
func New(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger, opts ...Options) *Parser {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Parser{
		parserManager: pm,
		queryManager:  qm,
		logger:        logger,
	}
	if len(opts) > 0 {
		p.opts = opts[0]
	}
	return p
}

// Parse parses TSX source and extracts the component.
func (p *Parser) Parse(ctx context.Context, code string) (*element.ParsedComponent, error) {
	return p.parse(ctx, code, parser.LanguageTypeScript, true)
}

// ParseFile parses source with the grammar implied by filePath.
func (p *Parser) ParseFile(ctx context.Context, filePath, code string) (*element.ParsedComponent, error) {
	lang := parser.DetectLanguage(filePath)
	if lang == parser.LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return p.parse(ctx, code, lang, !parser.IsPlainTSFile(filePath))
}

func (p *Parser) parse(ctx context.Context, code string, lang parser.Language, isTSX bool) (*element.ParsedComponent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := []byte(code)
	tree, err := p.parserManager.Parse(source, lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to parse component: %w", err)
	}

	if se := parser.FirstSyntaxError(tree, source); se != nil {
		tree.Close()
		p.logger.Debug("component has syntax errors",
			"line", se.Line,
			"column", se.Column)
		return nil, se
	}

	component := p.Extract(tree, source, lang, isTSX)
	if p.opts.KeepTree {
		component.Tree = tree
	} else {
		tree.Close()
	}

	p.logger.Debug("extracted component",
		"name", component.Name,
		"dependencies", len(component.Dependencies),
		"roots", len(component.Elements),
		"elements", element.Count(component.Elements))

	return component, nil
}

// Extract builds a ParsedComponent from an already parsed tree. It is total:
// any tree, even one containing error nodes, produces a result.
func (p *Parser) Extract(tree *ts.Tree, source []byte, lang parser.Language, isTSX bool) *element.ParsedComponent {
	component := &element.ParsedComponent{
		Name:         element.DefaultComponentName,
		Code:         string(source),
		Dependencies: []string{},
		Elements:     []*element.Node{},
	}
	if tree == nil {
		return component
	}

	root := tree.RootNode()
	component.Name = resolveComponentName(root, source)
	component.Dependencies = p.dependencies(tree, root, source, lang, isTSX)

	b := &builder{source: source}
	component.Elements = b.roots(root)
	return component
}

// dependencies lists import sources via the import query, falling back to a
// direct walk of top-level import statements if the query is unavailable.
func (p *Parser) dependencies(tree *ts.Tree, root *ts.Node, source []byte, lang parser.Language, isTSX bool) []string {
	if p.queryManager != nil {
		deps, err := p.queryManager.ImportSources(tree, lang, isTSX, source)
		if err == nil {
			if deps == nil {
				deps = []string{}
			}
			return deps
		}
		p.logger.Warn("import query failed, scanning statements", "error", err)
	}

	deps := []string{}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		if stmt == nil || stmt.Kind() != "import_statement" {
			continue
		}
		if src := stmt.ChildByFieldName("source"); src != nil {
			deps = append(deps, stringLiteral(src, source))
		}
	}
	return deps
}
