package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// DefaultPointCacheSize bounds the number of parsed texts kept in memory.
const DefaultPointCacheSize = 256

// CFileAdapter encapsulates C-specific parsing so the insertion engine can
// work on annotation points without knowing about the grammar.
type CFileAdapter interface {
	// Points returns the annotation points of text in AST pre-order.
	Points(ctx context.Context, text string) ([]m.AnnotationPoint, error)

	// Includes returns the targets of quoted #include directives, in order.
	Includes(ctx context.Context, text string) ([]string, error)
}

// LocalCFileAdapter provides a CFileAdapter backed by tree-sitter.
// Results are memoized by the SHA-256 of the parsed text, so a point list is
// only ever served for the exact text it was computed from.
type LocalCFileAdapter struct {
	cache *lru.Cache[string, []m.AnnotationPoint]
}

// NewLocalCFileAdapter constructs a LocalCFileAdapter with a cache of the
// given size. A non-positive size selects DefaultPointCacheSize.
func NewLocalCFileAdapter(cacheSize int) (*LocalCFileAdapter, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultPointCacheSize
	}

	cache, err := lru.New[string, []m.AnnotationPoint](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create point cache: %w", err)
	}

	return &LocalCFileAdapter{cache: cache}, nil
}

// Points parses text and lists function, loop and block points.
func (a *LocalCFileAdapter) Points(ctx context.Context, text string) ([]m.AnnotationPoint, error) {
	key := Digest(text)
	if cached, ok := a.cache.Get(key); ok {
		return append([]m.AnnotationPoint(nil), cached...), nil
	}

	tree, err := parseC(ctx, text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		slog.Debug("C parse produced error nodes", "bytes", len(text))
	}

	lines := strings.Split(text, "\n")
	src := []byte(text)

	var points []m.AnnotationPoint

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		start := int(n.StartPoint().Row) + 1

		switch n.Type() {
		case "function_definition":
			if name := functionName(n, src); name != "" {
				points = append(points, m.AnnotationPoint{
					Line:    walkUpPreamble(lines, start),
					Context: m.ContextFunction,
					Name:    name,
					Indent:  indentAt(lines, start),
				})
			}
		case "for_statement", "while_statement", "do_statement":
			points = append(points, m.AnnotationPoint{
				Line:    start,
				Context: m.ContextLoop,
				Indent:  indentAt(lines, start),
			})
		case "compound_statement":
			points = append(points, m.AnnotationPoint{
				Line:    start,
				Context: m.ContextBlock,
				Indent:  indentAt(lines, start),
			})
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}

	walk(root)

	a.cache.Add(key, points)

	return append([]m.AnnotationPoint(nil), points...), nil
}

// Includes lists quoted include targets such as "list.h".
func (a *LocalCFileAdapter) Includes(ctx context.Context, text string) ([]string, error) {
	tree, err := parseC(ctx, text)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	src := []byte(text)

	var includes []string

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "preproc_include" {
			if path := n.ChildByFieldName("path"); path != nil && path.Type() == "string_literal" {
				includes = append(includes, strings.Trim(path.Content(src), `"`))
			}

			return
		}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}

	walk(tree.RootNode())

	return includes, nil
}

func parseC(ctx context.Context, text string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(text))
	if err != nil {
		slog.Error("failed to parse C text", "error", err)
		return nil, fmt.Errorf("failed to parse C text: %w", err)
	}

	return tree, nil
}

// functionName descends through pointer/parenthesized declarators to the
// identifier naming the function.
func functionName(n *sitter.Node, src []byte) string {
	decl := n.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Type() {
		case "identifier", "field_identifier":
			return decl.Content(src)
		case "function_declarator", "pointer_declarator", "parenthesized_declarator", "attributed_declarator":
			next := decl.ChildByFieldName("declarator")
			if next == nil && decl.NamedChildCount() > 0 {
				next = decl.NamedChild(0)
			}

			decl = next
		default:
			return ""
		}
	}

	return ""
}

// walkUpPreamble moves a function's insertion line above the contiguous run
// of #include and comment lines directly preceding it.
func walkUpPreamble(lines []string, line int) int {
	for line > 1 {
		prev := strings.TrimSpace(lines[line-2])
		if !isPreambleLine(prev) {
			break
		}

		line--
	}

	return line
}

func isPreambleLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#include") || isCommentLine(trimmed)
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}

// indentAt is the leading-whitespace width of the first non-blank,
// non-comment line at or after line.
func indentAt(lines []string, line int) int {
	for i := line - 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || isCommentLine(trimmed) {
			continue
		}

		return len(lines[i]) - len(strings.TrimLeft(lines[i], " \t"))
	}

	return 0
}

// Digest is the hex SHA-256 of text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
