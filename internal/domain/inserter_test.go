package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

func newTestInserter(t *testing.T, opts ...InserterOption) Inserter {
	t.Helper()

	parser, err := adapter.NewLocalCFileAdapter(16)
	require.NoError(t, err)

	return NewInserter(parser, opts...)
}

func unhinted(texts ...string) []m.AnnotationRequest {
	return m.RequestsFromAnnotations(texts)
}

const twoFunctions = `#include "add.h"

int add(int a, int b) {
    int r = a + b;
    return r;
}

int twice(int x) {
    return add(x, x);
}
`

func TestInserter_PlacesAboveMatchingFunction(t *testing.T) {
	ins := newTestInserter(t)

	result, err := ins.Insert(context.Background(), "int add(int a,int b){return a+b;}", unhinted("[[spec::add]]"))
	require.NoError(t, err)

	assert.Equal(t, "[[spec::add]]\nint add(int a,int b){return a+b;}", result.Text)
	assert.Empty(t, result.Unplaced)
	assert.Len(t, result.Placed, 1)
	assert.Equal(t, map[string]int{"[[spec::add]]": 1}, result.Locations)
}

func TestInserter_Idempotent(t *testing.T) {
	ins := newTestInserter(t)
	requests := unhinted(`[[rc::returns("int<i32>")]] add`, `[[rc::args("int<i32>")]] twice`)

	once, err := ins.Insert(context.Background(), twoFunctions, requests)
	require.NoError(t, err)

	twice, err := ins.Insert(context.Background(), once.Text, requests)
	require.NoError(t, err)

	assert.Equal(t, once.Text, twice.Text)
	assert.Len(t, twice.Placed, 2, "annotations already present count as placed")
	assert.Empty(t, twice.Unplaced)
}

func TestInserter_DuplicateRequestInOnePass(t *testing.T) {
	ins := newTestInserter(t)

	result, err := ins.Insert(context.Background(), twoFunctions, unhinted("[[spec::add]]", "  [[spec::add]]  "))
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(result.Text, "[[spec::add]]"))
}

func TestInserter_SameAnnotationOnTwoFunctions(t *testing.T) {
	ins := newTestInserter(t)
	text := "int add(int a, int b) { return a + b; }\n\nint sub(int a, int b) { return a - b; }\n"
	args := `[[rc::args("a @ int<i32>", "b @ int<i32>")]]`
	requests := []m.AnnotationRequest{
		{Text: args, Hint: &m.InsertionHint{Location: "add"}},
		{Text: args, Hint: &m.InsertionHint{Location: "sub"}},
	}

	once, err := ins.Insert(context.Background(), text, requests)
	require.NoError(t, err)

	want := args + "\nint add(int a, int b) { return a + b; }\n\n" + args + "\nint sub(int a, int b) { return a - b; }\n"
	assert.Equal(t, want, once.Text)
	assert.Len(t, once.Placed, 2)
	assert.Empty(t, once.Unplaced)

	again, err := ins.Insert(context.Background(), once.Text, requests)
	require.NoError(t, err)
	assert.Equal(t, once.Text, again.Text)
	assert.Len(t, again.Placed, 2)
}

func TestInserter_CommentAnnotationsAreIdempotent(t *testing.T) {
	ins := newTestInserter(t)
	requests := unhinted("// contract of add")

	once, err := ins.Insert(context.Background(), twoFunctions, requests)
	require.NoError(t, err)

	again, err := ins.Insert(context.Background(), once.Text, requests)
	require.NoError(t, err)

	assert.Equal(t, once.Text, again.Text)
	assert.Equal(t, 1, strings.Count(again.Text, "// contract of add"))
}

func TestInserter_DescendingOrderKeepsOriginalLines(t *testing.T) {
	ins := newTestInserter(t)
	requests := unhinted("// contract of twice", "// contract of add", "// second line for add")

	result, err := ins.Insert(context.Background(), twoFunctions, requests)
	require.NoError(t, err)

	want := `#include "add.h"

// contract of add
// second line for add
int add(int a, int b) {
    int r = a + b;
    return r;
}

// contract of twice
int twice(int x) {
    return add(x, x);
}
`
	assert.Equal(t, want, result.Text)

	var kept []string

	for _, l := range strings.Split(result.Text, "\n") {
		if !strings.HasPrefix(l, "// ") {
			kept = append(kept, l)
		}
	}

	assert.Equal(t, strings.Split(twoFunctions, "\n"), kept)
}

func TestInserter_WalksAboveIncludeRun(t *testing.T) {
	ins := newTestInserter(t)
	text := "#include <stdint.h>\n// adds\nint add(int a, int b) { return a + b; }\n"

	result, err := ins.Insert(context.Background(), text, unhinted("[[spec::add]]"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Text, "[[spec::add]]\n#include <stdint.h>\n"))
}

func TestInserter_FirstPreOrderFunctionWins(t *testing.T) {
	ins := newTestInserter(t)

	// "add" and "add_all" are both contained in the annotation; add_all comes
	// first in the tree.
	text := "int add_all(int *a, int n) { return 0; }\n\nint add(int a, int b) { return a + b; }\n"

	result, err := ins.Insert(context.Background(), text, unhinted("[[spec::add_all]]"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Locations["[[spec::add_all]]"])
}

func TestInserter_Hints(t *testing.T) {
	ins := newTestInserter(t)

	tests := []struct {
		name     string
		hint     m.InsertionHint
		wantLine int
		wantText string
	}{
		{
			name:     "function name",
			hint:     m.InsertionHint{Location: "twice"},
			wantLine: 8,
			wantText: "[[rc::trust_me]]",
		},
		{
			name:     "literal line keeps indentation",
			hint:     m.InsertionHint{Location: "5", Position: m.PositionBefore},
			wantLine: 5,
			wantText: "    [[rc::trust_me]]",
		},
		{
			name:     "after moves one line down",
			hint:     m.InsertionHint{Location: "4", Position: m.PositionAfter},
			wantLine: 5,
			wantText: "    [[rc::trust_me]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := tt.hint
			result, err := ins.Insert(context.Background(), twoFunctions, []m.AnnotationRequest{
				{Text: "[[rc::trust_me]]", Hint: &hint},
			})
			require.NoError(t, err)
			require.Empty(t, result.Unplaced)

			lines := strings.Split(result.Text, "\n")
			assert.Equal(t, tt.wantText, lines[tt.wantLine-1])
			assert.Equal(t, tt.wantLine, result.Locations["[[rc::trust_me]]"])
		})
	}
}

func TestInserter_UnresolvedHintIsReported(t *testing.T) {
	ins := newTestInserter(t)

	for _, location := range []string{"missing_fn", "0", "999"} {
		result, err := ins.Insert(context.Background(), twoFunctions, []m.AnnotationRequest{
			{Text: "[[rc::x]]", Hint: &m.InsertionHint{Location: location}},
		})
		require.NoError(t, err)

		assert.Equal(t, twoFunctions, result.Text, location)
		require.Len(t, result.Unplaced, 1, location)
		assert.Equal(t, "[[rc::x]]", result.Unplaced[0].Text)
	}
}

func TestInserter_UnmatchedIsNotDropped(t *testing.T) {
	ins := newTestInserter(t)

	result, err := ins.Insert(context.Background(), twoFunctions, unhinted("[[rc::global_invariant]]", "[[spec::add]]"))
	require.NoError(t, err)

	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, "[[rc::global_invariant]]", result.Unplaced[0].Text)

	final, added := PrependAnnotations(result.Text, m.AnnotationTexts(result.Unplaced))
	assert.Equal(t, []string{"[[rc::global_invariant]]"}, added)

	for _, a := range []string{"[[rc::global_invariant]]", "[[spec::add]]"} {
		assert.Contains(t, final, a)
	}
}

func TestInserter_NoPointsFallsBackToTop(t *testing.T) {
	ins := newTestInserter(t)

	result, err := ins.Insert(context.Background(), "int counter;\n", unhinted("first", "second", "third"))
	require.NoError(t, err)

	assert.Equal(t, "first\nsecond\nthird\nint counter;\n", result.Text)
	assert.Empty(t, result.Unplaced)
	assert.Empty(t, result.Points)
}

func TestInserter_GroupContinuation(t *testing.T) {
	requests := unhinted(`[[rc::function add]]`, `[[rc::args("int<i32>", "int<i32>")]]`, `[[rc::returns("int<i32>")]]`)

	t.Run("disabled", func(t *testing.T) {
		result, err := newTestInserter(t).Insert(context.Background(), twoFunctions, requests)
		require.NoError(t, err)
		assert.Len(t, result.Unplaced, 2)
	})

	t.Run("enabled", func(t *testing.T) {
		result, err := newTestInserter(t, WithGroupContinuation(true)).Insert(context.Background(), twoFunctions, requests)
		require.NoError(t, err)
		require.Empty(t, result.Unplaced)

		lines := strings.Split(result.Text, "\n")
		assert.Equal(t, `[[rc::function add]]`, lines[2])
		assert.Equal(t, `[[rc::args("int<i32>", "int<i32>")]]`, lines[3])
		assert.Equal(t, `[[rc::returns("int<i32>")]]`, lines[4])
		assert.Equal(t, "int add(int a, int b) {", lines[5])
	})
}

func TestPrependAnnotations(t *testing.T) {
	text, added := PrependAnnotations("int x;\n", []m.Annotation{"[[rc::a]]", "plain note", "// already a comment", "[[rc::a]]"})

	assert.Equal(t, "[[rc::a]]\n// plain note\n// already a comment\nint x;\n", text)
	assert.Equal(t, []string{"[[rc::a]]", "// plain note", "// already a comment"}, added)

	again, added := PrependAnnotations(text, []m.Annotation{"plain note"})
	assert.Equal(t, text, again)
	assert.Empty(t, added)
}

func TestNormalizeFallback(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"  [[rc::x]]  ":   "[[rc::x]]",
		"/* block */":     "/* block */",
		"// line":         "// line",
		"requires n > 0":  "// requires n > 0",
		"\tensures true ": "// ensures true",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeFallback(in), "input %q", in)
	}
}

func TestInsertDirective(t *testing.T) {
	const directive = "//@rc::import generated_lemmas from demo.proofs.add_c"

	t.Run("after existing directives", func(t *testing.T) {
		text := "//@rc::import list from refinedc.lithium\n// header\n#include \"add.h\"\nint x;\n"

		got := InsertDirective(text, directive)

		lines := strings.Split(got, "\n")
		assert.Equal(t, "//@rc::import list from refinedc.lithium", lines[0])
		assert.Equal(t, directive, lines[1])
		assert.Equal(t, "// header", lines[2])
	})

	t.Run("top of file without directives", func(t *testing.T) {
		text := "/* license */\n\n#include \"add.h\"\nint x;\n"

		got := InsertDirective(text, directive)
		assert.Equal(t, directive+"\n"+text, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := InsertDirective("int x;\n", directive)
		assert.Equal(t, once, InsertDirective(once, directive))
		assert.Equal(t, 1, strings.Count(once, directive))
	})
}
