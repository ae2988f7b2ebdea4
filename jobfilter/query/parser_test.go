package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("   "))
	assert.Nil(t, Parse("()"))
}

func TestParseLeaf(t *testing.T) {
	n := Parse("  salary_min>=50000 ")
	assert.Equal(t, Leaf{Expr: "salary_min>=50000"}, n)
}

func TestParseAndExpression(t *testing.T) {
	n := Parse("job_type=full-time AND is_remote=true")
	and, ok := n.(And)
	require.True(t, ok, "expected And, got %T", n)
	assert.Equal(t, []Node{Leaf{"job_type=full-time"}, Leaf{"is_remote=true"}}, and.Parts)
}

func TestParseOrExpression(t *testing.T) {
	n := Parse("a=1 or b=2 OR c=3")
	or, ok := n.(Or)
	require.True(t, ok, "expected Or, got %T", n)
	assert.Len(t, or.Parts, 3)
}

func TestParseOrBindsLoosest(t *testing.T) {
	n := Parse("a=1 AND b=2 OR c=3")
	or, ok := n.(Or)
	require.True(t, ok, "expected Or, got %T", n)
	require.Len(t, or.Parts, 2)
	assert.Equal(t, And{Parts: []Node{Leaf{"a=1"}, Leaf{"b=2"}}}, or.Parts[0])
	assert.Equal(t, Leaf{"c=3"}, or.Parts[1])
}

func TestParseParenthesizedGroup(t *testing.T) {
	n := Parse("(job_type=full-time AND (languages HAS_ANY (PHP,JavaScript))) AND (locations IS_ANY (New York,Remote))")
	and, ok := n.(And)
	require.True(t, ok, "expected And, got %T", n)
	require.Len(t, and.Parts, 2)

	inner, ok := and.Parts[0].(And)
	require.True(t, ok, "expected nested And, got %T", and.Parts[0])
	assert.Equal(t, Leaf{"job_type=full-time"}, inner.Parts[0])
	assert.Equal(t, Leaf{"languages HAS_ANY (PHP,JavaScript)"}, inner.Parts[1])
	assert.Equal(t, Leaf{"locations IS_ANY (New York,Remote)"}, and.Parts[1])
}

func TestParseDoesNotSplitInsideParens(t *testing.T) {
	n := Parse("(a=1 OR b=2) AND c=3")
	and, ok := n.(And)
	require.True(t, ok, "expected And, got %T", n)
	assert.IsType(t, Or{}, and.Parts[0])
}

func TestParseSiblingGroupsAreNotOuterParens(t *testing.T) {
	n := Parse("(a=1) OR (b=2)")
	assert.Equal(t, Or{Parts: []Node{Leaf{"a=1"}, Leaf{"b=2"}}}, n)
}

func TestParseDepthGuard(t *testing.T) {
	expr := strings.Repeat("(", 10) + "a=1" + strings.Repeat(")", 10)
	n := ParseWithOptions(expr, ParseOptions{MaxDepth: 4})
	inv, ok := n.(Invalid)
	require.True(t, ok, "expected Invalid, got %T", n)
	assert.Contains(t, inv.Reason, "4")

	assert.Equal(t, Leaf{"a=1"}, ParseWithOptions(expr, ParseOptions{MaxDepth: 20}))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "((a=1 AND b=2) OR c=3)", Format(Parse("a=1 AND b=2 OR c=3")))
	assert.Equal(t, "", Format(nil))
}
