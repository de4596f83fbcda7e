package glob_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saqif-community/shardkv/internal/glob"
)

func match(t *testing.T, pattern, subject string) bool {
	t.Helper()
	return glob.Match([]byte(pattern), []byte(subject))
}

func TestMatchBoundaryCases(t *testing.T) {
	require.True(t, match(t, "*", "abc"))
	require.True(t, match(t, "a?c", "abc"))
	require.True(t, match(t, "[abc]", "b"))
	require.True(t, match(t, "a*b", "aXYb"))
	require.False(t, match(t, "a*b", "aXY"))
}

func TestMatchNegatedClass(t *testing.T) {
	require.True(t, match(t, "[^abc]", "d"))
	require.False(t, match(t, "[^abc]", "a"))
}

func TestMatchRangeClass(t *testing.T) {
	require.True(t, match(t, "[a-z]", "m"))
	require.False(t, match(t, "[a-z]", "M"))
}

func TestMatchEscape(t *testing.T) {
	require.True(t, match(t, `\*`, "*"))
	require.False(t, match(t, `\*`, "x"))
}

func TestMatchEmptyPattern(t *testing.T) {
	require.True(t, match(t, "", ""))
	require.False(t, match(t, "", "x"))
}

func TestMatchMultipleStars(t *testing.T) {
	require.True(t, match(t, "*a*b*", "xaxbx"))
	require.True(t, match(t, "**", "anything"))
}
