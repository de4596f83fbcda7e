package resp_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/saqif-community/shardkv/internal/resp"
)

func scanSpec() ([]resp.PositionalField, []resp.FlagField) {
	positionals := []resp.PositionalField{
		{Name: "cursor", Type: resp.FieldInt64, Required: true},
	}
	flags := []resp.FlagField{
		{Name: "MATCH", Type: resp.FlagString},
		{Name: "COUNT", Type: resp.FlagInt64},
	}
	return positionals, flags
}

func TestReadParametersCursorOnly(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$1\r\n0\r\n"))
	pos, flags := scanSpec()
	result, err := r.ReadParameters(1, pos, flags)
	require.NoError(t, err)
	require.EqualValues(t, 0, result.Positionals["cursor"].Int64)
	require.Equal(t, 1, result.Consumed)
}

func TestReadParametersCursorWithMatchAndCount(t *testing.T) {
	// SCAN 0 MATCH foo* COUNT 20
	wire := "$1\r\n0\r\n" +
		"$5\r\nMATCH\r\n$4\r\nfoo*\r\n" +
		"$5\r\nCOUNT\r\n$2\r\n20\r\n"
	r := resp.NewReader(strings.NewReader(wire))
	pos, flags := scanSpec()
	result, err := r.ReadParameters(5, pos, flags)
	require.NoError(t, err)

	require.EqualValues(t, 0, result.Positionals["cursor"].Int64)
	require.Equal(t, "foo*", string(result.Flags["MATCH"].Str))
	require.EqualValues(t, 20, result.Flags["COUNT"].Int64)
	require.Equal(t, 5, result.Consumed)
}

func TestReadParametersUnknownFlagIsInvalidParameters(t *testing.T) {
	wire := "$1\r\n0\r\n$4\r\nNOPE\r\n"
	r := resp.NewReader(strings.NewReader(wire))
	pos, flags := scanSpec()
	_, err := r.ReadParameters(2, pos, flags)
	require.Error(t, err)
}

func TestReadParametersNativeIntegerCursor(t *testing.T) {
	r := resp.NewReader(strings.NewReader(":42\r\n"))
	pos, flags := scanSpec()
	result, err := r.ReadParameters(1, pos, flags)
	require.NoError(t, err)
	require.EqualValues(t, 42, result.Positionals["cursor"].Int64)
}

func TestReadParametersNativeAndStringCursorProduceEqualResults(t *testing.T) {
	pos, flags := scanSpec()

	native := resp.NewReader(strings.NewReader(":42\r\n"))
	nativeResult, err := native.ReadParameters(1, pos, flags)
	require.NoError(t, err)

	stringified := resp.NewReader(strings.NewReader("$2\r\n42\r\n"))
	stringResult, err := stringified.ReadParameters(1, pos, flags)
	require.NoError(t, err)

	if diff := cmp.Diff(nativeResult.Positionals, stringResult.Positionals); diff != "" {
		t.Errorf("native vs stringified cursor parsing differ (-native +string):\n%s", diff)
	}
}
