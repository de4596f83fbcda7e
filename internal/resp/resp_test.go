package resp_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saqif-community/shardkv/internal/resp"
)

func TestWriteThenReadBulkStringRoundTrips(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("hello"),
		[]byte{0x00, 0x01, 0xff, '\r', '\n'},
		bytes.Repeat([]byte("x"), 10000),
	}
	for _, v := range cases {
		var buf bytes.Buffer
		w := resp.NewWriter(&buf)
		require.NoError(t, w.WriteBulkString(v))

		r := resp.NewReader(&buf)
		got, err := r.ReadString()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestWriteThenReadIntegerRoundTrips(t *testing.T) {
	// The reader accepts at most 18 digits (see TestIntegerWith19DigitsIsInvalidValue),
	// so the extremes here are the largest 18-digit magnitudes.
	cases := []int64{0, 1, -1, 999999999999999999, -999999999999999999, 100000000000000000, -100000000000000000}
	for _, n := range cases {
		var buf bytes.Buffer
		w := resp.NewWriter(&buf)
		require.NoError(t, w.WriteInteger(n))

		r := resp.NewReader(&buf)
		got, err := r.ReadI64()
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestNullBulkString(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$-1\r\n"))
	got, err := r.ReadString()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEmptyBulkString(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$0\r\n\r\n"))
	got, err := r.ReadString()
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestIntegerWith19DigitsIsInvalidValue(t *testing.T) {
	r := resp.NewReader(strings.NewReader(":1000000000000000000\r\nREST"))
	_, err := r.ReadI64()
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrInvalidValue))
}

func TestSimpleStringOverLimitIsInvalidValueButStreamStaysFramed(t *testing.T) {
	over := strings.Repeat("a", 1025)
	r := resp.NewReader(strings.NewReader("+" + over + "\r\n*1\r\n$4\r\nPING\r\n"))
	_, err := r.ReadString()
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrInvalidValue))

	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestReadI64NonDigitBodyLeavesStreamFramed(t *testing.T) {
	r := resp.NewReader(strings.NewReader(":4x\r\n*1\r\n$4\r\nPING\r\n"))
	_, err := r.ReadI64()
	require.Error(t, err)

	var respErr *resp.Error
	require.True(t, errors.As(err, &respErr))
	require.True(t, respErr.Framed)

	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestReadI64StringNonDigitBulkBodyLeavesStreamFramed(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$3\r\nabc\r\n*1\r\n$4\r\nPING\r\n"))
	_, err := r.ReadI64String()
	require.Error(t, err)

	var respErr *resp.Error
	require.True(t, errors.As(err, &respErr))
	require.True(t, respErr.Framed)

	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestReadTypePrefixMismatchLeavesStreamUnframed(t *testing.T) {
	r := resp.NewReader(strings.NewReader(":42\r\n"))
	_, err := r.ReadString()
	require.Error(t, err)

	var respErr *resp.Error
	require.True(t, errors.As(err, &respErr))
	require.False(t, respErr.Framed)
}

func TestLFWithoutCRIsProtocolError(t *testing.T) {
	r := resp.NewReader(strings.NewReader("+OK\n"))
	_, err := r.ReadString()
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrProtocol))
}

func TestDiscardArrayNestingFiveFails(t *testing.T) {
	nested := "*1\r\n*1\r\n*1\r\n*1\r\n*1\r\n$3\r\nfoo\r\n"
	r := resp.NewReader(strings.NewReader(nested))
	err := r.DiscardValue()
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrRecursionLimit))
}

func TestDiscardArrayNestingFourSucceeds(t *testing.T) {
	nested := "*1\r\n*1\r\n*1\r\n*1\r\n$3\r\nfoo\r\n"
	r := resp.NewReader(strings.NewReader(nested))
	require.NoError(t, r.DiscardValue())
}

func TestReadArrayHeaderNullNormalizesToMinusOne(t *testing.T) {
	r := resp.NewReader(strings.NewReader("*-5\r\n"))
	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	require.EqualValues(t, -1, n)
}

func TestReadEnumCaseInsensitive(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$5\r\nmatch\r\n"))
	v, err := r.ReadEnum([]string{"MATCH", "COUNT"})
	require.NoError(t, err)
	require.Equal(t, "MATCH", v)
}

func TestReadEnumUnknownIsInvalidValue(t *testing.T) {
	r := resp.NewReader(strings.NewReader("$4\r\nnope\r\n"))
	_, err := r.ReadEnum([]string{"MATCH", "COUNT"})
	require.Error(t, err)
	require.True(t, errors.Is(err, resp.ErrInvalidValue))
}

func TestFramingEndToEndPingPing(t *testing.T) {
	r := resp.NewReader(strings.NewReader("*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n"))

	n, err := r.ReadArrayHeader()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	cmd, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "PING", string(cmd))

	n, err = r.ReadArrayHeader()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestPeekTypePrefixDoesNotConsume(t *testing.T) {
	r := resp.NewReader(strings.NewReader(":42\r\n"))

	prefix, err := r.PeekTypePrefix()
	require.NoError(t, err)
	require.Equal(t, resp.Integer, prefix)

	n, err := r.ReadI64()
	require.NoError(t, err)
	require.EqualValues(t, 42, n)
}

func TestReadErrorStripsPrefix(t *testing.T) {
	r := resp.NewReader(strings.NewReader("-oops\r\n"))
	msg, err := r.ReadError()
	require.NoError(t, err)
	require.Equal(t, "oops", string(msg))
}
