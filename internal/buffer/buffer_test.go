package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saqif-community/shardkv/internal/buffer"
)

func TestBufferAccumulatesBytes(t *testing.T) {
	b := buffer.New(0)
	b.WriteByte('a')
	b.Write([]byte("bc"))
	b.WriteString("de")

	require.Equal(t, "abcde", b.String())
	require.Equal(t, 5, b.Len())
}

func TestBufferResetReusesBackingArray(t *testing.T) {
	b := buffer.New(4)
	b.WriteString("hello")
	first := b.Bytes()

	b.Reset()
	require.Equal(t, 0, b.Len())

	b.WriteString("hi")
	require.Equal(t, "hi", b.String())
	// Reset must not have reallocated for a write that still fits.
	require.Same(t, &first[0], &b.Bytes()[0])
}

func TestBufferGrowsPastInitialCapacity(t *testing.T) {
	b := buffer.New(1)
	for i := 0; i < 1000; i++ {
		b.WriteByte('x')
	}
	require.Equal(t, 1000, b.Len())
}
