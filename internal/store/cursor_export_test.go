package store

import "testing"

func TestCursorPackRoundTrips(t *testing.T) {
	cases := []struct {
		seg int
		off uint32
	}{
		{0, 0},
		{1, 1},
		{65535, 4294967295},
		{16, 0},
	}
	for _, c := range cases {
		packed := packCursor(c.seg, c.off)
		gotSeg, gotOff := unpackCursor(packed)
		if gotSeg != c.seg || gotOff != c.off {
			t.Fatalf("pack/unpack mismatch: want (%d,%d) got (%d,%d)", c.seg, c.off, gotSeg, gotOff)
		}
	}
}

func TestCursorZeroMeansStart(t *testing.T) {
	seg, off := unpackCursor(0)
	if seg != 0 || off != 0 {
		t.Fatalf("expected (0,0), got (%d,%d)", seg, off)
	}
}
