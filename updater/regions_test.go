package updater

import (
	"testing"

	"github.com/openecfw/ecflash/ecproto"
)

func TestRegionSet(t *testing.T) {
	var rs regionSet

	if rs.fresh(ecproto.CopyRO) {
		t.Error("unset copy reported fresh")
	}

	rs.set(ecproto.CopyRO, 0x000, 0x200)
	if !rs.fresh(ecproto.CopyRO) {
		t.Error("set copy not reported fresh")
	}
	if rs[ecproto.CopyRO].offset != 0x000 || rs[ecproto.CopyRO].size != 0x200 {
		t.Errorf("region = 0x%X+0x%X, want 0x0+0x200",
			rs[ecproto.CopyRO].offset, rs[ecproto.CopyRO].size)
	}
}

func TestRegionInvalidate(t *testing.T) {
	// The copy under test occupies [0x200, 0x400).
	tests := []struct {
		name      string
		offset    uint32
		length    uint32
		wantFresh bool
	}{
		{
			name:      "range inside copy",
			offset:    0x280,
			length:    0x40,
			wantFresh: false,
		},
		{
			name:      "copy inside range",
			offset:    0x100,
			length:    0x400,
			wantFresh: false,
		},
		{
			name:      "overlaps start of copy",
			offset:    0x180,
			length:    0x100,
			wantFresh: false,
		},
		{
			name:      "overlaps end of copy",
			offset:    0x380,
			length:    0x100,
			wantFresh: false,
		},
		{
			name:      "exact match",
			offset:    0x200,
			length:    0x200,
			wantFresh: false,
		},
		{
			name:      "adjacent below",
			offset:    0x100,
			length:    0x100,
			wantFresh: true,
		},
		{
			name:      "adjacent above",
			offset:    0x400,
			length:    0x100,
			wantFresh: true,
		},
		{
			name:      "far away",
			offset:    0x1000,
			length:    0x100,
			wantFresh: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rs regionSet
			rs.set(ecproto.CopyRWA, 0x200, 0x200)

			rs.invalidate(tt.offset, tt.length)

			if got := rs.fresh(ecproto.CopyRWA); got != tt.wantFresh {
				t.Errorf("fresh = %v after invalidating 0x%X+0x%X, want %v",
					got, tt.offset, tt.length, tt.wantFresh)
			}
		})
	}
}

func TestRegionInvalidateOnlyOverlapping(t *testing.T) {
	var rs regionSet
	rs.set(ecproto.CopyRO, 0x000, 0x200)
	rs.set(ecproto.CopyRWA, 0x200, 0x200)
	rs.set(ecproto.CopyRWB, 0x400, 0x200)

	rs.invalidate(0x200, 0x200)

	if !rs.fresh(ecproto.CopyRO) {
		t.Error("RO lost its fresh mark")
	}
	if rs.fresh(ecproto.CopyRWA) {
		t.Error("RW-A still marked fresh")
	}
	if !rs.fresh(ecproto.CopyRWB) {
		t.Error("RW-B lost its fresh mark")
	}
}
