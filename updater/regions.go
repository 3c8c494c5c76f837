package updater

import (
	"k8s.io/klog"

	"github.com/openecfw/ecflash/ecproto"
)

// region tracks one firmware copy inside the flash image: where it
// lives, and whether the bytes currently in that range are the latest
// firmware.
type region struct {
	offset uint32
	size   uint32
	fresh  bool
}

// regionSet records the firmware copies of a flash image, indexed by
// ecproto.Copy. Index 0 (CopyUnknown) is unused.
type regionSet [4]region

// set records the location of a firmware copy and marks it fresh.
func (rs *regionSet) set(c ecproto.Copy, offset, size uint32) {
	rs[c] = region{offset: offset, size: size, fresh: true}
}

// fresh reports whether the given copy holds the latest firmware.
func (rs *regionSet) fresh(c ecproto.Copy) bool {
	return rs[c].fresh
}

// invalidate clears the fresh flag on every copy overlapping
// [offset, offset+length). A range that was rewritten or refused can
// no longer be trusted to hold the latest firmware.
func (rs *regionSet) invalidate(offset, length uint32) {
	for c := ecproto.CopyRO; c <= ecproto.CopyRWB; c++ {
		r := &rs[c]
		if !r.fresh {
			continue
		}
		if (offset >= r.offset && offset < r.offset+r.size) ||
			(r.offset >= offset && r.offset < offset+length) {
			klog.V(2).Infof("copy %s no longer fresh: overlaps modified range 0x%X+0x%X",
				c, offset, length)
			r.fresh = false
		}
	}
}

// sectionNames maps a firmware copy to its section name in the flash
// map.
var sectionNames = [4]string{
	ecproto.CopyRO:  "RO_SECTION",
	ecproto.CopyRWA: "RW_SECTION_A",
	ecproto.CopyRWB: "RW_SECTION_B",
}
