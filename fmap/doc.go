// Package fmap parses the flash map embedded in firmware images.
//
// A flash map is a packed binary table describing named byte ranges
// ("areas") of a flash device. Firmware build systems embed one in the
// image so tools can locate sections without out-of-band layout files.
//
// # Format
//
// The map starts with an 8-byte ASCII signature and is byte-packed
// little-endian with no padding:
//
//	Header (56 bytes):
//	  [SIGNATURE "__FMAP__"(8)][VER_MAJOR(1)][VER_MINOR(1)]
//	  [BASE(8)][SIZE(4)][NAME(32)][NAREAS(2)]
//	Area (42 bytes each, NAREAS consecutive records):
//	  [OFFSET(4)][SIZE(4)][NAME(32)][FLAGS(2)]
//
// Names are NUL-terminated within their fixed fields.
//
// # Usage
//
// Find scans a whole image for the signature and decodes the map at the
// first hit:
//
//	m, err := fmap.Find(image)
//	if err != nil {
//	    return err
//	}
//	if a, ok := m.Area("RW_SECTION_A"); ok {
//	    fmt.Printf("RW-A at 0x%X, %d bytes\n", a.Offset, a.Size)
//	}
package fmap
