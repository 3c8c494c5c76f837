package fmap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"k8s.io/klog"
)

// Constants for the flash map binary format.
const (
	// Signature marks the start of a flash map
	Signature = "__FMAP__"

	// SignatureSize is the length of the signature in bytes
	SignatureSize = 8

	// NameSize is the fixed size of the map and area name fields
	NameSize = 32

	// HeaderSize is the packed size of the map header:
	// signature(8) + version(2) + base(8) + size(4) + name(32) + nareas(2)
	HeaderSize = 56

	// AreaSize is the packed size of one area record:
	// offset(4) + size(4) + name(32) + flags(2)
	AreaSize = 42
)

// ErrNotFound is returned by Find when the image contains no flash map
// signature.
var ErrNotFound = errors.New("no flash map signature in image")

// Map is a decoded flash map.
type Map struct {
	// VerMajor and VerMinor are the format version of the map
	VerMajor uint8
	VerMinor uint8

	// Base is the address of the firmware binary in the device's
	// address space
	Base uint64

	// Size is the size of the firmware binary in bytes
	Size uint32

	// Name identifies the firmware binary
	Name string

	// Areas are the named ranges, in file order
	Areas []Area
}

// Area is one named byte range of the flash device.
type Area struct {
	// Offset is the byte offset of the area relative to Base
	Offset uint32

	// Size is the length of the area in bytes
	Size uint32

	// Name identifies the area
	Name string

	// Flags carries build-system attributes; opaque to this package
	Flags uint16
}

// Find scans image for a flash map signature and decodes the map at the
// first occurrence. The scan is a plain byte search over the whole
// buffer; maps conventionally sit in a write-protected section near the
// top of flash, but nothing requires that.
//
// Returns ErrNotFound if no signature exists anywhere in the image.
func Find(image []byte) (*Map, error) {
	offset := bytes.Index(image, []byte(Signature))
	if offset < 0 {
		return nil, ErrNotFound
	}

	m, err := Decode(image[offset:])
	if err != nil {
		return nil, fmt.Errorf("flash map at offset 0x%X: %w", offset, err)
	}

	klog.V(2).Infof("flash map %q at offset 0x%X: %d areas", m.Name, offset, len(m.Areas))
	return m, nil
}

// Decode parses a flash map that starts at the beginning of b. The
// buffer may extend past the end of the map; trailing bytes are ignored.
func Decode(b []byte) (*Map, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("truncated header: got %d bytes, need %d", len(b), HeaderSize)
	}

	if !bytes.Equal(b[0:SignatureSize], []byte(Signature)) {
		return nil, fmt.Errorf("bad signature: got %q, expected %q", b[0:SignatureSize], Signature)
	}

	m := &Map{
		VerMajor: b[8],
		VerMinor: b[9],
		Base:     binary.LittleEndian.Uint64(b[10:18]),
		Size:     binary.LittleEndian.Uint32(b[18:22]),
		Name:     fixedString(b[22 : 22+NameSize]),
	}

	nareas := int(binary.LittleEndian.Uint16(b[54:56]))
	need := HeaderSize + nareas*AreaSize
	if len(b) < need {
		return nil, fmt.Errorf("truncated area table: %d areas need %d bytes, got %d", nareas, need, len(b))
	}

	m.Areas = make([]Area, nareas)
	for i := 0; i < nareas; i++ {
		rec := b[HeaderSize+i*AreaSize:]
		m.Areas[i] = Area{
			Offset: binary.LittleEndian.Uint32(rec[0:4]),
			Size:   binary.LittleEndian.Uint32(rec[4:8]),
			Name:   fixedString(rec[8 : 8+NameSize]),
			Flags:  binary.LittleEndian.Uint16(rec[40:42]),
		}
	}

	return m, nil
}

// Area returns the area with the exactly matching name. Returns false
// if no such area exists in the map.
func (m *Map) Area(name string) (Area, bool) {
	for _, a := range m.Areas {
		if a.Name == name {
			return a, true
		}
	}
	return Area{}, false
}

// fixedString returns the string content of a fixed-size NUL-padded field.
func fixedString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
