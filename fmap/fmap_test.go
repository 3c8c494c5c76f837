package fmap

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

// buildMap packs a flash map blob from header fields and area records.
func buildMap(name string, base uint64, size uint32, areas []Area) []byte {
	b := make([]byte, HeaderSize+len(areas)*AreaSize)
	copy(b[0:8], Signature)
	b[8] = 1 // ver_major
	b[9] = 0 // ver_minor
	binary.LittleEndian.PutUint64(b[10:18], base)
	binary.LittleEndian.PutUint32(b[18:22], size)
	copy(b[22:22+NameSize], name)
	binary.LittleEndian.PutUint16(b[54:56], uint16(len(areas)))

	for i, a := range areas {
		rec := b[HeaderSize+i*AreaSize:]
		binary.LittleEndian.PutUint32(rec[0:4], a.Offset)
		binary.LittleEndian.PutUint32(rec[4:8], a.Size)
		copy(rec[8:8+NameSize], a.Name)
		binary.LittleEndian.PutUint16(rec[40:42], a.Flags)
	}

	return b
}

func TestDecode(t *testing.T) {
	areas := []Area{
		{Offset: 0x00000, Size: 0x20000, Name: "RO_SECTION"},
		{Offset: 0x20000, Size: 0x20000, Name: "RW_SECTION_A"},
		{Offset: 0x40000, Size: 0x20000, Name: "RW_SECTION_B", Flags: 0x0003},
	}
	blob := buildMap("EC_FW", 0, 0x60000, areas)

	m, err := Decode(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Name != "EC_FW" {
		t.Errorf("Name = %q, want %q", m.Name, "EC_FW")
	}

	if m.Size != 0x60000 {
		t.Errorf("Size = 0x%X, want 0x60000", m.Size)
	}

	if len(m.Areas) != len(areas) {
		t.Fatalf("len(Areas) = %d, want %d", len(m.Areas), len(areas))
	}

	for i, want := range areas {
		got := m.Areas[i]
		if got != want {
			t.Errorf("Areas[%d] = %+v, want %+v", i, got, want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := buildMap("EC_FW", 0, 0x60000, []Area{
		{Offset: 0, Size: 0x20000, Name: "RO_SECTION"},
	})

	tests := []struct {
		name   string
		blob   []byte
		errMsg string
	}{
		{
			name:   "truncated header",
			blob:   valid[:HeaderSize-1],
			errMsg: "truncated header",
		},
		{
			name:   "bad signature",
			blob:   append([]byte("__XMAP__"), valid[8:]...),
			errMsg: "bad signature",
		},
		{
			name:   "truncated area table",
			blob:   valid[:len(valid)-1],
			errMsg: "truncated area table",
		},
		{
			name: "area count overruns buffer",
			blob: func() []byte {
				b := make([]byte, len(valid))
				copy(b, valid)
				binary.LittleEndian.PutUint16(b[54:56], 1000)
				return b
			}(),
			errMsg: "truncated area table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.blob)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestFind(t *testing.T) {
	blob := buildMap("EC_FW", 0, 0x60000, []Area{
		{Offset: 0x00000, Size: 0x20000, Name: "RO_SECTION"},
		{Offset: 0x20000, Size: 0x20000, Name: "RW_SECTION_A"},
	})

	// Bury the map in the middle of a larger image.
	image := make([]byte, 0x10000)
	for i := range image {
		image[i] = 0xFF
	}
	copy(image[0x8100:], blob)

	m, err := Find(image)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := m.Area("RW_SECTION_A"); !ok {
		t.Error("Area(RW_SECTION_A) not found after Find")
	}
}

func TestFindNotFound(t *testing.T) {
	image := make([]byte, 0x1000)

	_, err := Find(image)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFindTruncatedMap(t *testing.T) {
	// Signature present but the header runs off the end of the image.
	image := append(make([]byte, 64), []byte(Signature)...)
	image = append(image, 1, 0)

	_, err := Find(image)
	if err == nil {
		t.Fatal("expected error for truncated map, got nil")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("truncated map reported as not found; want decode error")
	}
}

func TestAreaLookup(t *testing.T) {
	m := &Map{
		Areas: []Area{
			{Offset: 0x00000, Size: 0x20000, Name: "RO_SECTION"},
			{Offset: 0x20000, Size: 0x20000, Name: "RW_SECTION_A"},
		},
	}

	tests := []struct {
		name string
		want bool
	}{
		{name: "RO_SECTION", want: true},
		{name: "RW_SECTION_A", want: true},
		{name: "RW_SECTION_B", want: false},
		{name: "RO_SECTIO", want: false},
		{name: "RO_SECTION_X", want: false},
		{name: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := m.Area(tt.name)
			if ok != tt.want {
				t.Fatalf("Area(%q) ok = %v, want %v", tt.name, ok, tt.want)
			}
			if ok && a.Name != tt.name {
				t.Errorf("Area(%q).Name = %q", tt.name, a.Name)
			}
		})
	}
}
