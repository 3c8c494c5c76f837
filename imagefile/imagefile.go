// Package imagefile loads firmware images from disk. Raw binary dumps
// are passed through untouched; Intel HEX files are flattened into the
// byte image the flash operations expect.
package imagefile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
	"k8s.io/klog"
)

// maxImageSize guards against corrupt files and absolute-addressed hex
// images exploding the flattened buffer.
const maxImageSize = 64 << 20

// Load reads a firmware image from path. Files ending in .hex or
// .ihex are parsed as Intel HEX and flattened with 0xFF fill; anything
// else is returned as raw bytes.
func Load(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "opening image")
		}
		defer f.Close()

		img, err := ParseHex(f)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
		return img, nil
	}

	img, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading image")
	}
	if len(img) > maxImageSize {
		return nil, errors.Errorf("image is %d bytes, more than the %d byte limit",
			len(img), maxImageSize)
	}
	return img, nil
}

// ParseHex flattens an Intel HEX stream into a contiguous image.
// Gaps between data segments read as erased flash, 0xFF. Images based
// at a nonzero address are shifted down to offset zero.
func ParseHex(r io.Reader) ([]byte, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, errors.Wrap(err, "parsing hex image")
	}

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return nil, errors.New("hex image contains no data")
	}

	base := segments[0].Address
	var end uint64
	for _, s := range segments {
		if s.Address < base {
			base = s.Address
		}
		if e := uint64(s.Address) + uint64(len(s.Data)); e > end {
			end = e
		}
	}

	size := end - uint64(base)
	if size > maxImageSize {
		return nil, errors.Errorf("hex image spans %d bytes, more than the %d byte limit",
			size, maxImageSize)
	}

	img := bytes.Repeat([]byte{0xFF}, int(size))
	for _, s := range segments {
		copy(img[s.Address-base:], s.Data)
	}
	if base != 0 {
		klog.V(1).Infof("hex image is based at 0x%X, treating it as flash offset 0", base)
	}
	return img, nil
}
