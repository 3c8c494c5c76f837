package ecproto

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ParseHelloResp parses the Hello command response.
// Returns the echoed value, which should be the request's in_data plus
// HelloBump.
//
// Record layout (4 bytes):
//
//	[OUT_DATA(4)]
func ParseHelloResp(data []byte) (uint32, error) {
	if len(data) != HelloRespSize {
		return 0, fmt.Errorf("invalid data length for Hello response: got %d bytes, expected %d", len(data), HelloRespSize)
	}

	return binary.LittleEndian.Uint32(data), nil
}

// ParseVersionResp parses the GetVersion command response.
// Returns the version strings of all three copies and the currently
// executing copy.
//
// Record layout (100 bytes):
//
//	[RO_VERSION(32)][RW_A_VERSION(32)][RW_B_VERSION(32)][CURRENT(4)]
//
// Version strings are NUL-terminated within their fixed fields.
func ParseVersionResp(data []byte) (*Version, error) {
	if len(data) != VersionRespSize {
		return nil, fmt.Errorf("invalid data length for GetVersion response: got %d bytes, expected %d", len(data), VersionRespSize)
	}

	v := &Version{
		RO:      cString(data[0:VersionStringSize]),
		RWA:     cString(data[VersionStringSize : 2*VersionStringSize]),
		RWB:     cString(data[2*VersionStringSize : 3*VersionStringSize]),
		Current: Copy(binary.LittleEndian.Uint32(data[3*VersionStringSize:])),
	}

	return v, nil
}

// ParseFlashInfoResp parses the FlashInfo command response.
// Returns the flash geometry.
//
// Record layout (16 bytes):
//
//	[FLASH_SIZE(4)][WRITE_BLOCK(4)][ERASE_BLOCK(4)][PROTECT_BLOCK(4)]
func ParseFlashInfoResp(data []byte) (*FlashInfo, error) {
	if len(data) != FlashInfoRespSize {
		return nil, fmt.Errorf("invalid data length for FlashInfo response: got %d bytes, expected %d", len(data), FlashInfoRespSize)
	}

	info := &FlashInfo{
		FlashSize:        binary.LittleEndian.Uint32(data[0:4]),
		WriteBlockSize:   binary.LittleEndian.Uint32(data[4:8]),
		EraseBlockSize:   binary.LittleEndian.Uint32(data[8:12]),
		ProtectBlockSize: binary.LittleEndian.Uint32(data[12:16]),
	}

	return info, nil
}

// ParseChecksumResp parses the FlashChecksum command response.
// Returns the controller-computed 8-bit sum of the requested range.
//
// Record layout (1 byte):
//
//	[CHECKSUM(1)]
func ParseChecksumResp(data []byte) (byte, error) {
	if len(data) != ChecksumRespSize {
		return 0, fmt.Errorf("invalid data length for FlashChecksum response: got %d bytes, expected %d", len(data), ChecksumRespSize)
	}

	return data[0], nil
}

// ParseWPRangeResp parses the WPGetRange command response.
// Returns the currently protected range.
//
// Record layout (8 bytes):
//
//	[OFFSET(4)][SIZE(4)]
func ParseWPRangeResp(data []byte) (*WPRange, error) {
	if len(data) != WPRangeSize {
		return nil, fmt.Errorf("invalid data length for WPGetRange response: got %d bytes, expected %d", len(data), WPRangeSize)
	}

	r := &WPRange{
		Offset: binary.LittleEndian.Uint32(data[0:4]),
		Size:   binary.LittleEndian.Uint32(data[4:8]),
	}

	return r, nil
}

// ParseWPStateResp parses the WPGetState command response.
// Returns whether write protection is enabled.
//
// Record layout (1 byte):
//
//	[ENABLED(1)]
func ParseWPStateResp(data []byte) (bool, error) {
	if len(data) != WPStateRespSize {
		return false, fmt.Errorf("invalid data length for WPGetState response: got %d bytes, expected %d", len(data), WPStateRespSize)
	}

	return data[0] != 0, nil
}

// cString returns the string content of a fixed-size NUL-padded field.
func cString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
