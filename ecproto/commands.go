package ecproto

import (
	"encoding/binary"
	"fmt"
)

// BuildHelloCmd constructs a Hello request record.
// The controller echoes inData + HelloBump in its response.
//
// Record layout:
//
//	[IN_DATA(4)]
func BuildHelloCmd(inData uint32) []byte {
	req := make([]byte, HelloReqSize)
	binary.LittleEndian.PutUint32(req, inData)
	return req
}

// BuildFlashReadCmd constructs a FlashRead request record.
// Reads size bytes starting at the flash byte offset.
//
// Record layout:
//
//	[OFFSET(4)][SIZE(4)]
//
// The size must not exceed ParamAreaSize, the most a single read
// response can carry.
func BuildFlashReadCmd(offset, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("read size cannot be zero")
	}
	if size > ParamAreaSize {
		return nil, fmt.Errorf("read size %d exceeds maximum %d bytes", size, ParamAreaSize)
	}

	req := make([]byte, FlashReadReqSize)
	binary.LittleEndian.PutUint32(req[0:4], offset)
	binary.LittleEndian.PutUint32(req[4:8], size)
	return req, nil
}

// BuildFlashWriteCmd constructs a FlashWrite request record.
// Programs len(data) bytes at the flash byte offset.
//
// Record layout:
//
//	[OFFSET(4)][SIZE(4)][DATA(64)]
//
// The data field is fixed-size on the wire; payloads shorter than
// FlashWriteDataSize are zero-padded and the SIZE field tells the
// controller how many bytes are meaningful.
func BuildFlashWriteCmd(offset uint32, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("write data cannot be empty")
	}
	if len(data) > FlashWriteDataSize {
		return nil, fmt.Errorf("write data length %d exceeds maximum %d bytes", len(data), FlashWriteDataSize)
	}

	req := make([]byte, FlashWriteReqSize)
	binary.LittleEndian.PutUint32(req[0:4], offset)
	binary.LittleEndian.PutUint32(req[4:8], uint32(len(data)))
	copy(req[8:], data)
	return req, nil
}

// BuildFlashEraseCmd constructs a FlashErase request record.
// Erases size bytes starting at the flash byte offset; the controller
// requires both to be multiples of its erase block size.
//
// Record layout:
//
//	[OFFSET(4)][SIZE(4)]
func BuildFlashEraseCmd(offset, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("erase size cannot be zero")
	}

	req := make([]byte, FlashEraseReqSize)
	binary.LittleEndian.PutUint32(req[0:4], offset)
	binary.LittleEndian.PutUint32(req[4:8], size)
	return req, nil
}

// BuildFlashChecksumCmd constructs a FlashChecksum request record.
// The controller answers with the 8-bit sum of the named range.
//
// Record layout:
//
//	[OFFSET(4)][SIZE(4)]
func BuildFlashChecksumCmd(offset, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, fmt.Errorf("checksum size cannot be zero")
	}

	req := make([]byte, ChecksumReqSize)
	binary.LittleEndian.PutUint32(req[0:4], offset)
	binary.LittleEndian.PutUint32(req[4:8], size)
	return req, nil
}

// BuildWPSetRangeCmd constructs a WPSetRange request record.
//
// Record layout:
//
//	[OFFSET(4)][SIZE(4)]
func BuildWPSetRangeCmd(offset, size uint32) []byte {
	req := make([]byte, WPRangeSize)
	binary.LittleEndian.PutUint32(req[0:4], offset)
	binary.LittleEndian.PutUint32(req[4:8], size)
	return req
}

// BuildWPEnableCmd constructs a WPEnable request record.
//
// Record layout:
//
//	[ENABLE(1)]
func BuildWPEnableCmd(enable bool) []byte {
	req := make([]byte, WPEnableReqSize)
	if enable {
		req[0] = 1
	}
	return req
}

// BuildRebootCmd constructs a RebootEC request record asking the
// controller to reset into the target copy. The controller processes it
// at interrupt level, so it works even while the command interface is
// busy, and a successful reboot produces no response.
//
// Record layout:
//
//	[TARGET(1)][FLAGS(1)]
func BuildRebootCmd(target Copy, flags uint8) []byte {
	return []byte{byte(target), flags}
}
