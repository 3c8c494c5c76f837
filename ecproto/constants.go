package ecproto

// Opcode identifies a host command.
type Opcode uint8

// Command opcodes understood by the controller.
const (
	// CmdHello is a liveness check: the controller echoes the request
	// value plus HelloBump
	CmdHello Opcode = 0x01

	// CmdGetVersion reports the version strings of all three firmware
	// copies and which copy is currently executing
	CmdGetVersion Opcode = 0x02

	// CmdFlashInfo queries flash geometry (size and block granularities)
	CmdFlashInfo Opcode = 0x10

	// CmdFlashRead reads a block of flash
	CmdFlashRead Opcode = 0x11

	// CmdFlashWrite programs a block of flash
	CmdFlashWrite Opcode = 0x12

	// CmdFlashErase erases a range of flash
	CmdFlashErase Opcode = 0x13

	// CmdFlashChecksum reports the 8-bit sum of a flash range
	CmdFlashChecksum Opcode = 0x14

	// CmdWPEnable enables or disables write protection
	CmdWPEnable Opcode = 0x15

	// CmdWPGetState queries the write-protect enabled flag
	CmdWPGetState Opcode = 0x16

	// CmdWPSetRange sets the protected flash range
	CmdWPSetRange Opcode = 0x17

	// CmdWPGetRange queries the protected flash range
	CmdWPGetRange Opcode = 0x18

	// CmdRebootEC reboots the controller into a chosen firmware copy.
	// Fire-and-forget: the controller resets, so no response data is
	// expected on success.
	CmdRebootEC Opcode = 0xD2
)

// String returns the opcode mnemonic.
func (op Opcode) String() string {
	switch op {
	case CmdHello:
		return "HELLO"
	case CmdGetVersion:
		return "GET_VERSION"
	case CmdFlashInfo:
		return "FLASH_INFO"
	case CmdFlashRead:
		return "FLASH_READ"
	case CmdFlashWrite:
		return "FLASH_WRITE"
	case CmdFlashErase:
		return "FLASH_ERASE"
	case CmdFlashChecksum:
		return "FLASH_CHECKSUM"
	case CmdWPEnable:
		return "FLASH_WP_ENABLE"
	case CmdWPGetState:
		return "FLASH_WP_GET_STATE"
	case CmdWPSetRange:
		return "FLASH_WP_SET_RANGE"
	case CmdWPGetRange:
		return "FLASH_WP_GET_RANGE"
	case CmdRebootEC:
		return "REBOOT_EC"
	default:
		return "UNKNOWN"
	}
}

// Status is the controller-reported outcome of a command.
type Status uint8

// Command status codes.
const (
	// StatusSuccess indicates the command executed cleanly
	StatusSuccess Status = 0

	// StatusInvalidCommand indicates the opcode is not recognized
	StatusInvalidCommand Status = 1

	// StatusGeneralError indicates the command failed for an
	// unspecified reason
	StatusGeneralError Status = 2

	// StatusInvalidParam indicates a request field is out of range
	StatusInvalidParam Status = 3

	// StatusAccessDenied indicates the requested flash range backs the
	// copy the controller is currently executing. Recoverable: the
	// updater defers the range to a later pass.
	StatusAccessDenied Status = 4
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInvalidCommand:
		return "invalid command"
	case StatusGeneralError:
		return "error"
	case StatusInvalidParam:
		return "invalid parameter"
	case StatusAccessDenied:
		return "access denied"
	default:
		return "unknown status"
	}
}

// Copy identifies one of the controller's firmware copies. The numeric
// values are wire values: CmdRebootEC carries them in its target field
// and CmdGetVersion reports the running copy as one of them.
type Copy uint8

// Firmware copies.
const (
	// CopyUnknown means "no specific copy"; as a jump target it asks
	// the caller to pick one
	CopyUnknown Copy = 0

	// CopyRO is the read-only factory copy
	CopyRO Copy = 1

	// CopyRWA is the first rewritable copy
	CopyRWA Copy = 2

	// CopyRWB is the second rewritable copy
	CopyRWB Copy = 3
)

// String returns the conventional short name of the copy.
func (c Copy) String() string {
	switch c {
	case CopyRO:
		return "RO"
	case CopyRWA:
		return "RW-A"
	case CopyRWB:
		return "RW-B"
	default:
		return "unknown"
	}
}

// HelloBump is added to the CmdHello request value by a healthy
// controller.
const HelloBump = 0x01020304

// Reboot flags for CmdRebootEC.
const (
	// RebootFlagRecovery asks the controller to come up in recovery mode
	RebootFlagRecovery = 1 << 0
)

// Protocol data limits.
const (
	// ParamAreaSize is the size of the parameter window shared by all
	// commands; no request or response record can exceed it. It also
	// caps the data returned by a single CmdFlashRead.
	ParamAreaSize = 128

	// FlashWriteDataSize is the fixed data field size of a CmdFlashWrite
	// request; writes carry at most this many payload bytes per command
	FlashWriteDataSize = 64

	// VersionStringSize is the size of each NUL-padded version string in
	// a CmdGetVersion response
	VersionStringSize = 32
)

// Request/response record sizes, byte-packed with no padding.
const (
	// HelloReqSize is the CmdHello request size (in_data, 4 bytes)
	HelloReqSize = 4

	// HelloRespSize is the CmdHello response size (out_data, 4 bytes)
	HelloRespSize = 4

	// VersionRespSize is the CmdGetVersion response size:
	// three version strings plus the current-copy word
	VersionRespSize = 3*VersionStringSize + 4

	// FlashInfoRespSize is the CmdFlashInfo response size (4 words)
	FlashInfoRespSize = 16

	// FlashReadReqSize is the CmdFlashRead request size (offset, size)
	FlashReadReqSize = 8

	// FlashWriteReqSize is the CmdFlashWrite request size:
	// offset, size, then the fixed 64-byte data field
	FlashWriteReqSize = 8 + FlashWriteDataSize

	// FlashEraseReqSize is the CmdFlashErase request size (offset, size)
	FlashEraseReqSize = 8

	// ChecksumReqSize is the CmdFlashChecksum request size (offset, size)
	ChecksumReqSize = 8

	// ChecksumRespSize is the CmdFlashChecksum response size (1 byte sum)
	ChecksumRespSize = 1

	// WPRangeSize is the size of a write-protect range record
	// (offset, size), used by CmdWPSetRange and CmdWPGetRange
	WPRangeSize = 8

	// WPEnableReqSize is the CmdWPEnable request size (1 flag byte)
	WPEnableReqSize = 1

	// WPStateRespSize is the CmdWPGetState response size (1 flag byte)
	WPStateRespSize = 1

	// RebootReqSize is the CmdRebootEC request size (target, flags)
	RebootReqSize = 2
)
