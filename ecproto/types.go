package ecproto

// FlashInfo describes the controller's flash geometry.
// Returned by the FlashInfo command.
type FlashInfo struct {
	// FlashSize is the usable flash size in bytes
	FlashSize uint32

	// WriteBlockSize is the write granularity: write offset and size
	// must be multiples of this
	WriteBlockSize uint32

	// EraseBlockSize is the erase granularity: erase offset and size
	// must be multiples of this
	EraseBlockSize uint32

	// ProtectBlockSize is the protection granularity: protect offset and
	// size must be multiples of this
	ProtectBlockSize uint32
}

// Version holds the controller's firmware version report.
// Returned by the GetVersion command.
type Version struct {
	// RO is the version string of the read-only copy
	RO string

	// RWA is the version string of rewritable copy A
	RWA string

	// RWB is the version string of rewritable copy B
	RWB string

	// Current is the copy the controller is executing
	Current Copy
}

// WPRange is a write-protected flash range.
// Returned by the WPGetRange command and sent by WPSetRange.
type WPRange struct {
	// Offset is the byte offset of the protected range
	Offset uint32

	// Size is the length of the protected range in bytes
	Size uint32
}
