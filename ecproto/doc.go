// Package ecproto implements the host-command protocol spoken by a
// self-flashing embedded controller.
//
// This package provides functions to build request records and parse
// response records for the controller's flash, write-protect, and reboot
// command families, plus the Transport contract used to deliver them.
//
// # Protocol Overview
//
// Every command is a single synchronous request/response exchange: the
// host sends an opcode plus a fixed-layout parameter record, the
// controller answers with a status code and a fixed-layout response
// record. Records are byte-packed little-endian with no padding, e.g.:
//
//	FlashRead request:   [OFFSET(4)][SIZE(4)]
//	FlashWrite request:  [OFFSET(4)][SIZE(4)][DATA(64)]
//	FlashInfo response:  [FLASH_SIZE(4)][WRITE_BLOCK(4)][ERASE_BLOCK(4)][PROTECT_BLOCK(4)]
//
// How a record physically reaches the controller (serial frame, ioctl,
// memory-mapped window) is the transport's business; see Transport.
//
// # Request Builders
//
// Use the Build* functions to create request records:
//
//	req, err := ecproto.BuildFlashWriteCmd(offset, chunk)
//	req, err := ecproto.BuildFlashEraseCmd(offset, size)
//	// ... etc
//
// # Response Parsers
//
// Responses arrive as raw bytes from Transport.Send. Use the Parse*
// functions to validate length and decode fields:
//
//	info, err := ecproto.ParseFlashInfoResp(data)
//	ver, err := ecproto.ParseVersionResp(data)
//	// ... etc
//
// # Status Handling
//
// The controller reports one of five statuses per command. Success
// continues; AccessDenied means the range backs the copy the controller
// is currently executing and is handled by the updater's deferral
// machinery; the rest are fatal for that call. Wrap non-success statuses
// in StatusError for structured reporting:
//
//	st, data, err := t.Send(ctx, ecproto.CmdFlashErase, req, 0)
//	if err != nil {
//	    return err // transport failure, always fatal
//	}
//	if st != ecproto.StatusSuccess {
//	    return &ecproto.StatusError{Op: "flash erase", Status: st}
//	}
package ecproto
