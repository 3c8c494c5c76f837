package updater

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAccessDenied is returned by Erase and Write when the controller
// refuses the range because it backs the currently executing copy. It is
// a recoverable outcome: the affected region has been marked stale and
// deferred to a later pass, and the caller should continue with the rest
// of the update. Test with errors.Is.
var ErrAccessDenied = errors.New("flash range backs the active copy")

// ErrNoFreshCopy is returned by Jump when no firmware copy is fresh and
// the target was left unspecified. No reboot command is issued.
var ErrNoFreshCopy = errors.New("no fresh firmware copy to jump to")

// VerifyError indicates a chunk's device-reported checksum kept
// disagreeing with the locally computed one after all retries.
type VerifyError struct {
	// Offset and Size name the flash range that failed verification
	Offset uint32
	Size   uint32

	// Want is the locally computed 8-bit sum, Got the controller's
	Want byte
	Got  byte
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("checksum mismatch at 0x%X (%d bytes): local 0x%02X, device 0x%02X",
		e.Offset, e.Size, e.Want, e.Got)
}
