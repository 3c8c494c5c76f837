package updater

// Progress phases reported to the ProgressCallback.
const (
	// PhaseReading means flash contents are being read back
	PhaseReading = "reading"

	// PhaseErasing means a flash range is being erased
	PhaseErasing = "erasing"

	// PhaseWriting means image data is being programmed
	PhaseWriting = "writing"
)

// Progress describes the state of one flash operation. Passed to
// ProgressCallback after every completed chunk.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// Offset is the flash offset just processed
	Offset uint32

	// BytesDone is the number of bytes completed within this operation
	BytesDone int

	// BytesTotal is the size of this operation
	BytesTotal int
}

// ProgressCallback is called as chunked flash operations advance.
// Implementations should return quickly to avoid stalling the transfer.
//
// Example:
//
//	u := updater.New(dev,
//	    updater.WithProgress(func(p updater.Progress) {
//	        fmt.Printf("[%s] %d/%d bytes\n", p.Phase, p.BytesDone, p.BytesTotal)
//	    }),
//	)
type ProgressCallback func(Progress)
