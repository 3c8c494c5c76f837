package updater

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/openecfw/ecflash/ecproto"
)

// Read reads length bytes of flash starting at offset, chunked to the
// largest read the transport and protocol allow. Each chunk is checked
// against the controller's checksum and re-read on mismatch when
// verification is enabled.
func (u *Updater) Read(ctx context.Context, offset, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, errors.New("read length cannot be zero")
	}

	maxChunk := u.maxReadChunk()
	buf := make([]byte, 0, length)
	retries := 0
	for done := uint32(0); done < length; {
		chunkOffset := offset + done
		chunk := length - done
		if chunk > maxChunk {
			chunk = maxChunk
		}

		req, err := ecproto.BuildFlashReadCmd(chunkOffset, chunk)
		if err != nil {
			return nil, err
		}
		status, resp, err := u.dev.transport.Send(ctx, ecproto.CmdFlashRead, req, int(chunk))
		if err != nil {
			return nil, errors.Wrapf(err, "reading flash at 0x%X", chunkOffset)
		}
		if status != ecproto.StatusSuccess {
			return nil, &ecproto.StatusError{Op: "flash read", Status: status}
		}
		if len(resp) < int(chunk) {
			return nil, errors.Errorf("short flash read at 0x%X: got %d bytes, expected %d",
				chunkOffset, len(resp), chunk)
		}
		data := resp[:chunk]

		if u.config.Verify {
			if err := u.verifyChunk(ctx, data, chunkOffset); err != nil {
				retry, rerr := u.retryMismatch(ctx, err, &retries, "re-reading", chunkOffset, chunk)
				if !retry {
					return nil, rerr
				}
				continue
			}
			retries = 0
		}

		buf = append(buf, data...)
		done += chunk
		u.report(PhaseReading, chunkOffset, int(done), int(length))
	}

	return buf, nil
}

// Erase erases the flash range [offset, offset+length) in a single
// command, then confirms the range reads back blank when verification
// is enabled.
//
// If the controller refuses because the range backs the copy it is
// running from, the range is deferred to a later pass and the returned
// error wraps ErrAccessDenied.
func (u *Updater) Erase(ctx context.Context, offset, length uint32) error {
	if length == 0 {
		return errors.New("erase length cannot be zero")
	}

	req, err := ecproto.BuildFlashEraseCmd(offset, length)
	if err != nil {
		return err
	}

	retries := 0
	for {
		status, _, err := u.dev.transport.Send(ctx, ecproto.CmdFlashErase, req, 0)
		if err != nil {
			return errors.Wrapf(err, "erasing flash at 0x%X", offset)
		}
		if status == ecproto.StatusAccessDenied {
			u.deferActiveRange(offset, length)
			return errors.Wrapf(ErrAccessDenied, "erase 0x%X+0x%X refused", offset, length)
		}
		if status != ecproto.StatusSuccess {
			return &ecproto.StatusError{Op: "flash erase", Status: status}
		}

		if !u.config.Verify {
			break
		}
		// Erased flash reads all 0xFF and the 8-bit sum wraps, so the
		// blank checksum follows from the size alone.
		got, err := u.fetchChecksum(ctx, offset, length)
		if err != nil {
			return err
		}
		want := erasedSum(length)
		if got == want {
			break
		}
		mismatch := &VerifyError{Offset: offset, Size: length, Want: want, Got: got}
		retry, rerr := u.retryMismatch(ctx, mismatch, &retries, "re-erasing", offset, length)
		if !retry {
			return rerr
		}
	}

	u.attemptLatestBoot = true
	u.report(PhaseErasing, offset, int(length), int(length))
	return nil
}

// Write programs data into flash at offset, chunked to the largest
// write the transport and protocol allow. Each chunk is checked
// against the controller's checksum and re-written on mismatch when
// verification is enabled.
//
// If the controller refuses a chunk because the range backs the copy
// it is running from, the whole range is deferred to a later pass and
// the returned error wraps ErrAccessDenied.
func (u *Updater) Write(ctx context.Context, offset uint32, data []byte) error {
	if len(data) == 0 {
		return errors.New("write data cannot be empty")
	}

	length := uint32(len(data))
	maxChunk := u.maxWriteChunk()
	retries := 0
	for done := uint32(0); done < length; {
		chunkOffset := offset + done
		chunk := length - done
		if chunk > maxChunk {
			chunk = maxChunk
		}

		req, err := ecproto.BuildFlashWriteCmd(chunkOffset, data[done:done+chunk])
		if err != nil {
			return err
		}
		status, _, err := u.dev.transport.Send(ctx, ecproto.CmdFlashWrite, req, 0)
		if err != nil {
			return errors.Wrapf(err, "writing flash at 0x%X", chunkOffset)
		}
		if status == ecproto.StatusAccessDenied {
			u.deferActiveRange(offset, length)
			return errors.Wrapf(ErrAccessDenied, "write 0x%X+0x%X refused", offset, length)
		}
		if status != ecproto.StatusSuccess {
			return &ecproto.StatusError{Op: "flash write", Status: status}
		}

		if u.config.Verify {
			if err := u.verifyChunk(ctx, data[done:done+chunk], chunkOffset); err != nil {
				retry, rerr := u.retryMismatch(ctx, err, &retries, "re-writing", chunkOffset, chunk)
				if !retry {
					return rerr
				}
				continue
			}
			retries = 0
		}

		done += chunk
		u.report(PhaseWriting, chunkOffset, int(done), int(length))
	}

	u.attemptLatestBoot = true
	return nil
}

// fetchChecksum asks the controller for the 8-bit sum of a flash range.
func (u *Updater) fetchChecksum(ctx context.Context, offset, size uint32) (byte, error) {
	req, err := ecproto.BuildFlashChecksumCmd(offset, size)
	if err != nil {
		return 0, err
	}
	status, resp, err := u.dev.transport.Send(ctx, ecproto.CmdFlashChecksum, req, ecproto.ChecksumRespSize)
	if err != nil {
		return 0, errors.Wrapf(err, "requesting checksum of 0x%X+0x%X", offset, size)
	}
	if status != ecproto.StatusSuccess {
		return 0, &ecproto.StatusError{Op: "flash checksum", Status: status}
	}
	return ecproto.ParseChecksumResp(resp)
}

// verifyChunk compares the controller's checksum of a flash range with
// the sum of the bytes expected there. A mismatch comes back as a
// *VerifyError; transport and status failures are ordinary errors.
func (u *Updater) verifyChunk(ctx context.Context, expected []byte, offset uint32) error {
	got, err := u.fetchChecksum(ctx, offset, uint32(len(expected)))
	if err != nil {
		return err
	}
	want := ecproto.Sum8(expected)
	if want != got {
		return &VerifyError{
			Offset: offset,
			Size:   uint32(len(expected)),
			Want:   want,
			Got:    got,
		}
	}
	return nil
}

// retryMismatch decides whether a verification failure is retried.
// Checksum mismatches are retried up to the configured limit with the
// configured delay in between; anything else, and mismatches past the
// limit, end the operation. It returns retry=false with the error to
// surface, or retry=true after the delay has elapsed.
func (u *Updater) retryMismatch(ctx context.Context, err error, retries *int, action string, offset, length uint32) (bool, error) {
	var mismatch *VerifyError
	if !errors.As(err, &mismatch) {
		return false, err
	}
	if u.config.VerifyRetryLimit >= 0 && *retries >= u.config.VerifyRetryLimit {
		return false, err
	}
	*retries++
	klog.V(2).Infof("%s 0x%X+0x%X: %v", action, offset, length, err)
	if werr := sleepCtx(ctx, u.config.VerifyRetryDelay); werr != nil {
		return false, werr
	}
	return true, nil
}

// deferActiveRange records that a flash range was refused because it
// backs the running copy: the overlapped copies are no longer fresh
// and the session needs another pass after jumping away.
func (u *Updater) deferActiveRange(offset, length uint32) {
	u.regions.invalidate(offset, length)
	u.deferredPass = true
}

// report invokes the progress callback if one is configured.
func (u *Updater) report(phase string, offset uint32, done, total int) {
	if u.config.Progress == nil {
		return
	}
	u.config.Progress(Progress{
		Phase:      phase,
		Offset:     offset,
		BytesDone:  done,
		BytesTotal: total,
	})
}

// maxReadChunk returns the read chunk ceiling: the smaller of the
// transport's limit and the protocol's response capacity.
func (u *Updater) maxReadChunk() uint32 {
	max := uint32(ecproto.ParamAreaSize)
	if m := u.dev.transport.MaxReadSize(); m > 0 && uint32(m) < max {
		max = uint32(m)
	}
	return max
}

// maxWriteChunk returns the write chunk ceiling: the smaller of the
// transport's limit and the protocol's write record capacity.
func (u *Updater) maxWriteChunk() uint32 {
	max := uint32(ecproto.FlashWriteDataSize)
	if m := u.dev.transport.MaxWriteSize(); m > 0 && uint32(m) < max {
		max = uint32(m)
	}
	return max
}

// erasedSum returns the additive checksum of size bytes of erased
// flash, which read as 0xFF.
func erasedSum(size uint32) byte {
	return byte(size * 0xFF)
}
