// Package updater orchestrates in-field firmware updates for a
// self-flashing embedded controller.
//
// The controller stores three redundant firmware copies (a read-only
// factory copy RO and two rewritable copies RW-A, RW-B) and executes one
// of them while the update runs. Flash commands touching the executing
// copy fail with access-denied, so a full update takes two passes:
//
//	1. Prepare: parse the candidate image's flash map into the region
//	   registry and reboot the controller into RO, freeing both RW
//	   copies for writing.
//	2. First pass: the caller erases and writes the image. Ranges the
//	   controller denies are marked stale and deferred.
//	3. NeedSecondPass: if anything was deferred, reboot into the best
//	   fresh copy so the previously locked region becomes writable, and
//	   tell the caller to repeat its erase/write pass.
//	4. Finish: boot the newest copy actually written (RW-B, then RW-A),
//	   falling back to RO.
//
// # Usage
//
//	dev, err := updater.Probe(ctx, transport)
//	if err != nil {
//	    return err
//	}
//	u := updater.New(dev)
//	if err := u.Prepare(ctx, image); err != nil {
//	    return err
//	}
//	for pass := 1; ; pass++ {
//	    if err := writePass(ctx, u, image); err != nil {
//	        return err
//	    }
//	    if pass == 2 {
//	        break
//	    }
//	    again, err := u.NeedSecondPass(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    if !again {
//	        break
//	    }
//	}
//	return u.Finish(ctx)
//
// where writePass calls Erase and Write over the image's regions and
// treats ErrAccessDenied as "keep going":
//
//	if err := u.Erase(ctx, off, size); err != nil && !errors.Is(err, updater.ErrAccessDenied) {
//	    return err
//	}
//
// # Checksum verification
//
// Each read, erase, and write can be verified against the controller's
// FlashChecksum command (on by default, see WithVerify). A mismatched
// chunk is retried in place; the retry count is bounded by default and
// unbounded with WithUnlimitedVerifyRetries.
package updater
