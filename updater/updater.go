package updater

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/openecfw/ecflash/ecproto"
	"github.com/openecfw/ecflash/fmap"
)

// Updater drives a firmware update session against one controller.
//
// The controller refuses to modify flash backing the copy it is
// running from, so a full update takes two passes with a jump to a
// different copy in between. Updater tracks which copies of the image
// are still fresh across those passes. See the package documentation
// for the complete flow.
type Updater struct {
	dev    *Device
	config Config

	// regions records where each firmware copy lives in the new image
	// and whether the matching flash range still holds its bytes
	regions regionSet

	// deferredPass is set when a flash range was refused because it
	// backed the active copy, meaning another pass is required
	deferredPass bool

	// attemptLatestBoot is set once flash contents changed, telling
	// Finish to boot the newest copy
	attemptLatestBoot bool
}

// New creates an Updater for a probed device.
// Panics if dev is nil.
//
// Example:
//
//	u := updater.New(dev,
//	    updater.WithVerifyRetryLimit(5),
//	    updater.WithProgress(progressFunc),
//	)
func New(dev *Device, opts ...Option) *Updater {
	if dev == nil {
		panic("updater: device cannot be nil")
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Updater{
		dev:    dev,
		config: config,
	}
}

// Device returns the probed device this session drives.
func (u *Updater) Device() *Device {
	return u.dev
}

// Prepare starts an update session for the given image. It locates the
// flash map inside the image, records where each firmware copy lives,
// and reboots the controller into its read-only copy so that both
// writable copies can be reflashed.
//
// The recorded regions drive Jump, NeedSecondPass, and Finish for the
// rest of the session.
func (u *Updater) Prepare(ctx context.Context, image []byte) error {
	m, err := fmap.Find(image)
	if err != nil {
		return errors.Wrap(err, "locating flash map in image")
	}

	for c := ecproto.CopyRO; c <= ecproto.CopyRWB; c++ {
		area, ok := m.Area(sectionNames[c])
		if !ok {
			continue
		}
		klog.V(1).Infof("image section %s: offset 0x%X, size 0x%X",
			area.Name, area.Offset, area.Size)
		u.regions.set(c, area.Offset, area.Size)
	}

	// Writing the copy the controller runs from would be refused, so
	// start the session from the read-only copy.
	return u.Jump(ctx, ecproto.CopyRO)
}

// Jump asks the controller to reboot into the given firmware copy.
// With CopyUnknown it picks a fresh copy itself, preferring RO, then
// RW-A, then RW-B; if no copy is fresh it returns ErrNoFreshCopy
// without contacting the controller.
//
// The controller restarts after the command, so Jump waits the
// configured reboot delay before returning whether or not the command
// was acknowledged.
func (u *Updater) Jump(ctx context.Context, target ecproto.Copy) error {
	if target == ecproto.CopyUnknown {
		switch {
		case u.regions.fresh(ecproto.CopyRO):
			target = ecproto.CopyRO
		case u.regions.fresh(ecproto.CopyRWA):
			target = ecproto.CopyRWA
		case u.regions.fresh(ecproto.CopyRWB):
			target = ecproto.CopyRWB
		default:
			return ErrNoFreshCopy
		}
	}

	klog.V(1).Infof("jumping to copy %s", target)
	req := ecproto.BuildRebootCmd(target, 0)
	status, _, err := u.dev.transport.Send(ctx, ecproto.CmdRebootEC, req, 0)

	var sendErr error
	switch {
	case err != nil:
		sendErr = errors.Wrapf(err, "rebooting to copy %s", target)
	case status != ecproto.StatusSuccess:
		sendErr = &ecproto.StatusError{Op: "reboot", Status: status}
	}
	if sendErr != nil {
		klog.Errorf("cannot jump to copy %s: %v", target, sendErr)
	} else {
		klog.V(1).Infof("jumped to copy %s", target)
	}

	// The controller re-initializes after a jump. Give it time to come
	// back even when the command was not acknowledged.
	if waitErr := sleepCtx(ctx, u.config.RebootDelay); waitErr != nil && sendErr == nil {
		sendErr = waitErr
	}
	return sendErr
}

// NeedSecondPass reports whether a flash pass skipped ranges backing
// the then-active copy. When it returns true it has already rebooted
// the controller into a fresh copy, so the caller can run another pass
// over the skipped ranges.
//
// The deferred state is not cleared here: once a pass has skipped
// work, the session keeps reporting that a pass is pending. Callers
// bound the loop themselves, normally by running exactly one extra
// pass.
func (u *Updater) NeedSecondPass(ctx context.Context) (bool, error) {
	if !u.deferredPass {
		return false, nil
	}
	if err := u.Jump(ctx, ecproto.CopyUnknown); err != nil {
		return true, err
	}
	return true, nil
}

// Finish boots the newest firmware after a session that changed flash
// contents, preferring RW-B, then RW-A, then RO. A session that wrote
// nothing is a no-op: the controller keeps running its active copy.
//
// Prepare jumped the controller to RO, so by now the RO range has
// normally been rewritten and marked stale while the RW copies carry
// the new firmware.
func (u *Updater) Finish(ctx context.Context) error {
	if !u.attemptLatestBoot {
		return nil
	}

	if u.regions.fresh(ecproto.CopyRWB) && u.Jump(ctx, ecproto.CopyRWB) == nil {
		return nil
	}
	if u.regions.fresh(ecproto.CopyRWA) && u.Jump(ctx, ecproto.CopyRWA) == nil {
		return nil
	}
	return u.Jump(ctx, ecproto.CopyRO)
}

// sleepCtx pauses for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
