package updater

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/openecfw/ecflash/ecproto"
)

// WPStatus is the write protection state of a controller.
type WPStatus struct {
	// Range is the flash range selected for protection
	Range ecproto.WPRange

	// Enabled reports whether protection is active
	Enabled bool
}

// WriteProtect manages the flash write protection of a controller.
type WriteProtect interface {
	// ListRanges returns the protectable flash ranges. The controller
	// accepts any range inside the flash, so a single full-flash range
	// is reported; alignment follows Info().ProtectBlockSize.
	ListRanges() []ecproto.WPRange

	// SetRange selects the flash range to protect.
	SetRange(ctx context.Context, offset, size uint32) error

	// Enable turns write protection on for the selected range.
	Enable(ctx context.Context) error

	// Disable turns write protection off. The controller latches
	// protection in hardware, so a reboot with the protect pin
	// de-asserted may be needed before flash becomes writable again.
	Disable(ctx context.Context) error

	// Status reads back the selected range and whether protection is
	// enabled.
	Status(ctx context.Context) (*WPStatus, error)
}

// transportWP implements WriteProtect with protocol commands.
type transportWP struct {
	dev *Device
}

func (w *transportWP) ListRanges() []ecproto.WPRange {
	return []ecproto.WPRange{{Offset: 0, Size: w.dev.info.FlashSize}}
}

func (w *transportWP) SetRange(ctx context.Context, offset, size uint32) error {
	req := ecproto.BuildWPSetRangeCmd(offset, size)
	return w.send(ctx, "wp set range", ecproto.CmdWPSetRange, req)
}

func (w *transportWP) Enable(ctx context.Context) error {
	return w.send(ctx, "wp enable", ecproto.CmdWPEnable, ecproto.BuildWPEnableCmd(true))
}

func (w *transportWP) Disable(ctx context.Context) error {
	if err := w.send(ctx, "wp disable", ecproto.CmdWPEnable, ecproto.BuildWPEnableCmd(false)); err != nil {
		return err
	}
	klog.Info("write protect disabled; reboot the controller with the protect pin de-asserted")
	return nil
}

func (w *transportWP) Status(ctx context.Context) (*WPStatus, error) {
	status, resp, err := w.dev.transport.Send(ctx, ecproto.CmdWPGetRange, nil, ecproto.WPRangeSize)
	if err != nil {
		return nil, errors.Wrap(err, "wp get range")
	}
	if status != ecproto.StatusSuccess {
		return nil, &ecproto.StatusError{Op: "wp get range", Status: status}
	}
	rng, err := ecproto.ParseWPRangeResp(resp)
	if err != nil {
		return nil, err
	}

	status, resp, err = w.dev.transport.Send(ctx, ecproto.CmdWPGetState, nil, ecproto.WPStateRespSize)
	if err != nil {
		return nil, errors.Wrap(err, "wp get state")
	}
	if status != ecproto.StatusSuccess {
		return nil, &ecproto.StatusError{Op: "wp get state", Status: status}
	}
	enabled, err := ecproto.ParseWPStateResp(resp)
	if err != nil {
		return nil, err
	}

	return &WPStatus{Range: *rng, Enabled: enabled}, nil
}

// send issues a command that carries no response payload.
func (w *transportWP) send(ctx context.Context, op string, cmd ecproto.Opcode, req []byte) error {
	status, _, err := w.dev.transport.Send(ctx, cmd, req, 0)
	if err != nil {
		return errors.Wrap(err, op)
	}
	if status != ecproto.StatusSuccess {
		return &ecproto.StatusError{Op: op, Status: status}
	}
	return nil
}
