package updater

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/openecfw/ecflash/ecproto"
)

// Device is a probed embedded controller: a transport plus the flash
// geometry the hardware reported.
type Device struct {
	transport ecproto.Transport
	info      ecproto.FlashInfo
	wp        WriteProtect
}

// Probe contacts the controller over t, checks the command interface
// with a hello round trip, and reads the flash geometry.
//
// Example:
//
//	dev, err := updater.Probe(ctx, transport)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("flash size: %d\n", dev.Info().FlashSize)
func Probe(ctx context.Context, t ecproto.Transport) (*Device, error) {
	if t == nil {
		panic("updater: transport cannot be nil")
	}

	if err := Ping(ctx, t); err != nil {
		return nil, errors.Wrap(err, "probing controller")
	}

	status, resp, err := t.Send(ctx, ecproto.CmdFlashInfo, nil, ecproto.FlashInfoRespSize)
	if err != nil {
		return nil, errors.Wrap(err, "requesting flash info")
	}
	if status != ecproto.StatusSuccess {
		return nil, &ecproto.StatusError{Op: "flash info", Status: status}
	}
	info, err := ecproto.ParseFlashInfoResp(resp)
	if err != nil {
		return nil, err
	}

	dev := &Device{transport: t, info: *info}
	dev.wp = &transportWP{dev: dev}
	klog.V(1).Infof("controller flash: %d bytes, write block %d, erase block %d, protect block %d",
		info.FlashSize, info.WriteBlockSize, info.EraseBlockSize, info.ProtectBlockSize)
	return dev, nil
}

// Info returns the flash geometry reported at probe time.
func (d *Device) Info() ecproto.FlashInfo {
	return d.info
}

// WriteProtect returns the write protection interface of the device.
func (d *Device) WriteProtect() WriteProtect {
	return d.wp
}

// Ping checks that the controller is responding to commands. It sends
// a hello with a fixed payload and verifies the bumped echo.
func Ping(ctx context.Context, t ecproto.Transport) error {
	const probe = 0xA0B0C0D0

	req := ecproto.BuildHelloCmd(probe)
	status, resp, err := t.Send(ctx, ecproto.CmdHello, req, ecproto.HelloRespSize)
	if err != nil {
		return errors.Wrap(err, "sending hello")
	}
	if status != ecproto.StatusSuccess {
		return &ecproto.StatusError{Op: "hello", Status: status}
	}
	echo, err := ecproto.ParseHelloResp(resp)
	if err != nil {
		return err
	}
	if echo != probe+ecproto.HelloBump {
		return errors.Errorf("hello echo mismatch: got 0x%08X, expected 0x%08X",
			echo, probe+ecproto.HelloBump)
	}
	return nil
}

// GetVersion reads the version strings of all three firmware copies
// and reports which copy is currently running.
func GetVersion(ctx context.Context, t ecproto.Transport) (*ecproto.Version, error) {
	status, resp, err := t.Send(ctx, ecproto.CmdGetVersion, nil, ecproto.VersionRespSize)
	if err != nil {
		return nil, errors.Wrap(err, "requesting version")
	}
	if status != ecproto.StatusSuccess {
		return nil, &ecproto.StatusError{Op: "get version", Status: status}
	}
	return ecproto.ParseVersionResp(resp)
}
