//go:build linux

// Package chardev carries the controller protocol through the kernel
// driver's character device. The driver owns the low-level bus; one
// ioctl per command hands it a packed transfer block and gets the
// controller's status and response record back.
package chardev

import (
	"context"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"k8s.io/klog"

	"github.com/openecfw/ecflash/ecproto"
)

const (
	// DefaultDevice is the node the kernel driver exposes
	DefaultDevice = "/dev/ec0"

	// MaxRead is the most flash data the driver forwards per read
	MaxRead = ecproto.ParamAreaSize

	// MaxWrite is the most flash data the driver forwards per write
	MaxWrite = ecproto.FlashWriteDataSize

	// busyRetries and busyInterval bound the wait for a controller
	// still busy with its previous command
	busyRetries  = 50
	busyInterval = time.Millisecond
)

// xfer is the transfer block the driver ABI defines. The buffer
// carries the request record in and the response record out.
type xfer struct {
	version uint32
	opcode  uint32
	outSize uint32
	inSize  uint32
	result  uint32
	buffer  [ecproto.ParamAreaSize]byte
}

// ioctlXcmd selects the driver's transfer command, _IOWR(0xEC, 0, xfer).
var ioctlXcmd = iowr(0xEC, 0, unsafe.Sizeof(xfer{}))

func iowr(typ, nr, size uintptr) uintptr {
	const (
		dirShift  = 30
		sizeShift = 16
		typeShift = 8
		dirRead   = 2
		dirWrite  = 1
	)
	return (dirRead|dirWrite)<<dirShift | size<<sizeShift | typ<<typeShift | nr
}

// sysIoctl performs the raw transfer. Swapped out in tests.
var sysIoctl = func(fd int, req uintptr, arg unsafe.Pointer) unix.Errno {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	return errno
}

// Transport drives the controller through the kernel driver. It
// implements ecproto.Transport.
type Transport struct {
	fd   int
	path string
}

// Open opens the driver node. An empty path selects DefaultDevice.
func Open(path string) (*Transport, error) {
	if path == "" {
		path = DefaultDevice
	}
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	klog.V(1).Infof("chardev: opened %s", path)
	return &Transport{fd: fd, path: path}, nil
}

// Close closes the driver node.
func (t *Transport) Close() error {
	return unix.Close(t.fd)
}

// MaxReadSize returns the flash read ceiling of the driver.
func (t *Transport) MaxReadSize() int { return MaxRead }

// MaxWriteSize returns the flash write ceiling of the driver.
func (t *Transport) MaxWriteSize() int { return MaxWrite }

// Send issues one command through the driver.
func (t *Transport) Send(ctx context.Context, op ecproto.Opcode, req []byte, respSize int) (ecproto.Status, []byte, error) {
	if len(req) > ecproto.ParamAreaSize {
		return 0, nil, errors.Errorf("request size %d exceeds the %d byte parameter area",
			len(req), ecproto.ParamAreaSize)
	}
	if respSize > ecproto.ParamAreaSize {
		return 0, nil, errors.Errorf("response size %d exceeds the %d byte parameter area",
			respSize, ecproto.ParamAreaSize)
	}

	cmd := xfer{
		opcode:  uint32(op),
		outSize: uint32(len(req)),
		inSize:  uint32(respSize),
	}
	copy(cmd.buffer[:], req)

	// The driver answers EAGAIN while the controller is busy with its
	// previous command, notably right after a reboot.
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		errno := t.ioctl(&cmd)
		if errno == 0 {
			break
		}
		if errno != unix.EAGAIN || attempt >= busyRetries {
			return 0, nil, errors.Wrapf(errno, "%s transfer on %s", op, t.path)
		}
		time.Sleep(busyInterval)
	}

	status := ecproto.Status(cmd.result)
	resp := make([]byte, respSize)
	copy(resp, cmd.buffer[:respSize])
	klog.V(3).Infof("chardev: %s answered %s", op, status)
	return status, resp, nil
}

func (t *Transport) ioctl(cmd *xfer) unix.Errno {
	for {
		errno := sysIoctl(t.fd, ioctlXcmd, unsafe.Pointer(cmd))
		if errno != unix.EINTR {
			return errno
		}
	}
}
