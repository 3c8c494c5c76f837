//go:build linux

package chardev

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/openecfw/ecflash/ecproto"
)

// withFakeIoctl routes driver transfers to fn for the duration of a
// test.
func withFakeIoctl(t *testing.T, fn func(cmd *xfer) unix.Errno) {
	t.Helper()
	orig := sysIoctl
	sysIoctl = func(fd int, req uintptr, arg unsafe.Pointer) unix.Errno {
		if req != ioctlXcmd {
			t.Errorf("ioctl request = 0x%X, want 0x%X", req, ioctlXcmd)
		}
		return fn((*xfer)(arg))
	}
	t.Cleanup(func() { sysIoctl = orig })
}

func TestSend(t *testing.T) {
	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		if cmd.opcode != uint32(ecproto.CmdFlashInfo) {
			t.Errorf("opcode = 0x%02X, want 0x%02X", cmd.opcode, uint32(ecproto.CmdFlashInfo))
		}
		if cmd.outSize != 0 {
			t.Errorf("outSize = %d, want 0", cmd.outSize)
		}
		if cmd.inSize != ecproto.FlashInfoRespSize {
			t.Errorf("inSize = %d, want %d", cmd.inSize, ecproto.FlashInfoRespSize)
		}
		binary.LittleEndian.PutUint32(cmd.buffer[0:], 0x20000)
		binary.LittleEndian.PutUint32(cmd.buffer[4:], 64)
		binary.LittleEndian.PutUint32(cmd.buffer[8:], 2048)
		binary.LittleEndian.PutUint32(cmd.buffer[12:], 2048)
		cmd.result = uint32(ecproto.StatusSuccess)
		return 0
	})

	tr := &Transport{fd: 3, path: DefaultDevice}
	status, resp, err := tr.Send(context.Background(), ecproto.CmdFlashInfo, nil, ecproto.FlashInfoRespSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != ecproto.StatusSuccess {
		t.Errorf("status = %v, want success", status)
	}

	info, err := ecproto.ParseFlashInfoResp(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.FlashSize != 0x20000 {
		t.Errorf("FlashSize = 0x%X, want 0x20000", info.FlashSize)
	}
}

func TestSendCarriesRequest(t *testing.T) {
	req, err := ecproto.BuildFlashReadCmd(0x1000, 64)
	if err != nil {
		t.Fatal(err)
	}

	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		if cmd.outSize != uint32(len(req)) {
			t.Errorf("outSize = %d, want %d", cmd.outSize, len(req))
		}
		if !bytes.Equal(cmd.buffer[:len(req)], req) {
			t.Error("buffer does not carry the request record")
		}
		cmd.result = uint32(ecproto.StatusSuccess)
		return 0
	})

	tr := &Transport{fd: 3, path: DefaultDevice}
	if _, _, err := tr.Send(context.Background(), ecproto.CmdFlashRead, req, 64); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendStatusPassthrough(t *testing.T) {
	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		cmd.result = uint32(ecproto.StatusAccessDenied)
		return 0
	})

	tr := &Transport{fd: 3, path: DefaultDevice}
	status, _, err := tr.Send(context.Background(), ecproto.CmdFlashErase,
		make([]byte, ecproto.FlashEraseReqSize), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != ecproto.StatusAccessDenied {
		t.Errorf("status = %v, want access denied", status)
	}
}

func TestSendBusyRetry(t *testing.T) {
	calls := 0
	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		calls++
		if calls < 4 {
			return unix.EAGAIN
		}
		cmd.result = uint32(ecproto.StatusSuccess)
		return 0
	})

	tr := &Transport{fd: 3, path: DefaultDevice}
	status, _, err := tr.Send(context.Background(), ecproto.CmdHello,
		ecproto.BuildHelloCmd(0), ecproto.HelloRespSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != ecproto.StatusSuccess {
		t.Errorf("status = %v, want success", status)
	}
	if calls != 4 {
		t.Errorf("ioctl calls = %d, want 4", calls)
	}
}

func TestSendBusyExhausted(t *testing.T) {
	calls := 0
	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		calls++
		return unix.EAGAIN
	})

	tr := &Transport{fd: 3, path: DefaultDevice}
	_, _, err := tr.Send(context.Background(), ecproto.CmdHello,
		ecproto.BuildHelloCmd(0), ecproto.HelloRespSize)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != busyRetries {
		t.Errorf("ioctl calls = %d, want %d", calls, busyRetries)
	}
}

func TestSendInterruptedRetry(t *testing.T) {
	calls := 0
	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		calls++
		if calls == 1 {
			return unix.EINTR
		}
		cmd.result = uint32(ecproto.StatusSuccess)
		return 0
	})

	tr := &Transport{fd: 3, path: DefaultDevice}
	if _, _, err := tr.Send(context.Background(), ecproto.CmdHello,
		ecproto.BuildHelloCmd(0), ecproto.HelloRespSize); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("ioctl calls = %d, want 2", calls)
	}
}

func TestSendValidation(t *testing.T) {
	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		t.Error("ioctl issued for an invalid request")
		return 0
	})

	tr := &Transport{fd: 3, path: DefaultDevice}

	if _, _, err := tr.Send(context.Background(), ecproto.CmdFlashWrite,
		make([]byte, ecproto.ParamAreaSize+1), 0); err == nil {
		t.Error("oversized request accepted")
	}
	if _, _, err := tr.Send(context.Background(), ecproto.CmdFlashRead,
		nil, ecproto.ParamAreaSize+1); err == nil {
		t.Error("oversized response size accepted")
	}
}

func TestSendContextCancelled(t *testing.T) {
	withFakeIoctl(t, func(cmd *xfer) unix.Errno {
		t.Error("ioctl issued with a cancelled context")
		return 0
	})

	tr := &Transport{fd: 3, path: DefaultDevice}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := tr.Send(ctx, ecproto.CmdHello, ecproto.BuildHelloCmd(0), 4); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestTransferBlockLayout(t *testing.T) {
	if size := unsafe.Sizeof(xfer{}); size != 148 {
		t.Errorf("transfer block size = %d, want 148", size)
	}
	if ioctlXcmd != 0xC094EC00 {
		t.Errorf("ioctl request = 0x%X, want 0xC094EC00", ioctlXcmd)
	}
}
