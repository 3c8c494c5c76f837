package updater

import (
	"context"

	"github.com/openecfw/ecflash/ecproto"
)

// mockTransport simulates a controller for testing. Responses are
// scripted per opcode and consumed in FIFO order; an opcode with no
// script left answers success with a zeroed payload of the requested
// size. Every request is recorded for order and layout assertions.
type mockTransport struct {
	script   map[ecproto.Opcode][]scriptedResp
	failOn   map[ecproto.Opcode]error
	sent     []sentCmd
	maxRead  int
	maxWrite int
}

type scriptedResp struct {
	status ecproto.Status
	data   []byte
}

type sentCmd struct {
	op  ecproto.Opcode
	req []byte
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		script:   make(map[ecproto.Opcode][]scriptedResp),
		failOn:   make(map[ecproto.Opcode]error),
		maxRead:  128,
		maxWrite: 64,
	}
}

// addResponse queues a response for the next command with this opcode.
func (m *mockTransport) addResponse(op ecproto.Opcode, status ecproto.Status, data []byte) {
	m.script[op] = append(m.script[op], scriptedResp{status: status, data: data})
}

// failWith makes every command with this opcode fail at the transport
// level.
func (m *mockTransport) failWith(op ecproto.Opcode, err error) {
	m.failOn[op] = err
}

func (m *mockTransport) Send(ctx context.Context, op ecproto.Opcode, req []byte, respSize int) (ecproto.Status, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	if err := m.failOn[op]; err != nil {
		return 0, nil, err
	}

	m.sent = append(m.sent, sentCmd{op: op, req: append([]byte(nil), req...)})

	queue := m.script[op]
	if len(queue) == 0 {
		return ecproto.StatusSuccess, make([]byte, respSize), nil
	}
	resp := queue[0]
	m.script[op] = queue[1:]
	return resp.status, resp.data, nil
}

func (m *mockTransport) MaxReadSize() int  { return m.maxRead }
func (m *mockTransport) MaxWriteSize() int { return m.maxWrite }

// opcodes returns the sequence of opcodes sent so far.
func (m *mockTransport) opcodes() []ecproto.Opcode {
	ops := make([]ecproto.Opcode, len(m.sent))
	for i, s := range m.sent {
		ops[i] = s.op
	}
	return ops
}

// reqs returns the recorded requests carrying the given opcode.
func (m *mockTransport) reqs(op ecproto.Opcode) [][]byte {
	var out [][]byte
	for _, s := range m.sent {
		if s.op == op {
			out = append(out, s.req)
		}
	}
	return out
}

// testDevice returns a Device wired to a fresh mock transport without
// going through Probe.
func testDevice() (*Device, *mockTransport) {
	m := newMockTransport()
	dev := &Device{
		transport: m,
		info: ecproto.FlashInfo{
			FlashSize:        0x40000,
			WriteBlockSize:   64,
			EraseBlockSize:   2048,
			ProtectBlockSize: 2048,
		},
	}
	dev.wp = &transportWP{dev: dev}
	return dev, m
}

// testUpdater returns an Updater on a mock transport with the reboot
// and retry delays zeroed so tests run fast.
func testUpdater(opts ...Option) (*Updater, *mockTransport) {
	dev, m := testDevice()
	base := []Option{WithRebootDelay(0), WithVerifyRetryDelay(0)}
	u := New(dev, append(base, opts...)...)
	return u, m
}
