package uart

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/albenik/go-serial/v2"
	"github.com/pkg/errors"
	"github.com/sigurn/crc16"
	"k8s.io/klog"

	"github.com/openecfw/ecflash/ecproto"
)

const (
	// StartOfFrame begins every frame in both directions
	StartOfFrame = 0xEC

	// MaxRead is the most flash data the firmware returns per read
	// over this link
	MaxRead = 128

	// MaxWrite is the most flash data the firmware accepts per write
	// over this link
	MaxWrite = 64

	// headerSize covers the SOF, opcode or status, and length fields
	headerSize = 4

	// trailerSize covers the 16-bit CRC
	trailerSize = 2

	// pollInterval bounds one port read so cancellation is noticed
	pollInterval = 20 * time.Millisecond
)

var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// Config holds the serial transport configuration.
type Config struct {
	// Baudrate of the serial link
	Baudrate int

	// Timeout bounds one command exchange when the context carries no
	// earlier deadline. Erasing large ranges can take a few seconds.
	Timeout time.Duration
}

func defaultConfig() Config {
	return Config{
		Baudrate: 115200,
		Timeout:  3 * time.Second,
	}
}

// Option is a functional option for configuring the transport.
type Option func(*Config)

// WithBaudrate sets the serial baudrate. Default is 115200.
func WithBaudrate(baudrate int) Option {
	return func(c *Config) {
		if baudrate > 0 {
			c.Baudrate = baudrate
		}
	}
}

// WithTimeout sets the per-command exchange timeout. Default is three
// seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// wirePort is the subset of the serial port the transport drives.
type wirePort interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

// Transport carries controller commands over a serial port. It
// implements ecproto.Transport.
type Transport struct {
	port   wirePort
	name   string
	config Config
}

// Open opens the serial port and returns a transport ready for
// commands.
func Open(name string, opts ...Option) (*Transport, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	port, err := serial.Open(name,
		serial.WithBaudrate(config.Baudrate),
		serial.WithDataBits(8),
		serial.WithParity(serial.NoParity),
		serial.WithStopBits(serial.OneStopBit),
		serial.WithReadTimeout(int(pollInterval/time.Millisecond)),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "opening serial port %s", name)
	}

	klog.V(1).Infof("uart: opened %s at %d baud", name, config.Baudrate)
	return &Transport{port: port, name: name, config: config}, nil
}

// Close closes the underlying serial port.
func (t *Transport) Close() error {
	return t.port.Close()
}

// MaxReadSize returns the flash read ceiling of this link.
func (t *Transport) MaxReadSize() int { return MaxRead }

// MaxWriteSize returns the flash write ceiling of this link.
func (t *Transport) MaxWriteSize() int { return MaxWrite }

// Ping issues a hello command and validates the bumped echo, proving
// the link and the firmware's command loop are alive.
func (t *Transport) Ping(ctx context.Context) error {
	const probe = 0xEC00EC00

	req := ecproto.BuildHelloCmd(probe)
	status, resp, err := t.Send(ctx, ecproto.CmdHello, req, ecproto.HelloRespSize)
	if err != nil {
		return err
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

// Send issues one command frame and reads the response frame back.
func (t *Transport) Send(ctx context.Context, op ecproto.Opcode, req []byte, respSize int) (ecproto.Status, []byte, error) {
	if len(req) > ecproto.ParamAreaSize {
		return 0, nil, errors.Errorf("request size %d exceeds the %d byte parameter area",
			len(req), ecproto.ParamAreaSize)
	}

	deadline := time.Now().Add(t.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	// Stale bytes from an interrupted exchange would desynchronize the
	// framing.
	if err := t.port.ResetInputBuffer(); err != nil {
		return 0, nil, errors.Wrap(err, "flushing serial input")
	}

	frame := buildFrame(op, req)
	klog.V(3).Infof("uart: sending %s, %d byte payload", op, len(req))
	if _, err := t.port.Write(frame); err != nil {
		return 0, nil, errors.Wrapf(err, "sending %s frame", op)
	}

	var header [headerSize]byte
	if err := t.readFull(ctx, deadline, header[:]); err != nil {
		return 0, nil, errors.Wrapf(err, "awaiting %s response", op)
	}
	if header[0] != StartOfFrame {
		return 0, nil, errors.Errorf("bad start of frame: got 0x%02X, expected 0x%02X",
			header[0], StartOfFrame)
	}
	status := ecproto.Status(header[1])
	payloadLen := int(binary.LittleEndian.Uint16(header[2:4]))
	if payloadLen > ecproto.ParamAreaSize {
		return 0, nil, errors.Errorf("response payload %d bytes exceeds the %d byte parameter area",
			payloadLen, ecproto.ParamAreaSize)
	}

	rest := make([]byte, payloadLen+trailerSize)
	if err := t.readFull(ctx, deadline, rest); err != nil {
		return 0, nil, errors.Wrapf(err, "reading %s response", op)
	}
	payload := rest[:payloadLen]

	wantCRC := binary.LittleEndian.Uint16(rest[payloadLen:])
	gotCRC := crc16.Init(crcTable)
	gotCRC = crc16.Update(gotCRC, header[1:], crcTable)
	gotCRC = crc16.Update(gotCRC, payload, crcTable)
	gotCRC = crc16.Complete(gotCRC, crcTable)
	if gotCRC != wantCRC {
		return 0, nil, errors.Errorf("response CRC mismatch: frame carries 0x%04X, computed 0x%04X",
			wantCRC, gotCRC)
	}

	klog.V(3).Infof("uart: %s answered %s, %d byte payload", op, status, payloadLen)
	return status, payload, nil
}

// buildFrame assembles a request frame around the parameter record.
func buildFrame(op ecproto.Opcode, req []byte) []byte {
	frame := make([]byte, headerSize+len(req)+trailerSize)
	frame[0] = StartOfFrame
	frame[1] = byte(op)
	binary.LittleEndian.PutUint16(frame[2:4], uint16(len(req)))
	copy(frame[headerSize:], req)
	crc := crc16.Checksum(frame[1:len(frame)-trailerSize], crcTable)
	binary.LittleEndian.PutUint16(frame[len(frame)-trailerSize:], crc)
	return frame
}

// readFull reads into buf until it is filled. A serial read that
// returns no data is a poll timeout, giving the loop a chance to
// notice cancellation and the exchange deadline.
func (t *Transport) readFull(ctx context.Context, deadline time.Time, buf []byte) error {
	for filled := 0; filled < len(buf); {
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return errors.Errorf("%s timed out with %d of %d bytes received", t.name, filled, len(buf))
		}
		n, err := t.port.Read(buf[filled:])
		if err != nil {
			return errors.Wrap(err, "reading from serial port")
		}
		filled += n
	}
	return nil
}
