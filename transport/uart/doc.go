// Package uart carries the controller protocol over a serial link.
//
// Each command and response travels in one frame:
//
//	+--------+----------------+------------+------------+-----------+
//	| Byte 0 | Byte 1         | Bytes 2-3  | Bytes 4-N  | Last 2    |
//	+--------+----------------+------------+------------+-----------+
//	| SOF    | Opcode/Status  | Length     | Payload    | CRC-16    |
//	| 0xEC   |                | (LE)       |            | (LE)      |
//	+--------+----------------+------------+------------+-----------+
//
// The CRC is CRC-16/CCITT-FALSE computed over everything between the
// SOF and the CRC itself. Requests carry an opcode in byte 1 and the
// packed parameter record as payload; responses carry the status byte
// and the response record.
//
// A corrupted or missing frame is a transport failure, not a command
// outcome: Send returns an error and the caller must treat the command
// as undelivered.
//
// # Usage
//
//	t, err := uart.Open("/dev/ttyUSB0", uart.WithBaudrate(115200))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Close()
//
//	if err := t.Ping(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package uart
