package ecproto

import "context"

// Transport is the synchronous request/response channel to the
// controller. Implementations carry one command at a time: Send blocks
// until the response arrives or the exchange fails.
//
// The three outcomes are kept distinct:
//
//   - err != nil: the command could not be delivered or no response
//     arrived. Always fatal to the caller; the status and payload are
//     meaningless.
//   - err == nil: status is the controller-reported outcome and resp
//     holds exactly the response record bytes (empty for commands with
//     no response, e.g. reboot).
//
// Send must honor ctx cancellation while blocked.
type Transport interface {
	// Send issues one command. req is the packed request record (nil or
	// empty for commands without parameters); respSize is the exact
	// response record size the caller expects, 0 for none.
	Send(ctx context.Context, op Opcode, req []byte, respSize int) (status Status, resp []byte, err error)

	// MaxReadSize returns the most data bytes this transport can carry
	// in a single FlashRead response.
	MaxReadSize() int

	// MaxWriteSize returns the most data bytes this transport can carry
	// in a single FlashWrite request.
	MaxWriteSize() int
}
