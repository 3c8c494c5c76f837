package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/openecfw/ecflash/ecproto"
	"github.com/openecfw/ecflash/transport/uart"
	"github.com/openecfw/ecflash/updater"
)

// openTransport builds the transport selected by the global flags. The
// caller owns the returned close function.
func openTransport(cmd *cobra.Command) (ecproto.Transport, func() error, error) {
	kind, _ := cmd.Flags().GetString("transport")
	switch kind {
	case "uart":
		port, _ := cmd.Flags().GetString("port")
		baud, _ := cmd.Flags().GetInt("baud")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		t, err := uart.Open(port, uart.WithBaudrate(baud), uart.WithTimeout(timeout))
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	case "chardev":
		dev, _ := cmd.Flags().GetString("dev")
		return openChardev(dev)
	default:
		return nil, nil, errors.Errorf("unknown transport %q, want uart or chardev", kind)
	}
}

// withTransport runs fn against the configured transport.
func withTransport(cmd *cobra.Command, fn func(ctx context.Context, t ecproto.Transport) error) error {
	t, closeTransport, err := openTransport(cmd)
	if err != nil {
		return err
	}
	defer closeTransport()
	return fn(cmd.Context(), t)
}

// withDevice probes the controller before handing it to fn.
func withDevice(cmd *cobra.Command, fn func(ctx context.Context, dev *updater.Device) error) error {
	return withTransport(cmd, func(ctx context.Context, t ecproto.Transport) error {
		dev, err := updater.Probe(ctx, t)
		if err != nil {
			return err
		}
		return fn(ctx, dev)
	})
}
