package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/openecfw/ecflash/ecproto"
)

// rebootCmd represents the reboot command
var rebootCmd = &cobra.Command{
	Use:       "reboot [ro|a|b]",
	Short:     "Reboot the controller into a chosen firmware copy",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"ro", "a", "b"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ecproto.CopyRO
		if len(args) == 1 {
			var err error
			if target, err = parseCopy(args[0]); err != nil {
				return err
			}
		}
		var flags uint8
		if recovery, _ := cmd.Flags().GetBool("recovery"); recovery {
			flags |= ecproto.RebootFlagRecovery
		}
		return withTransport(cmd, func(ctx context.Context, t ecproto.Transport) error {
			req := ecproto.BuildRebootCmd(target, flags)
			status, _, err := t.Send(ctx, ecproto.CmdRebootEC, req, 0)
			if err != nil {
				return errors.Wrapf(err, "rebooting to copy %s", target)
			}
			if status != ecproto.StatusSuccess {
				return &ecproto.StatusError{Op: "reboot", Status: status}
			}
			fmt.Printf("rebooting into %s\n", target)
			return nil
		})
	},
}

func parseCopy(s string) (ecproto.Copy, error) {
	switch s {
	case "ro":
		return ecproto.CopyRO, nil
	case "a", "rw-a":
		return ecproto.CopyRWA, nil
	case "b", "rw-b":
		return ecproto.CopyRWB, nil
	}
	return ecproto.CopyUnknown, errors.Errorf("unknown firmware copy %q, want ro, a or b", s)
}

func init() {
	rootCmd.AddCommand(rebootCmd)
	rebootCmd.Flags().Bool("recovery", false, "ask the controller to come up in recovery mode")
}
