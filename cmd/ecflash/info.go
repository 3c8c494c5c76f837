package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openecfw/ecflash/ecproto"
	"github.com/openecfw/ecflash/updater"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the controller's flash geometry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			info := dev.Info()
			fmt.Printf("flash size:         0x%X (%d bytes)\n", info.FlashSize, info.FlashSize)
			fmt.Printf("write block size:   0x%X\n", info.WriteBlockSize)
			fmt.Printf("erase block size:   0x%X\n", info.EraseBlockSize)
			fmt.Printf("protect block size: 0x%X\n", info.ProtectBlockSize)
			return nil
		})
	},
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the firmware version of each copy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTransport(cmd, func(ctx context.Context, t ecproto.Transport) error {
			v, err := updater.GetVersion(ctx, t)
			if err != nil {
				return err
			}
			running := func(c ecproto.Copy) string {
				if v.Current == c {
					return " (running)"
				}
				return ""
			}
			fmt.Printf("RO:   %s%s\n", v.RO, running(ecproto.CopyRO))
			fmt.Printf("RW-A: %s%s\n", v.RWA, running(ecproto.CopyRWA))
			fmt.Printf("RW-B: %s%s\n", v.RWB, running(ecproto.CopyRWB))
			return nil
		})
	},
}

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the controller answers commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTransport(cmd, func(ctx context.Context, t ecproto.Transport) error {
			if err := updater.Ping(ctx, t); err != nil {
				return err
			}
			fmt.Println("controller is alive")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pingCmd)
}
