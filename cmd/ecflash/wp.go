package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openecfw/ecflash/updater"
)

// wpCmd groups the write-protect subcommands.
var wpCmd = &cobra.Command{
	Use:   "wp",
	Short: "Inspect and control flash write protection",
}

var wpStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the protected range and whether protection is enabled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			st, err := dev.WriteProtect().Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("range:   0x%X + 0x%X\n", st.Range.Offset, st.Range.Size)
			fmt.Printf("enabled: %v\n", st.Enabled)
			return nil
		})
	},
}

var wpRangeCmd = &cobra.Command{
	Use:   "range OFFSET SIZE",
	Short: "Set the flash range write protection covers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := parseSize("offset", args[0])
		if err != nil {
			return err
		}
		size, err := parseSize("size", args[1])
		if err != nil {
			return err
		}
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			return dev.WriteProtect().SetRange(ctx, offset, size)
		})
	},
}

var wpEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable write protection over the configured range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			return dev.WriteProtect().Enable(ctx)
		})
	},
}

var wpDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable write protection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			return dev.WriteProtect().Disable(ctx)
		})
	},
}

var wpListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the protectable flash ranges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			granularity := dev.Info().ProtectBlockSize
			for _, r := range dev.WriteProtect().ListRanges() {
				fmt.Printf("0x%08X + 0x%X (granularity 0x%X)\n", r.Offset, r.Size, granularity)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(wpCmd)
	wpCmd.AddCommand(wpStatusCmd)
	wpCmd.AddCommand(wpRangeCmd)
	wpCmd.AddCommand(wpEnableCmd)
	wpCmd.AddCommand(wpDisableCmd)
	wpCmd.AddCommand(wpListCmd)
}
