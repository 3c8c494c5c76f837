package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/openecfw/ecflash/imagefile"
	"github.com/openecfw/ecflash/updater"
)

// progressBar renders a single engine operation of the given phase.
func progressBar(phase string, total int) (updater.ProgressCallback, func()) {
	bar := pb.Full.Start64(int64(total))
	bar.Set(pb.Bytes, true)
	cb := func(p updater.Progress) {
		if p.Phase == phase {
			bar.SetCurrent(int64(p.BytesDone))
		}
	}
	return cb, func() { bar.Finish() }
}

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read OUT",
	Short: "Read flash contents into a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := sizeFlag(cmd, "offset")
		if err != nil {
			return err
		}
		size, err := sizeFlag(cmd, "size")
		if err != nil {
			return err
		}
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			if size == 0 {
				total := dev.Info().FlashSize
				if offset >= total {
					return errors.Errorf("offset 0x%X is beyond the 0x%X byte flash", offset, total)
				}
				size = total - offset
			}
			cb, finish := progressBar(updater.PhaseReading, int(size))
			u := updater.New(dev, updater.WithProgress(cb))
			data, err := u.Read(ctx, offset, size)
			finish()
			if err != nil {
				return err
			}
			return os.WriteFile(args[0], data, 0o644)
		})
	},
}

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write IMAGE",
	Short: "Program a file into flash at an offset",
	Long: `Write programs raw data without consulting the image's flash map.
The target range must be erased first; a range backing the running
copy is refused by the controller.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := sizeFlag(cmd, "offset")
		if err != nil {
			return err
		}
		data, err := imagefile.Load(args[0])
		if err != nil {
			return err
		}
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			cb, finish := progressBar(updater.PhaseWriting, len(data))
			u := updater.New(dev, updater.WithProgress(cb))
			err := u.Write(ctx, offset, data)
			finish()
			return err
		})
	},
}

// eraseCmd represents the erase command
var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase a flash range",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := sizeFlag(cmd, "offset")
		if err != nil {
			return err
		}
		size, err := sizeFlag(cmd, "size")
		if err != nil {
			return err
		}
		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			u := updater.New(dev)
			if err := u.Erase(ctx, offset, size); err != nil {
				return err
			}
			fmt.Printf("erased 0x%X+0x%X\n", offset, size)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(eraseCmd)

	readCmd.Flags().String("offset", "0", "flash offset to read from (decimal or 0x hex)")
	readCmd.Flags().String("size", "0", "bytes to read, 0 meaning through the end of flash")
	writeCmd.Flags().String("offset", "0", "flash offset to program at (decimal or 0x hex)")
	eraseCmd.Flags().String("offset", "0", "flash offset to erase from (decimal or 0x hex)")
	eraseCmd.Flags().String("size", "", "bytes to erase (decimal or 0x hex)")
	eraseCmd.MarkFlagRequired("size")
}
