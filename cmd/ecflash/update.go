package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog"

	"github.com/openecfw/ecflash/imagefile"
	"github.com/openecfw/ecflash/updater"
)

// updatePassLimit bounds the erase/write passes over the image. Ranges
// refused on the first pass become writable after one jump away from
// the copy they back, so a single extra pass completes the image.
const updatePassLimit = 2

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update IMAGE",
	Short: "Program a complete firmware image onto the controller",
	Long: `Update programs a complete firmware image in up to two passes.

The image must carry a flash map describing its RO_SECTION,
RW_SECTION_A and RW_SECTION_B areas. The controller is first jumped to
the read-only copy; ranges refused because they back the running copy
are deferred to a second pass issued from another copy, and the
controller finally reboots into the newest successfully written copy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := imagefile.Load(args[0])
		if err != nil {
			return err
		}
		verify, _ := cmd.Flags().GetBool("verify")
		retries, _ := cmd.Flags().GetInt("retries")
		unlimited, _ := cmd.Flags().GetBool("unlimited-retries")
		delay, _ := cmd.Flags().GetDuration("reboot-delay")

		return withDevice(cmd, func(ctx context.Context, dev *updater.Device) error {
			info := dev.Info()
			if info.EraseBlockSize == 0 {
				return errors.New("controller reports a zero erase block size")
			}
			if uint64(len(image)) > uint64(info.FlashSize) {
				return errors.Errorf("image is %d bytes but the flash holds only %d", len(image), info.FlashSize)
			}

			var (
				bar  *pb.ProgressBar
				done int64
			)
			opts := []updater.Option{
				updater.WithVerify(verify),
				updater.WithVerifyRetryLimit(retries),
				updater.WithRebootDelay(delay),
				updater.WithProgress(func(p updater.Progress) {
					if bar != nil && p.Phase == updater.PhaseWriting {
						bar.SetCurrent(done + int64(p.BytesDone))
					}
				}),
			}
			if unlimited {
				opts = append(opts, updater.WithUnlimitedVerifyRetries())
			}
			u := updater.New(dev, opts...)

			if err := u.Prepare(ctx, image); err != nil {
				return err
			}
			for pass := 1; ; pass++ {
				bar = pb.Full.Start64(int64(len(image)))
				bar.Set(pb.Bytes, true).Set("prefix", fmt.Sprintf("pass %d", pass))
				done = 0
				err := writePass(ctx, u, image, info.EraseBlockSize, func(n int) {
					done += int64(n)
					bar.SetCurrent(done)
				})
				bar.Finish()
				if err != nil {
					return err
				}
				if pass == updatePassLimit {
					break
				}
				again, err := u.NeedSecondPass(ctx)
				if err != nil {
					return err
				}
				if !again {
					break
				}
			}
			if err := u.Finish(ctx); err != nil {
				return err
			}
			fmt.Println("update complete")
			return nil
		})
	},
}

// writePass erases and reprograms every erase-block span of the image.
// Spans the controller refuses to touch are deferred to a later pass.
// advance is called with the span length as each span is dealt with.
func writePass(ctx context.Context, u *updater.Updater, image []byte, blockSize uint32, advance func(int)) error {
	for begin := uint32(0); begin < uint32(len(image)); begin += blockSize {
		length := blockSize
		if rest := uint32(len(image)) - begin; rest < length {
			length = rest
		}
		span := image[begin : begin+length]

		err := u.Erase(ctx, begin, length)
		if err == nil {
			err = u.Write(ctx, begin, span)
		}
		if errors.Is(err, updater.ErrAccessDenied) {
			klog.V(1).Infof("deferred 0x%X+0x%X: %v", begin, length, err)
			advance(int(length))
			continue
		}
		if err != nil {
			return err
		}
		advance(int(length))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().Bool("verify", true, "verify every chunk against the controller's checksum")
	updateCmd.Flags().Int("retries", 3, "checksum mismatch retries per chunk")
	updateCmd.Flags().Bool("unlimited-retries", false, "retry checksum mismatches forever")
	updateCmd.Flags().Duration("reboot-delay", time.Second, "settle time after each copy jump")
}
