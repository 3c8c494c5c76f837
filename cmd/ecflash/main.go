// Command ecflash reads, erases and programs the flash of an embedded
// controller over its host command channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog"
)

var rootCmd = &cobra.Command{
	Use:   "ecflash",
	Short: "Firmware update tool for dual-copy embedded controllers",
	Long: `ecflash reads, erases and programs the flash of an embedded
controller over its host command channel.

The controller keeps three firmware copies (RO, RW-A and RW-B) and
refuses flash operations on the copy it is currently executing. The
update command works around this by jumping between copies and
re-running the refused ranges in a second pass.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	klog.InitFlags(nil)
	flag.Set("logtostderr", "true")

	pf := rootCmd.PersistentFlags()
	pf.AddGoFlagSet(flag.CommandLine)
	pf.String("transport", "uart", "how to reach the controller: uart or chardev")
	pf.String("port", "/dev/ttyUSB0", "serial port for the uart transport")
	pf.Int("baud", 115200, "baud rate for the uart transport")
	pf.Duration("timeout", 3*time.Second, "per-command response timeout for the uart transport")
	pf.String("dev", "/dev/ec0", "device node for the chardev transport")
}

func main() {
	err := run()
	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ecflash: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// parseSize parses a decimal or 0x-prefixed flash offset or length.
func parseSize(label, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Errorf("invalid %s %q", label, s)
	}
	return uint32(v), nil
}

// sizeFlag reads a string flag through parseSize.
func sizeFlag(cmd *cobra.Command, name string) (uint32, error) {
	s, _ := cmd.Flags().GetString(name)
	return parseSize("--"+name, s)
}
