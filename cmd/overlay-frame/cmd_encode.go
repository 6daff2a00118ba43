package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cosmos/gogoproto/types"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/overlay/config"
	"gitlab.com/accumulatenetwork/overlay/exp/ioutil"
	"gitlab.com/accumulatenetwork/overlay/pkg/message"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

var cmdEncode = &cobra.Command{
	Use:   "encode [output file]",
	Short: "Frame each line of standard input as a string message",
	Args:  cobra.MaximumNArgs(1),
	Run:   encode,
}

var flagEncode struct {
	Type   uint16
	DryRun bool
}

func init() {
	cmdMain.AddCommand(cmdEncode)

	cmdEncode.Flags().Uint16VarP(&flagEncode.Type, "type", "t", 0, "Message type of the frames")
	cmdEncode.Flags().BoolVar(&flagEncode.DryRun, "dry-run", false, "Encode without writing anything and report the size")
}

func encode(_ *cobra.Command, args []string) {
	cfg, logger := loadConfig()

	if flagEncode.DryRun {
		sink := new(ioutil.Discard)
		count, err := encodeLines(cfg, logger, os.Stdin, flagEncode.Type, sink)
		check(err)
		fmt.Printf("Would write %d frames, %s\n", count, sizeColor.Sprint(humanize.Bytes(uint64(sink.Size()))))
		return
	}

	if len(args) == 0 {
		fatalf("an output file is required unless --dry-run is set")
	}

	buf := ioutil.NewMultiBuffer(cfg.BlockSize)
	count, err := encodeLines(cfg, logger, os.Stdin, flagEncode.Type, buf)
	check(err)

	f, err := os.Create(args[0])
	checkf(err, "create %s", args[0])
	defer f.Close()

	n, err := buf.WriteTo(f)
	checkf(err, "write %s", args[0])
	fmt.Printf("Wrote %d frames, %s\n", count, sizeColor.Sprint(humanize.Bytes(uint64(n))))
}

// encodeLines writes a frame for each line of in to sink.
func encodeLines(cfg *config.Config, logger *slog.Logger, in io.Reader, typ uint16, sink zerocopy.Sink) (count int, err error) {
	enc := message.NewEncoder(zerocopy.NewChunkWriter(sink, cfg.BlockSize), cfg.FrameOptions(logger)...)
	defer func() {
		e := enc.Close()
		if err == nil {
			err = e
		}
	}()

	scan := bufio.NewScanner(in)
	scan.Buffer(nil, cfg.MaxMessageSize)
	for scan.Scan() {
		err = enc.Encode(typ, &types.StringValue{Value: scan.Text()})
		if err != nil {
			return count, err
		}
		count++
	}
	logger.Info("Encoded", "frames", count, "bytes", enc.ByteCount())
	return count, scan.Err()
}
