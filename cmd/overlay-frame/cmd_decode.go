package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cosmos/gogoproto/types"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gitlab.com/accumulatenetwork/overlay/config"
	"gitlab.com/accumulatenetwork/overlay/exp/ioutil"
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
	"gitlab.com/accumulatenetwork/overlay/pkg/message"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

var cmdDecode = &cobra.Command{
	Use:   "decode <input file>",
	Short: "Print the string messages in a frame file",
	Args:  cobra.ExactArgs(1),
	Run:   decode,
}

var flagDecode struct {
	Type uint16
	Dump bool
}

func init() {
	cmdMain.AddCommand(cmdDecode)

	cmdDecode.Flags().Uint16VarP(&flagDecode.Type, "type", "t", 0, "Message type to decode; frames of other types are skipped")
	cmdDecode.Flags().BoolVar(&flagDecode.Dump, "dump", false, "Dump each frame header")
}

func decode(_ *cobra.Command, args []string) {
	cfg, logger := loadConfig()

	f, err := os.Open(args[0])
	checkf(err, "open %s", args[0])
	defer f.Close()

	count, err := decodeFrames(cfg, logger, f, flagDecode.Type, os.Stdout, flagDecode.Dump)
	checkf(err, "after %d frames", count)
}

// decodeFrames reads frames from in the way a connection would, one read
// at a time into a receive buffer, and prints the ones of the given type.
// Frames are decoded as soon as they are complete and then discarded from
// the buffer.
func decodeFrames(cfg *config.Config, logger *slog.Logger, in io.Reader, typ uint16, out io.Writer, dump bool) (int, error) {
	buf := ioutil.NewMultiBuffer(cfg.ReadSize)
	var count int
	for {
		_, err := buf.ReadOnce(in, cfg.ReadSize)
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return count, errors.UnknownError.WithFormat("read: %w", err)
		}

		n, err := decodeBuffered(cfg, logger, buf.Data(), typ, out, dump)
		count += n.frames
		if err != nil {
			return count, err
		}
		buf.Consume(int(n.consumed))

		if !eof {
			continue
		}
		if buf.Len() > 0 {
			return count, errors.BadRequest.WithFormat("input ends with a partial frame (%s)", humanize.Bytes(uint64(buf.Len())))
		}
		logger.Info("Decoded", "frames", count)
		return count, nil
	}
}

var dumper = spew.ConfigState{Indent: "  ", DisableMethods: true, DisablePointerAddresses: true}

type decodeProgress struct {
	frames   int
	consumed int64
}

// decodeBuffered decodes the complete frames in data.
func decodeBuffered(cfg *config.Config, logger *slog.Logger, data zerocopy.BufferSequence, typ uint16, out io.Writer, dump bool) (n decodeProgress, err error) {
	dec := message.NewDecoder(zerocopy.NewChunkReader(data), cfg.FrameOptions(logger)...)
	defer func() { n.consumed = dec.Consumed() }()

	for {
		h, err := dec.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return n, nil
			}
			return n, err
		}

		if h.Type != typ {
			err = dec.Skip()
		} else {
			v := new(types.StringValue)
			err = dec.Decode(v)
			if err == nil {
				n.frames++
				fmt.Fprintf(out, "%s %s\n", typeColor.Sprintf("[%d]", h.Type), v.Value)
			}
		}
		switch {
		case errors.Is(err, io.ErrUnexpectedEOF):
			return n, nil
		case err != nil:
			return n, err
		}

		if h.Type != typ {
			fmt.Fprintf(out, "%s skipped %s\n", typeColor.Sprintf("[%d]", h.Type), humanize.Bytes(uint64(h.Size)))
		}
		if dump {
			dumper.Fdump(out, h)
		}
	}
}
