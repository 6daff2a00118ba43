package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cosmos/gogoproto/types"
	"github.com/stretchr/testify/require"
	"gitlab.com/accumulatenetwork/overlay/config"
	"gitlab.com/accumulatenetwork/overlay/exp/ioutil"
	"gitlab.com/accumulatenetwork/overlay/internal/logging"
	"gitlab.com/accumulatenetwork/overlay/pkg/errors"
	"gitlab.com/accumulatenetwork/overlay/pkg/message"
	"gitlab.com/accumulatenetwork/overlay/pkg/zerocopy"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.BlockSize = 16
	cfg.ReadSize = 5
	return cfg
}

const input = "foo\nbar\n\na much longer line than the others\n"

func TestEncodeDecode(t *testing.T) {
	for _, threshold := range []int{0, 8} {
		cfg := testConfig()
		cfg.CompressThreshold = threshold
		logger := logging.NewTestLogger(t)

		buf := ioutil.NewMultiBuffer(cfg.BlockSize)
		count, err := encodeLines(cfg, logger, strings.NewReader(input), 3, buf)
		require.NoError(t, err)
		require.Equal(t, 4, count)

		out := new(bytes.Buffer)
		count, err = decodeFrames(cfg, logger, bytes.NewReader(buf.Bytes()), 3, out, false)
		require.NoError(t, err)
		require.Equal(t, 4, count)

		lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		require.True(t, strings.HasSuffix(lines[0], " foo"))
		require.True(t, strings.HasSuffix(lines[1], " bar"))
		require.True(t, strings.HasSuffix(lines[3], " a much longer line than the others"))
	}
}

func TestDecodeSkipsOtherTypes(t *testing.T) {
	cfg := testConfig()
	logger := logging.NewTestLogger(t)

	buf := new(ioutil.Buffer)
	enc := message.NewEncoder(zerocopy.NewChunkWriter(buf, cfg.BlockSize))
	require.NoError(t, enc.Encode(1, &types.StringValue{Value: "one"}))
	require.NoError(t, enc.Encode(2, &types.BytesValue{Value: []byte{1, 2, 3}}))
	require.NoError(t, enc.Encode(1, &types.StringValue{Value: "three"}))
	require.NoError(t, enc.Close())

	out := new(bytes.Buffer)
	count, err := decodeFrames(cfg, logger, bytes.NewReader(buf.Bytes()), 1, out, true)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Contains(t, out.String(), "one")
	require.Contains(t, out.String(), "skipped 5 B")
	require.Contains(t, out.String(), "three")
	require.Contains(t, out.String(), "UncompressedSize")
}

func TestDecodeTruncated(t *testing.T) {
	cfg := testConfig()
	logger := logging.NewTestLogger(t)

	buf := ioutil.NewMultiBuffer(0)
	_, err := encodeLines(cfg, logger, strings.NewReader(input), 0, buf)
	require.NoError(t, err)
	data := buf.Bytes()

	out := new(bytes.Buffer)
	count, err := decodeFrames(cfg, logger, bytes.NewReader(data[:len(data)-2]), 0, out, false)
	require.Error(t, err)
	require.Equal(t, errors.BadRequest, errors.Code(err))
	require.Equal(t, 3, count)
}

func TestEncodeDryRun(t *testing.T) {
	cfg := testConfig()
	sink := new(ioutil.Discard)
	count, err := encodeLines(cfg, logging.NewTestLogger(t), strings.NewReader(input), 0, sink)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	// Four headers plus four payloads
	expect := 4*message.HeaderSize + 5 + 5 + 0 + 36
	require.Equal(t, int64(expect), sink.Size())
}

func TestEncodeTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMessageSize = 10
	buf := new(ioutil.Buffer)
	count, err := encodeLines(cfg, logging.NewTestLogger(t), strings.NewReader("short\nmuch too long\n"), 0, buf)
	require.Error(t, err)
	require.Equal(t, 1, count)
}
