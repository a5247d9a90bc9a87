package fallbackwire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/fallbackdb/internal/record"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := ExecuteRequest{
		ID:     7,
		SQL:    "UPDATE payments SET status=$1 WHERE id=$2",
		Params: []record.Value{record.String("paid"), record.Int(1)},
	}
	require.NoError(t, WriteFrame(&buf, req))

	n := binary.BigEndian.Uint32(buf.Bytes()[:4])
	assert.Equal(t, buf.Len()-4, int(n))

	var got ExecuteRequest
	require.NoError(t, ReadFrame(&buf, &got))
	assert.Equal(t, req, got)
}

func TestFrame_Errors(t *testing.T) {
	var v ExecuteRequest
	var fe *FrameError

	// clean EOF before any header byte
	err := ReadFrame(bytes.NewReader(nil), &v)
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, errors.As(err, &fe))

	err = ReadFrame(bytes.NewReader([]byte{0, 0, 0, 0}), &v)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "empty", fe.Reason)
	assert.False(t, fe.Consumed)

	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], MaxFrameSize+1)
	err = ReadFrame(bytes.NewReader(hdr[:]), &v)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "oversized", fe.Reason)
	assert.Equal(t, MaxFrameSize+1, fe.Size)
	assert.False(t, fe.Consumed)

	// truncated body is a transport error
	binary.BigEndian.PutUint32(hdr[:], 10)
	err = ReadFrame(bytes.NewReader(append(hdr[:], '{')), &v)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, errors.As(err, &fe))
}

func TestFrame_UndecodableBodyLeavesStreamAligned(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("nope")
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	buf.Write(hdr[:])
	buf.Write(body)
	require.NoError(t, WriteFrame(&buf, ExecuteRequest{ID: 2, SQL: "SELECT 1"}))

	var v ExecuteRequest
	var fe *FrameError
	err := ReadFrame(&buf, &v)
	require.ErrorAs(t, err, &fe)
	assert.True(t, fe.Consumed)
	assert.Equal(t, len(body), fe.Size)
	var syntax *json.SyntaxError
	assert.ErrorAs(t, err, &syntax)

	require.NoError(t, ReadFrame(&buf, &v))
	assert.Equal(t, uint64(2), v.ID)
}

func TestFrame_WriteRejectsUnencodable(t *testing.T) {
	var buf bytes.Buffer
	var fe *FrameError
	require.ErrorAs(t, WriteFrame(&buf, map[string]any{"c": make(chan int)}), &fe)
	assert.Equal(t, "unencodable", fe.Reason)
	assert.Zero(t, buf.Len())
}
