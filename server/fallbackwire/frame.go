package fallbackwire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// A frame is a 4-byte big-endian body length followed by a JSON body.
const (
	headerLen = 4
	// MaxFrameSize bounds the body a peer may announce.
	MaxFrameSize = 8 << 20
)

// FrameError describes a frame that was received or built but cannot be
// used. Plain transport errors (EOF, resets, deadlines) are never wrapped in
// a FrameError.
type FrameError struct {
	Size   int
	Reason string
	Err    error
	// Consumed is set when the whole body was read, so the stream is still
	// positioned on the next header.
	Consumed bool
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fallbackwire: %s frame (%d bytes): %v", e.Reason, e.Size, e.Err)
	}
	return fmt.Sprintf("fallbackwire: %s frame (%d bytes)", e.Reason, e.Size)
}

func (e *FrameError) Unwrap() error { return e.Err }

// ReadFrame decodes the next frame from r into v.
func ReadFrame(r io.Reader, v any) error {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}

	size := int(binary.BigEndian.Uint32(hdr[:]))
	switch {
	case size == 0:
		return &FrameError{Reason: "empty"}
	case size > MaxFrameSize:
		return &FrameError{Size: size, Reason: "oversized"}
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &FrameError{Size: size, Reason: "undecodable", Err: err, Consumed: true}
	}
	return nil
}

// WriteFrame encodes v and sends header and body with a single Write.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return &FrameError{Reason: "unencodable", Err: err}
	}
	if len(body) > MaxFrameSize {
		return &FrameError{Size: len(body), Reason: "oversized"}
	}

	frame := binary.BigEndian.AppendUint32(make([]byte, 0, headerLen+len(body)), uint32(len(body)))
	_, err = w.Write(append(frame, body...))
	return err
}
