// Package proxy exposes compilation as a remote service.
//
// The exchange is binary and length-prefixed, all integers big-endian:
//
//	request:  id int64 | len uint32 | options (UTF-8) | len uint32 | source
//	response: id int64 | code int32 | len uint32 | stdout | len uint32 | stderr | len uint32 | artifact
//
// A request id of -1 is a shutdown command and carries no body.
package proxy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
)

// ShutdownID is the request id that stops the server.
const ShutdownID int64 = -1

// MaxField bounds every length-prefixed field.
const MaxField = 64 << 20

// Request is one compilation request.
type Request struct {
	ID      int64
	Options string
	// Source holds one or more msgpack-encoded module trees.
	Source []byte
}

// Response echoes the request id. Artifact is empty on failure.
type Response struct {
	ID       int64
	Code     int32
	Stdout   []byte
	Stderr   []byte
	Artifact []byte
}

// ErrorKind classifies protocol failures.
type ErrorKind uint8

const (
	ErrTruncated ErrorKind = iota + 1
	ErrTooLarge
)

// ProtocolError reports a malformed frame.
type ProtocolError struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *ProtocolError) Error() string {
	switch e.Kind {
	case ErrTooLarge:
		return fmt.Sprintf("proxy: %s exceeds %d bytes", e.Field, MaxField)
	default:
		return fmt.Sprintf("proxy: truncated %s: %v", e.Field, e.Err)
	}
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsShutdown reports the shutdown command.
func (r *Request) IsShutdown() bool { return r.ID == ShutdownID }

func ReadRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := binary.Read(r, binary.BigEndian, &req.ID); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &ProtocolError{Kind: ErrTruncated, Field: "request id", Err: err}
	}
	if req.IsShutdown() {
		return &req, nil
	}
	opts, err := readField(r, "options")
	if err != nil {
		return nil, err
	}
	req.Options = string(opts)
	if req.Source, err = readField(r, "source"); err != nil {
		return nil, err
	}
	return &req, nil
}

func WriteRequest(w io.Writer, req *Request) error {
	if err := binary.Write(w, binary.BigEndian, req.ID); err != nil {
		return err
	}
	if req.IsShutdown() {
		return nil
	}
	if err := writeField(w, "options", []byte(req.Options)); err != nil {
		return err
	}
	return writeField(w, "source", req.Source)
}

func ReadResponse(r io.Reader) (*Response, error) {
	var resp Response
	if err := binary.Read(r, binary.BigEndian, &resp.ID); err != nil {
		return nil, &ProtocolError{Kind: ErrTruncated, Field: "response id", Err: err}
	}
	if err := binary.Read(r, binary.BigEndian, &resp.Code); err != nil {
		return nil, &ProtocolError{Kind: ErrTruncated, Field: "result code", Err: err}
	}
	var err error
	if resp.Stdout, err = readField(r, "stdout"); err != nil {
		return nil, err
	}
	if resp.Stderr, err = readField(r, "stderr"); err != nil {
		return nil, err
	}
	if resp.Artifact, err = readField(r, "artifact"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func WriteResponse(w io.Writer, resp *Response) error {
	if err := binary.Write(w, binary.BigEndian, resp.ID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, resp.Code); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		data []byte
	}{{"stdout", resp.Stdout}, {"stderr", resp.Stderr}, {"artifact", resp.Artifact}} {
		if err := writeField(w, f.name, f.data); err != nil {
			return err
		}
	}
	return nil
}

func readField(r io.Reader, name string) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, &ProtocolError{Kind: ErrTruncated, Field: name + " length", Err: err}
	}
	if n > MaxField {
		return nil, &ProtocolError{Kind: ErrTooLarge, Field: name}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &ProtocolError{Kind: ErrTruncated, Field: name, Err: err}
	}
	return buf, nil
}

func writeField(w io.Writer, name string, data []byte) error {
	n, err := safecast.Conv[uint32](len(data))
	if err != nil || n > MaxField {
		return &ProtocolError{Kind: ErrTooLarge, Field: name}
	}
	if err := binary.Write(w, binary.BigEndian, n); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
