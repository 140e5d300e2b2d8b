package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// MaxFrameSize bounds a single frame. Clipboard images are at most a
// few megabytes; anything past this is a malformed or hostile peer.
const MaxFrameSize = 16 << 20

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical payload always
// produces identical bytes.
var encMode cbor.EncMode

// decMode accepts standard CBOR; unknown fields are ignored so older
// clients keep working against newer daemons.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("protocol: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("protocol: CBOR decoder initialization failed: " + err.Error())
	}
}

// WritePayload frames and writes one payload: a 4-byte big-endian
// length prefix followed by the CBOR-encoded envelope.
func WritePayload(w io.Writer, p *Payload) error {
	body, err := encMode.Marshal(p)
	if err != nil {
		return fmt.Errorf("protocol: encode payload: %w", err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("protocol: frame of %d bytes exceeds limit", len(body))
	}

	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("protocol: write frame length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("protocol: write frame body: %w", err)
	}
	return nil
}

// ReadPayload reads one framed payload. io.EOF is returned unwrapped
// when the peer closed the connection cleanly between frames.
func ReadPayload(r io.Reader) (*Payload, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("protocol: read frame length: %w", err)
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("protocol: frame of %d bytes exceeds limit", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("protocol: read frame body: %w", err)
	}

	var p Payload
	if err := decMode.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("protocol: decode payload: %w", err)
	}
	return &p, nil
}

// WriteRequest frames a request.
func WriteRequest(w io.Writer, req *Request) error {
	return WritePayload(w, &Payload{Request: req})
}

// WriteResponse frames a response.
func WriteResponse(w io.Writer, resp *Response) error {
	return WritePayload(w, &Payload{Response: resp})
}

// ReadRequest reads one payload and requires it to be a request.
func ReadRequest(r io.Reader) (*Request, error) {
	p, err := ReadPayload(r)
	if err != nil {
		return nil, err
	}
	if p.Request == nil {
		return nil, ErrBadPayload
	}
	return p.Request, nil
}

// ReadResponse reads one payload and requires it to be a response.
func ReadResponse(r io.Reader) (*Response, error) {
	p, err := ReadPayload(r)
	if err != nil {
		return nil, err
	}
	if p.Response == nil {
		return nil, ErrBadPayload
	}
	return p.Response, nil
}
