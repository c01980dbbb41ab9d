package keys

import (
	"bytes"
	"io"
)

// line width of the base64 body
const base64Split = 70

// KeyWriter buffers already-encoded text and, on Flush, frames it with
// the header and footer lines, splitting the body every base64Split
// bytes. It is meant to sit below a base64 encoder.
type KeyWriter struct {
	Header string
	Footer string

	w   io.Writer
	buf bytes.Buffer
}

func NewKeyWriter(w io.Writer) *KeyWriter {
	return &KeyWriter{w: w}
}

func (k *KeyWriter) Write(p []byte) (int, error) {
	return k.buf.Write(p)
}

// Flush writes header, body and footer. It must be called exactly once,
// after the upstream encoder has been closed.
func (k *KeyWriter) Flush() error {
	if _, err := io.WriteString(k.w, k.Header+"\n"); err != nil {
		return err
	}

	body := k.buf.Bytes()
	for len(body) > 0 {
		n := base64Split
		if len(body) < n {
			n = len(body)
		}
		if _, err := k.w.Write(body[:n]); err != nil {
			return err
		}
		if _, err := io.WriteString(k.w, "\n"); err != nil {
			return err
		}
		body = body[n:]
	}

	_, err := io.WriteString(k.w, k.Footer)
	return err
}
