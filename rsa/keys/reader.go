package keys

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"
)

// number of leading bytes inspected to classify a key file
const judgeLen = 4

// KeyReader consumes a key file in either form and exposes the raw
// binary payload as an io.Reader. Classification looks at the first
// judgeLen bytes: if all of them are ASCII graphic characters the file
// is assumed to be text, otherwise binary. Small binary keys whose
// first four bytes happen to be graphic are misclassified; the format
// provides no disambiguation byte.
type KeyReader struct {
	// Binary reports the detected form.
	Binary bool
	// Header and Footer hold the framing lines of a text key, if any.
	Header string
	Footer string

	payload *bytes.Reader
}

// NewKeyReader reads r to the end and classifies the content. For text
// form, every line starting with '-' is stripped: the first such line
// becomes the header, any line containing "END" the footer; the rest is
// concatenated and base64-decoded.
func NewKeyReader(r io.Reader) (*KeyReader, error) {
	head := make([]byte, judgeLen)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, ParseError{"Data length not enough"}
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, ParseError{"Read data error"}
	}
	raw := append(head, rest...)

	graphic := 0
	for _, b := range head {
		if b > 0x20 && b < 0x7f {
			graphic++
		}
	}

	kr := &KeyReader{Binary: graphic < judgeLen}
	if kr.Binary {
		kr.payload = bytes.NewReader(raw)
		return kr, nil
	}

	var body strings.Builder
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, "-") {
			if strings.Contains(line, "END") {
				kr.Footer = line
			} else {
				kr.Header = line
			}
			continue
		}
		body.WriteString(strings.TrimRight(line, "\r"))
	}

	decoded, err := base64.StdEncoding.DecodeString(body.String())
	if err != nil {
		return nil, ParseError{"invalid base64 body: " + err.Error()}
	}
	kr.payload = bytes.NewReader(decoded)
	return kr, nil
}

func (k *KeyReader) Read(p []byte) (int, error) {
	return k.payload.Read(p)
}
