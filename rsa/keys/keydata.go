package keys

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// KeyData is the on-disk artifact: the key itself plus its role tag,
// comment and (in text form) the PEM-style header and footer lines.
// It is built once during generation and never mutated afterwards.
type KeyData struct {
	Role    string
	Comment string
	Key     Key
	Header  string
	Footer  string
}

func NewPublic(k Key, comment string) KeyData {
	return KeyData{Role: RolePublic, Comment: comment, Key: k}
}

func NewPrivate(k Key, comment string) KeyData {
	return KeyData{Role: RolePrivate, Comment: comment, Key: k}
}

// IsZero reports whether this side of a pair was absent on disk.
func (d KeyData) IsZero() bool {
	return d.Key.IsZero()
}

// Info describes the key for human consumption in self-test mode.
func (d KeyData) Info() string {
	return fmt.Sprintf("%s key, comment: %s", d.Role, d.Comment)
}

// GenerateHeaderFooter sets the fallback header and footer without a bit
// label, used when a key is saved outside of generation.
func (d *KeyData) GenerateHeaderFooter() {
	role := strings.ToUpper(d.Role)
	d.Header = fmt.Sprintf("-----BEGIN RSA-RS %s KEY-----", role)
	d.Footer = fmt.Sprintf("-----END RSA-RS %s KEY-----", role)
}

// GenerateHeaderFooterBits sets the bit-labeled header and footer, where
// bits is the configured maximum prime bit length.
func (d *KeyData) GenerateHeaderFooterBits(bits int) {
	role := strings.ToUpper(d.Role)
	d.Header = fmt.Sprintf("-----BEGIN RSA-%d %s KEY-----", bits, role)
	d.Footer = fmt.Sprintf("-----END RSA-%d %s KEY-----", bits, role)
}

// encodePayload writes the binary payload:
//
//	u32_le  len_base
//	u32_le  len_m
//	bytes   base, little-endian
//	bytes   m, little-endian
//	bytes   role tag, zero-padded to 7 bytes
//	bytes   comment, to end of payload
func (d *KeyData) encodePayload(w io.Writer) error {
	base := BytesLE(d.Key.Base)
	m := BytesLE(d.Key.M)

	var lens [8]byte
	binary.LittleEndian.PutUint32(lens[0:4], uint32(len(base)))
	binary.LittleEndian.PutUint32(lens[4:8], uint32(len(m)))
	if _, err := w.Write(lens[:]); err != nil {
		return err
	}
	if _, err := w.Write(base); err != nil {
		return err
	}
	if _, err := w.Write(m); err != nil {
		return err
	}

	var role [roleTagLen]byte
	copy(role[:], d.Role)
	if _, err := w.Write(role[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, d.Comment)
	return err
}

// parsePayload is the inverse of encodePayload.
func parsePayload(content []byte) (KeyData, error) {
	if len(content) < 8 {
		return KeyData{}, ParseError{"Data length not enough"}
	}
	lenBase := int(binary.LittleEndian.Uint32(content[0:4]))
	lenM := int(binary.LittleEndian.Uint32(content[4:8]))

	data := content[8:]
	if len(data) < lenBase+lenM+roleTagLen {
		return KeyData{}, ParseError{"Data length not enough"}
	}

	base := ParseLE(data[:lenBase])
	m := ParseLE(data[lenBase : lenBase+lenM])
	role := string(data[lenBase+lenM : lenBase+lenM+roleTagLen])
	comment := string(data[lenBase+lenM+roleTagLen:])

	return KeyData{
		Role:    role,
		Comment: comment,
		Key:     Key{Base: base, M: m},
	}, nil
}

// Save writes the key to path, base64-wrapped with header and footer
// lines unless base64Output is false. Missing header and footer are
// filled in with the fallback form first.
func (d *KeyData) Save(path string, base64Output bool) error {
	if d.Header == "" && d.Footer == "" {
		d.GenerateHeaderFooter()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !base64Output {
		return d.encodePayload(f)
	}

	kw := NewKeyWriter(f)
	kw.Header = d.Header
	kw.Footer = d.Footer
	enc := base64.NewEncoder(base64.StdEncoding, kw)
	if err := d.encodePayload(enc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return kw.Flush()
}

// Load reads a key file, auto-detecting binary and text form. A missing
// file is not an error: it yields the zero KeyData sentinel so that a
// caller can tell a full pair from a single side.
func Load(path string) (KeyData, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return KeyData{Key: ZeroKey()}, nil
		}
		return KeyData{}, err
	}
	defer f.Close()

	kr, err := NewKeyReader(f)
	if err != nil {
		return KeyData{}, err
	}

	content, err := io.ReadAll(kr)
	if err != nil {
		return KeyData{}, err
	}

	d, err := parsePayload(content)
	if err != nil {
		return KeyData{}, err
	}
	d.Header = kr.Header
	d.Footer = kr.Footer
	return d, nil
}

// KeyPair bundles the two on-disk artifacts of one generated key. Either
// side may be the zero sentinel when its file is missing.
type KeyPair struct {
	Public  KeyData
	Private KeyData
}

// LoadPair reads the private key from stem and the public key from
// stem + ".pub".
func LoadPair(stem string) (KeyPair, error) {
	private, err := Load(stem)
	if err != nil {
		return KeyPair{}, fmt.Errorf("loading %s: %w", stem, err)
	}
	public, err := Load(stem + ".pub")
	if err != nil {
		return KeyPair{}, fmt.Errorf("loading %s.pub: %w", stem, err)
	}
	return KeyPair{Public: public, Private: private}, nil
}

// Save writes the private key to stem and the public key to stem + ".pub".
func (p *KeyPair) Save(stem string, base64Output bool) error {
	if err := p.Public.Save(stem+".pub", base64Output); err != nil {
		return fmt.Errorf("saving %s.pub: %w", stem, err)
	}
	if err := p.Private.Save(stem, base64Output); err != nil {
		return fmt.Errorf("saving %s: %w", stem, err)
	}
	return nil
}
