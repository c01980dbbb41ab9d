package rsa

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"rsars/logging"
	"rsars/rsa/keys"
	"rsars/rsa/primegen"
)

// blocks sampled per self-test run
const testMaxBlocks = 1000

func (o *Options) reader() (io.ReadCloser, error) {
	if o.Input == "stdin" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(o.Input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}

func (o *Options) writer() (io.WriteCloser, error) {
	if o.Output == "stdout" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(o.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Run dispatches on the configured mode.
func (o *Options) Run() error {
	mode, err := o.RunMode()
	if err != nil {
		return err
	}

	switch mode {
	case ModeGenerate:
		return o.runGenerate()
	case ModeEncode, ModeDecode:
		return o.runPipeline(mode)
	case ModeTest:
		return o.runTest()
	}
	return fmt.Errorf("mode %s is not implemented", mode)
}

func (o *Options) runGenerate() error {
	set, err := o.GenerateKey()
	if err != nil {
		return err
	}

	pair := keys.KeyPair{
		Public:  keys.NewPublic(set.Public, o.Comment),
		Private: keys.NewPrivate(set.Private, o.Comment),
	}
	pair.Public.GenerateHeaderFooterBits(int(o.PrimeMax))
	pair.Private.GenerateHeaderFooterBits(int(o.PrimeMax))

	if err := pair.Save(o.Key, !o.Binary); err != nil {
		return err
	}
	logging.Infof("generated key files: %s, %s.pub", o.Key, o.Key)
	return nil
}

func (o *Options) runPipeline(mode RunMode) error {
	path := o.Key
	if mode == ModeEncode {
		path += ".pub"
	}
	kd, err := keys.Load(path)
	if err != nil {
		return err
	}
	if kd.IsZero() {
		return fmt.Errorf("key file %s does not exist", path)
	}

	r, err := o.reader()
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := o.writer()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := Process(r, w, mode, kd.Key, o.Threads, o.Silent); err != nil {
		return err
	}
	logging.Info("done")
	return nil
}

// testReader picks the entropy source for self-test input: the regular
// input unless that is an interactive stdin, in which case /dev/random
// is sampled instead.
func (o *Options) testReader() (io.ReadCloser, error) {
	if o.Input == "stdin" && term.IsTerminal(int(os.Stdin.Fd())) {
		f, err := os.Open("/dev/random")
		if err != nil {
			return nil, fmt.Errorf("opening entropy source: %w", err)
		}
		return f, nil
	}
	return o.reader()
}

func padTo(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	return append(b, make([]byte, size-len(b))...)
}

// runTest exercises a key pair end to end: each sampled source block is
// encrypted, re-serialized the way the pipeline would frame it, then
// decrypted and compared byte for byte. With only one key file present
// it just describes that key.
func (o *Options) runTest() error {
	pair, err := keys.LoadPair(o.Key)
	if err != nil {
		return err
	}

	if pair.Public.IsZero() || pair.Private.IsZero() {
		side := pair.Public
		if side.IsZero() {
			side = pair.Private
		}
		if side.IsZero() {
			return fmt.Errorf("no key files found at %s or %s.pub", o.Key, o.Key)
		}
		fmt.Println("key information:", side.Info())
		return nil
	}

	fmt.Println(pair.Public.Info())
	fmt.Println(pair.Private.Info())
	if pair.Public.Key.M.Cmp(pair.Private.Key.M) != 0 {
		return fmt.Errorf("key pair at %s does not share a modulus", o.Key)
	}
	logging.Info("start testing key pair")

	groupSize := GroupSize(pair.Public.Key.M)
	r, err := o.testReader()
	if err != nil {
		return err
	}
	defer r.Close()

	var blocks [][]byte
	for i := 0; i < testMaxBlocks; i++ {
		block, err := readBlock(r, groupSize)
		if err != nil {
			return fmt.Errorf("reading test input: %w", err)
		}
		if block == nil {
			break
		}
		blocks = append(blocks, block)
	}

	var w io.WriteCloser
	if o.Output != "stdout" {
		w, err = o.writer()
		if err != nil {
			return err
		}
		defer w.Close()
	}

	var bar *progressbar.ProgressBar
	if !o.Silent {
		bar = progressbar.DefaultBytes(int64(len(blocks)*groupSize), "test")
	}

	pub, priv := pair.Public.Key, pair.Private.Key
	for i, block := range blocks {
		m := keys.ParseLE(block)
		c := primegen.PowMod(m, pub.Base, pub.M)
		m2 := primegen.PowMod(c, priv.Base, priv.M)
		if m.Cmp(m2) != 0 {
			panic(fmt.Sprintf("self-test: block %d does not round-trip", i))
		}

		// frame the cipher block the way the pipeline would and run the
		// decryption on the re-parsed bytes
		cipher := padTo(keys.BytesLE(c), 2*groupSize)
		c2 := keys.ParseLE(cipher)
		m3 := primegen.PowMod(c2, priv.Base, priv.M)
		decoded := padTo(keys.BytesLE(m3), len(block))
		if !bytes.Equal(decoded, block) {
			panic(fmt.Sprintf("self-test: block %d decodes to different bytes", i))
		}

		if bar != nil {
			bar.Add(groupSize)
		}
		if w != nil {
			if _, err := w.Write(decoded); err != nil {
				return fmt.Errorf("writing test output: %w", err)
			}
		}
	}
	if bar != nil {
		bar.Finish()
	}
	logging.Info("test pass")
	return nil
}
