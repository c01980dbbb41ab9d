// Package rsa implements the domain logic of the tool: key derivation,
// the block cipher pipeline and the run-mode driver. Prime search lives
// in rsars/rsa/primegen, the key file codec in rsars/rsa/keys.
package rsa

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"github.com/ghodss/yaml"
)

// RunMode selects what Run does.
type RunMode int

const (
	ModeGenerate RunMode = iota
	ModeEncode
	ModeDecode
	ModeTest
)

func (m RunMode) String() string {
	switch m {
	case ModeGenerate:
		return "generate"
	case ModeEncode:
		return "encode"
	case ModeDecode:
		return "decode"
	case ModeTest:
		return "test"
	}
	return fmt.Sprintf("RunMode(%d)", int(m))
}

// Options carries the full configuration surface of the tool. The json
// tags double as the YAML config file keys.
type Options struct {
	Mode     string `json:"mode"`
	Key      string `json:"key"`
	Comment  string `json:"comment"`
	Binary   bool   `json:"binary"`
	Input    string `json:"input"`
	Output   string `json:"output"`
	PrimeMin uint   `json:"primeMin"`
	PrimeMax uint   `json:"primeMax"`
	Rounds   int    `json:"rounds"`
	TimeMax  int64  `json:"timeMax"`
	Silent   bool   `json:"silent"`
	Retry    bool   `json:"retry"`
	Threads  int    `json:"threads"`
}

func DefaultOptions() Options {
	return Options{
		Mode:     "generate",
		Key:      "key",
		Comment:  "RSA-RS COMMENT",
		Binary:   false,
		Input:    "stdin",
		Output:   "stdout",
		PrimeMin: 14,
		PrimeMax: 512,
		Rounds:   10,
		TimeMax:  1000,
		Silent:   false,
		Retry:    true,
		Threads:  runtime.NumCPU(),
	}
}

// RunMode parses the Mode string.
func (o *Options) RunMode() (RunMode, error) {
	switch o.Mode {
	case "generate":
		return ModeGenerate, nil
	case "encode":
		return ModeEncode, nil
	case "decode":
		return ModeDecode, nil
	case "test":
		return ModeTest, nil
	}
	return 0, fmt.Errorf("unknown run mode %q, available: generate (default), encode, decode, test", o.Mode)
}

// LoadFile overlays o with the values of a YAML options file. The file
// is validated against the embedded JSON schema first, so a typo in a
// key or a wrong type fails loudly instead of being ignored.
func (o *Options) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("options: %w", err)
	}
	return o.load(b)
}

func (o *Options) load(b []byte) error {
	js, err := yaml.YAMLToJSON(b)
	if err != nil {
		return fmt.Errorf("options: invalid yaml: %v", err)
	}

	err = optionsSchema.Validate(bytes.NewBuffer(js))
	if err != nil {
		return fmt.Errorf("options: %v", err)
	}

	err = yaml.Unmarshal(js, o)
	if err != nil {
		return fmt.Errorf("options: %v", err)
	}
	return nil
}
