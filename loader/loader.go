// Package loader reads AVR firmware images.
//
// Three formats are understood: raw binary flash dumps, Intel HEX files
// (data records only) and AVR ELF executables. Every format produces an
// Image that can be installed into an emu.Mcu.
package loader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format identifies a firmware image format.
type Format int

// Supported image formats.
const (
	FormatAuto Format = iota
	FormatBinary
	FormatHex
	FormatELF
)

// ErrUnknownFormat is returned for a format name that is not recognized.
var ErrUnknownFormat = errors.New("unknown image format")

var formatNames = map[Format]string{
	FormatAuto:   "auto",
	FormatBinary: "bin",
	FormatHex:    "hex",
	FormatELF:    "elf",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat converts a format name ("auto", "bin", "hex", "elf") into a
// Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "bin", "binary", "raw":
		return FormatBinary, nil
	case "hex", "ihex":
		return FormatHex, nil
	case "elf":
		return FormatELF, nil
	}
	return FormatAuto, errors.Wrapf(ErrUnknownFormat, "%q", name)
}

// Segment is a run of bytes destined for one address of a memory bank.
type Segment struct {
	// Addr is the byte address of the first byte.
	Addr uint32
	// Data contains the bytes to install.
	Data []byte
}

// Image is a parsed firmware image.
type Image struct {
	// Entry is the byte address where execution begins.
	Entry uint32
	// Program holds flash contents.
	Program []Segment
	// Data holds initial SRAM contents, addressed from data address 0.
	Data []Segment
}

// flatten lays segments out in one buffer starting at address 0. Gaps
// are zero-filled.
func flatten(segments []Segment) []byte {
	var size uint32
	for _, seg := range segments {
		if end := seg.Addr + uint32(len(seg.Data)); end > size {
			size = end
		}
	}

	out := make([]byte, size)
	for _, seg := range segments {
		copy(out[seg.Addr:], seg.Data)
	}
	return out
}

// ProgramBytes returns the flash contents as one buffer starting at
// address 0.
func (img *Image) ProgramBytes() []byte {
	return flatten(img.Program)
}

// DataBytes returns the initial SRAM contents as one buffer starting at
// data address 0.
func (img *Image) DataBytes() []byte {
	return flatten(img.Data)
}

// Target receives an image. emu.Mcu implements it.
type Target interface {
	LoadProgram(image []byte) int
	LoadData(image []byte) int
}

// Install copies the image into t. It returns the number of program and
// data bytes that fit.
func (img *Image) Install(t Target) (programBytes, dataBytes int) {
	programBytes = t.LoadProgram(img.ProgramBytes())
	if len(img.Data) > 0 {
		dataBytes = t.LoadData(img.DataBytes())
	}
	return programBytes, dataBytes
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// detect picks a format from the file extension, falling back to the
// file contents.
func detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".ihex", ".ihx":
		return FormatHex, nil
	case ".elf":
		return FormatELF, nil
	case ".bin":
		return FormatBinary, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return FormatAuto, errors.Wrapf(err, "failed to open %s", path)
	}

	switch {
	case bytes.HasPrefix(data, elfMagic):
		return FormatELF, nil
	case bytes.HasPrefix(data, []byte(":")):
		return FormatHex, nil
	}
	return FormatBinary, nil
}

// Load reads the image at path. FormatAuto picks the format from the
// file extension and contents.
func Load(path string, format Format) (*Image, error) {
	if format == FormatAuto {
		var err error
		format, err = detect(path)
		if err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatBinary:
		return LoadBinary(path)
	case FormatHex:
		return LoadHex(path)
	case FormatELF:
		return LoadELF(path)
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "format %d", int(format))
}

// LoadBinary reads a raw flash image.
func LoadBinary(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return ParseBinary(data), nil
}

// ParseBinary wraps a raw flash image that starts at address 0.
func ParseBinary(data []byte) *Image {
	return &Image{
		Program: []Segment{{Addr: 0, Data: data}},
	}
}
