package loader

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
)

// hexEOFRecord terminates every Intel HEX file handed to the parser.
const hexEOFRecord = ":00000001FF"

// maxHexAddress bounds the address space kept from an Intel HEX file; the
// PC is 16 bits wide.
const maxHexAddress = 0x10000

// ErrBadHexRecord is returned for a malformed Intel HEX file.
var ErrBadHexRecord = errors.New("malformed Intel HEX record")

// LoadHex reads an Intel HEX file.
func LoadHex(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	img, err := ParseHex(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return img, nil
}

// ParseHex parses Intel HEX text. Blank lines are skipped and an
// end-of-file record ends the input; a missing one is implied. Extended
// address records are applied, and data that lands at or above 64 KiB is
// dropped.
func ParseHex(r io.Reader) (*Image, error) {
	records, err := hexRecords(r)
	if err != nil {
		return nil, err
	}

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(strings.NewReader(records)); err != nil {
		return nil, errors.Wrap(ErrBadHexRecord, err.Error())
	}

	img := &Image{}
	for _, seg := range mem.GetDataSegments() {
		if seg.Address >= maxHexAddress {
			continue
		}

		data := seg.Data
		if end := uint64(seg.Address) + uint64(len(data)); end > maxHexAddress {
			data = data[:maxHexAddress-seg.Address]
		}
		img.Program = append(img.Program, Segment{Addr: seg.Address, Data: data})
	}

	return img, nil
}

// hexRecords collects the non-blank lines up to the end-of-file record.
func hexRecords(r io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sb.WriteString(line)
		sb.WriteString("\n")
		if strings.EqualFold(line, hexEOFRecord) {
			return sb.String(), nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "failed to read Intel HEX")
	}

	sb.WriteString(hexEOFRecord)
	sb.WriteString("\n")
	return sb.String(), nil
}
