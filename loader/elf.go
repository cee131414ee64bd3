package loader

import (
	"debug/elf"
	"io"

	"github.com/pkg/errors"
)

// DataSpaceOffset is where avr-ld places the data address space inside
// the ELF address space. Segments at or above it belong to SRAM.
const DataSpaceOffset = 0x800000

// ErrNotAVR is returned for an ELF file built for another machine.
var ErrNotAVR = errors.New("not an AVR ELF file")

// LoadELF parses an AVR ELF executable. Loadable segments go to flash at
// their physical (load) address. Segments whose virtual address lies in
// the data space are also returned as initial SRAM contents, since no
// startup code is needed to copy them.
func LoadELF(path string) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ELF file %s", path)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, errors.Wrapf(ErrNotAVR, "%s: class %v", path, f.Class)
	}
	if f.Machine != elf.EM_AVR {
		return nil, errors.Wrapf(ErrNotAVR, "%s: machine type %v", path, f.Machine)
	}

	img := &Image{Entry: uint32(f.Entry)}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD || phdr.Filesz == 0 {
			continue
		}

		data := make([]byte, phdr.Filesz)
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "failed to read segment at 0x%x", phdr.Vaddr)
		}
		if uint64(n) != phdr.Filesz {
			return nil, errors.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Vaddr, n, phdr.Filesz)
		}

		if phdr.Paddr < DataSpaceOffset {
			img.Program = append(img.Program, Segment{Addr: uint32(phdr.Paddr), Data: data})
		}
		if phdr.Vaddr >= DataSpaceOffset {
			img.Data = append(img.Data, Segment{Addr: uint32(phdr.Vaddr - DataSpaceOffset), Data: data})
		}
	}

	return img, nil
}
