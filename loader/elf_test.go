package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pkg/errors"

	"github.com/sarchlab/avrsim/loader"
)

const (
	machineAVR   = 83
	machineARM32 = 40
)

type elfSegment struct {
	vaddr, paddr uint32
	data         []byte
	memSize      uint32
}

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Context("with a valid AVR ELF binary", func() {
		var elfPath string
		code := []byte{
			0x05, 0xEA, // ldi r16, 0xA5
			0xFF, 0xCF, // rjmp .-2
		}

		BeforeEach(func() {
			elfPath = filepath.Join(tempDir, "blink.elf")
			createAVRELF(elfPath, machineAVR, 0, []elfSegment{
				{vaddr: 0, paddr: 0, data: code},
			})
		})

		It("should load the code segment into flash", func() {
			img, err := loader.LoadELF(elfPath)

			Expect(err).NotTo(HaveOccurred())
			Expect(img.Entry).To(Equal(uint32(0)))
			Expect(img.Program).To(HaveLen(1))
			Expect(img.ProgramBytes()).To(Equal(code))
			Expect(img.Data).To(BeEmpty())
		})

		It("should be detected by extension", func() {
			img, err := loader.Load(elfPath, loader.FormatAuto)

			Expect(err).NotTo(HaveOccurred())
			Expect(img.ProgramBytes()).To(Equal(code))
		})

		It("should be detected by magic without an extension", func() {
			plain := filepath.Join(tempDir, "firmware")
			Expect(os.Rename(elfPath, plain)).To(Succeed())

			img, err := loader.Load(plain, loader.FormatAuto)

			Expect(err).NotTo(HaveOccurred())
			Expect(img.ProgramBytes()).To(Equal(code))
		})
	})

	Context("with initialized data", func() {
		It("should place the data segment in flash and in SRAM", func() {
			elfPath := filepath.Join(tempDir, "data.elf")
			code := []byte{0x00, 0x00, 0x08, 0x95}
			data := []byte{0x11, 0x22, 0x33}
			createAVRELF(elfPath, machineAVR, 0, []elfSegment{
				{vaddr: 0, paddr: 0, data: code},
				{vaddr: 0x800100, paddr: 4, data: data},
			})

			img, err := loader.LoadELF(elfPath)

			Expect(err).NotTo(HaveOccurred())
			Expect(img.ProgramBytes()).To(Equal(append(append([]byte{}, code...), data...)))
			Expect(img.Data).To(HaveLen(1))
			Expect(img.Data[0].Addr).To(Equal(uint32(0x100)))
			Expect(img.DataBytes()[0x100:]).To(Equal(data))
		})

		It("should skip segments without file contents", func() {
			elfPath := filepath.Join(tempDir, "bss.elf")
			createAVRELF(elfPath, machineAVR, 0, []elfSegment{
				{vaddr: 0, paddr: 0, data: []byte{0x00, 0x00}},
				{vaddr: 0x800200, paddr: 2, memSize: 64},
			})

			img, err := loader.LoadELF(elfPath)

			Expect(err).NotTo(HaveOccurred())
			Expect(img.Program).To(HaveLen(1))
			Expect(img.Data).To(BeEmpty())
		})
	})

	Context("with an invalid file", func() {
		It("should return error for non-existent file", func() {
			_, err := loader.LoadELF("/nonexistent/path/to/file.elf")

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to open"))
		})

		It("should return error for non-ELF file", func() {
			notElfPath := filepath.Join(tempDir, "not-elf.elf")
			Expect(os.WriteFile(notElfPath, []byte("not an elf file"), 0644)).To(Succeed())

			_, err := loader.Load(notElfPath, loader.FormatAuto)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("ELF"))
		})

		It("should reject ELF files for other machines", func() {
			elfPath := filepath.Join(tempDir, "arm.elf")
			createAVRELF(elfPath, machineARM32, 0, nil)

			_, err := loader.LoadELF(elfPath)

			Expect(errors.Cause(err)).To(Equal(loader.ErrNotAVR))
		})

		It("should reject 64-bit ELF files", func() {
			elfPath := filepath.Join(tempDir, "x86.elf")
			createMinimalx86ELF(elfPath)

			_, err := loader.LoadELF(elfPath)

			Expect(errors.Cause(err)).To(Equal(loader.ErrNotAVR))
		})
	})
})

// createAVRELF writes a 32-bit little-endian executable with one PT_LOAD
// program header per segment.
func createAVRELF(path string, machine uint16, entry uint32, segments []elfSegment) {
	const (
		ehSize = 52
		phSize = 32
	)

	elfHeader := make([]byte, ehSize)
	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 1 // 32-bit
	elfHeader[5] = 1 // little endian
	elfHeader[6] = 1 // version
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)       // executable
	binary.LittleEndian.PutUint16(elfHeader[18:20], machine) // machine
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)       // version
	binary.LittleEndian.PutUint32(elfHeader[24:28], entry)   // entry
	binary.LittleEndian.PutUint32(elfHeader[28:32], ehSize)  // phoff
	binary.LittleEndian.PutUint16(elfHeader[40:42], ehSize)  // ehsize
	binary.LittleEndian.PutUint16(elfHeader[42:44], phSize)  // phentsize
	binary.LittleEndian.PutUint16(elfHeader[44:46], uint16(len(segments)))

	offset := uint32(ehSize + phSize*len(segments))
	var headers, contents []byte
	for _, seg := range segments {
		memSize := seg.memSize
		if memSize == 0 {
			memSize = uint32(len(seg.data))
		}

		ph := make([]byte, phSize)
		binary.LittleEndian.PutUint32(ph[0:4], 1) // PT_LOAD
		binary.LittleEndian.PutUint32(ph[4:8], offset)
		binary.LittleEndian.PutUint32(ph[8:12], seg.vaddr)
		binary.LittleEndian.PutUint32(ph[12:16], seg.paddr)
		binary.LittleEndian.PutUint32(ph[16:20], uint32(len(seg.data)))
		binary.LittleEndian.PutUint32(ph[20:24], memSize)
		binary.LittleEndian.PutUint32(ph[24:28], 0x5) // PF_R | PF_X
		binary.LittleEndian.PutUint32(ph[28:32], 1)

		headers = append(headers, ph...)
		contents = append(contents, seg.data...)
		offset += uint32(len(seg.data))
	}

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()

	_, _ = file.Write(elfHeader)
	_, _ = file.Write(headers)
	_, _ = file.Write(contents)
}

func createMinimalx86ELF(path string) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2                                    // 64-bit
	elfHeader[5] = 1                                    // little endian
	elfHeader[6] = 1                                    // version
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)  // executable
	binary.LittleEndian.PutUint16(elfHeader[18:20], 62) // x86-64
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)  // version
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64) // phoff
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64) // ehsize
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56) // phentsize

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
}
