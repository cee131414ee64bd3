package variant_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/avrsim/variant"
)

var _ = Describe("Variant", func() {
	Describe("Built-in variants", func() {
		It("should size the reference part at 512 B data and 8 KiB flash", func() {
			v, err := variant.Lookup(variant.Default)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.DataSize).To(Equal(512))
			Expect(v.ProgramSize).To(Equal(8 * 1024))
		})

		It("should all be valid", func() {
			for _, v := range variant.Builtin() {
				Expect(v.Validate()).To(Succeed(), v.Name)
			}
		})

		It("should fail for an unknown name", func() {
			_, err := variant.Lookup("pic16f84")
			Expect(errors.Is(err, variant.ErrUnknownVariant)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("pic16f84"))
		})

		It("should list names in sorted order", func() {
			Expect(variant.NewRegistry().Names()).To(Equal(
				[]string{"atmega328p", "atmega8", "attiny13", "attiny85"}))
		})
	})

	DescribeTable("IsPowerOfTwo",
		func(n int, want bool) {
			Expect(variant.IsPowerOfTwo(n)).To(Equal(want))
		},
		Entry("zero", 0, false),
		Entry("negative", -4, false),
		Entry("one", 1, true),
		Entry("512", 512, true),
		Entry("500", 500, false),
		Entry("128 KiB", 128*1024, true),
	)

	Describe("Validate", func() {
		It("should reject sizes that are not powers of two", func() {
			v := variant.Variant{Name: "odd", DataSize: 500, ProgramSize: 8192}
			Expect(errors.Cause(v.Validate())).To(Equal(variant.ErrInvalidVariant))
		})

		It("should reject flash beyond the 16-bit program counter", func() {
			v := variant.Variant{Name: "mega", DataSize: 8192, ProgramSize: 256 * 1024}
			Expect(v.Validate()).To(MatchError(ContainSubstring("program_size")))
		})

		It("should reject an empty name", func() {
			v := variant.Variant{DataSize: 256, ProgramSize: 1024}
			Expect(v.Validate()).To(HaveOccurred())
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "variant-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should merge loaded variants over the built-ins", func() {
			path := filepath.Join(tempDir, "variants.json")
			config := `[
				{"name": "attiny45", "data_size": 512, "program_size": 4096},
				{"name": "attiny13", "data_size": 128, "program_size": 1024}
			]`
			Expect(os.WriteFile(path, []byte(config), 0644)).To(Succeed())

			registry, err := variant.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())

			v, err := registry.Lookup("attiny45")
			Expect(err).NotTo(HaveOccurred())
			Expect(v.ProgramSize).To(Equal(4096))

			v, err = registry.Lookup("attiny13")
			Expect(err).NotTo(HaveOccurred())
			Expect(v.DataSize).To(Equal(128))

			_, err = registry.Lookup("atmega328p")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should save and load a registry", func() {
			original := variant.NewRegistry()
			Expect(original.Add(variant.Variant{
				Name: "custom", DataSize: 1024, ProgramSize: 2048,
			})).To(Succeed())

			path := filepath.Join(tempDir, "saved.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := variant.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Variants()).To(Equal(original.Variants()))
		})

		It("should reject invalid variants in the file", func() {
			path := filepath.Join(tempDir, "bad.json")
			config := `[{"name": "bad", "data_size": 300, "program_size": 1024}]`
			Expect(os.WriteFile(path, []byte(config), 0644)).To(Succeed())

			_, err := variant.LoadConfig(path)
			Expect(errors.Is(err, variant.ErrInvalidVariant)).To(BeTrue())
		})

		It("should return error for non-existent file", func() {
			_, err := variant.LoadConfig("/nonexistent/path/variants.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			Expect(os.WriteFile(path, []byte("not valid json"), 0644)).To(Succeed())

			_, err := variant.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
