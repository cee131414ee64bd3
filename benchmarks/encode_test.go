package benchmarks_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/avrsim/benchmarks"
	"github.com/sarchlab/avrsim/insts"
)

var _ = Describe("Encoders", func() {
	decoder := insts.NewDecoder()

	DescribeTable("single-word encodings",
		func(word, want uint16, text string) {
			Expect(word).To(Equal(want))
			Expect(decoder.Decode(word).String()).To(Equal(text))
		},
		Entry("ldi", benchmarks.EncodeLDI(25, 0x01), uint16(0xE091), "ldi\tr25, 0x01"),
		Entry("cpi", benchmarks.EncodeCPI(16, 0x05), uint16(0x3005), "cpi\tr16, 0x05"),
		Entry("eor", benchmarks.EncodeEOR(24, 25), uint16(0x2789), "eor\tr24, r25"),
		Entry("mul", benchmarks.EncodeMUL(16, 17), uint16(0x9F01), "mul\tr16, r17"),
		Entry("in", benchmarks.EncodeIN(24, 0x18), uint16(0xB388), "in\tr24, 0x18"),
		Entry("out", benchmarks.EncodeOUT(0x18, 24), uint16(0xBB88), "out\t0x18, r24"),
		Entry("sbiw", benchmarks.EncodeSBIW(30, 1), uint16(0x9731), "sbiw\tr30, 0x01"),
		Entry("adiw 63", benchmarks.EncodeADIW(24, 63), uint16(0x96CF), "adiw\tr24, 0x3F"),
		Entry("brne back", benchmarks.EncodeBRNE(-2), uint16(0xF7F1), "brne\t.-4"),
		Entry("brcs forward", benchmarks.EncodeBRCS(10), uint16(0xF050), "brcs\t.+20"),
		Entry("rjmp back", benchmarks.EncodeRJMP(-10), uint16(0xCFF6), "rjmp\t.-20"),
		Entry("rcall forward", benchmarks.EncodeRCALL(32), uint16(0xD020), "rcall\t.+64"),
		Entry("ld X+", benchmarks.EncodeLDPostInc(16, insts.PointerX), uint16(0x910D), "ld\tr16, X+"),
		Entry("st X+", benchmarks.EncodeSTPostInc(insts.PointerX, 16), uint16(0x930D), "st\tX+, r16"),
		Entry("ldd", benchmarks.EncodeLDD(24, insts.PointerY, 2), uint16(0x818A), "ldd\tr24, Y+2"),
		Entry("std", benchmarks.EncodeSTD(insts.PointerY, 42, 0), uint16(0xA60A), "std\tY+42, r0"),
		Entry("push", benchmarks.EncodePUSH(16), uint16(0x930F), "push\tr16"),
		Entry("pop", benchmarks.EncodePOP(17), uint16(0x911F), "pop\tr17"),
		Entry("lpm Z+", benchmarks.EncodeLPM(16, true), uint16(0x9105), "lpm\tr16, Z+"),
		Entry("sbi", benchmarks.EncodeSBI(0x18, 0), uint16(0x9AC0), "sbi\t0x18, 0"),
		Entry("cbi", benchmarks.EncodeCBI(0x18, 1), uint16(0x98C1), "cbi\t0x18, 1"),
		Entry("sbrc", benchmarks.EncodeSBRC(16, 0), uint16(0xFD00), "sbrc\tr16, 0"),
		Entry("ret", benchmarks.EncodeRET(), uint16(0x9508), "ret"),
		Entry("nop", benchmarks.EncodeNOP(), uint16(0x0000), "nop"),
	)

	It("should encode the halt loop as rjmp .-2", func() {
		Expect(benchmarks.EncodeRJMP(-1)).To(Equal(benchmarks.HaltWord))
	})

	It("should encode two-word instructions", func() {
		first, second := benchmarks.EncodeLDS(16, 0x0060)
		Expect(decoder.DecodePair(first, second).String()).To(Equal("lds\tr16, 0x0060"))

		first, second = benchmarks.EncodeJMP(0x20)
		Expect([]uint16{first, second}).To(Equal([]uint16{0x940C, 0x0010}))

		first, second = benchmarks.EncodeCALL(0x20)
		Expect(decoder.DecodePair(first, second).String()).To(Equal("call\t0x20"))
	})

	It("should lay words out little-endian", func() {
		Expect(benchmarks.BuildProgram(0xE091, 0xCFFF)).To(Equal([]byte{0x91, 0xE0, 0xFF, 0xCF}))
	})
})
