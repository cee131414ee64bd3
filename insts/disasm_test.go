package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/avrsim/insts"
)

var _ = Describe("Disassembly", func() {
	decoder := insts.NewDecoder()

	DescribeTable("rendering decoded words",
		func(word uint16, text string) {
			Expect(decoder.Decode(word).String()).To(Equal(text))
		},
		Entry(nil, uint16(0x0000), "nop"),
		Entry(nil, uint16(0x0101), "movw\tr0, r2"),
		Entry(nil, uint16(0x0200), "muls\tr16, r16"),
		Entry(nil, uint16(0x02FF), "muls\tr31, r31"),
		Entry(nil, uint16(0x0300), "mulsu\tr16, r16"),
		Entry(nil, uint16(0x0377), "mulsu\tr23, r23"),
		Entry(nil, uint16(0x0308), "fmul\tr16, r16"),
		Entry(nil, uint16(0x037F), "fmul\tr23, r23"),
		Entry(nil, uint16(0x0380), "fmuls\tr16, r16"),
		Entry(nil, uint16(0x0388), "fmulsu\tr16, r16"),
		Entry(nil, uint16(0x03F7), "fmuls\tr23, r23"),
		Entry(nil, uint16(0x03FF), "fmulsu\tr23, r23"),
		Entry(nil, uint16(0x0400), "cpc\tr0, r0"),
		Entry(nil, uint16(0x07FF), "cpc\tr31, r31"),
		Entry(nil, uint16(0x1400), "cp\tr0, r0"),
		Entry(nil, uint16(0x17FF), "cp\tr31, r31"),
		Entry(nil, uint16(0x0800), "sbc\tr0, r0"),
		Entry(nil, uint16(0x0BFF), "sbc\tr31, r31"),
		Entry(nil, uint16(0x1800), "sub\tr0, r0"),
		Entry(nil, uint16(0x1BFF), "sub\tr31, r31"),
		Entry(nil, uint16(0x0C00), "add\tr0, r0"),
		Entry(nil, uint16(0x0FFF), "add\tr31, r31"),
		Entry(nil, uint16(0x1C00), "adc\tr0, r0"),
		Entry(nil, uint16(0x1FFF), "adc\tr31, r31"),
		Entry(nil, uint16(0x1000), "cpse\tr0, r0"),
		Entry(nil, uint16(0x13FF), "cpse\tr31, r31"),
		Entry(nil, uint16(0x2000), "and\tr0, r0"),
		Entry(nil, uint16(0x23FF), "and\tr31, r31"),
		Entry(nil, uint16(0x2400), "eor\tr0, r0"),
		Entry(nil, uint16(0x2800), "or\tr0, r0"),
		Entry(nil, uint16(0x2BFF), "or\tr31, r31"),
		Entry(nil, uint16(0x2C00), "mov\tr0, r0"),
		Entry(nil, uint16(0x2FFF), "mov\tr31, r31"),
		Entry(nil, uint16(0x3000), "cpi\tr16, 0x00"),
		Entry(nil, uint16(0x303F), "cpi\tr19, 0x0F"),
		Entry(nil, uint16(0x3FFF), "cpi\tr31, 0xFF"),
		Entry(nil, uint16(0x4000), "sbci\tr16, 0x00"),
		Entry(nil, uint16(0x4FFF), "sbci\tr31, 0xFF"),
		Entry(nil, uint16(0x5000), "subi\tr16, 0x00"),
		Entry(nil, uint16(0x5FFF), "subi\tr31, 0xFF"),
		Entry(nil, uint16(0x6000), "ori\tr16, 0x00"),
		Entry(nil, uint16(0x6FFF), "ori\tr31, 0xFF"),
		Entry(nil, uint16(0x7000), "andi\tr16, 0x00"),
		Entry(nil, uint16(0x7FFF), "andi\tr31, 0xFF"),
		Entry(nil, uint16(0x8000), "ld\tr0, Z"),
		Entry(nil, uint16(0x8008), "ld\tr0, Y"),
		Entry(nil, uint16(0x81F0), "ld\tr31, Z"),
		Entry(nil, uint16(0x8200), "st\tZ, r0"),
		Entry(nil, uint16(0x83F8), "st\tY, r31"),
		Entry(nil, uint16(0xADF7), "ldd\tr31, Z+63"),
		Entry(nil, uint16(0xADFF), "ldd\tr31, Y+63"),
		Entry(nil, uint16(0xAFF7), "std\tZ+63, r31"),
		Entry(nil, uint16(0xAFFF), "std\tY+63, r31"),
		Entry(nil, uint16(0x9001), "ld\tr0, Z+"),
		Entry(nil, uint16(0x9009), "ld\tr0, Y+"),
		Entry(nil, uint16(0x9201), "st\tZ+, r0"),
		Entry(nil, uint16(0x9002), "ld\tr0, -Z"),
		Entry(nil, uint16(0x900A), "ld\tr0, -Y"),
		Entry(nil, uint16(0x9202), "st\t-Z, r0"),
		Entry(nil, uint16(0x900C), "ld\tr0, X"),
		Entry(nil, uint16(0x920C), "st\tX, r0"),
		Entry(nil, uint16(0x900D), "ld\tr0, X+"),
		Entry(nil, uint16(0x920D), "st\tX+, r0"),
		Entry(nil, uint16(0x900E), "ld\tr0, -X"),
		Entry(nil, uint16(0x920E), "st\t-X, r0"),
		Entry(nil, uint16(0x900F), "pop\tr0"),
		Entry(nil, uint16(0x91FF), "pop\tr31"),
		Entry(nil, uint16(0x920F), "push\tr0"),
		Entry(nil, uint16(0x93FF), "push\tr31"),
		Entry(nil, uint16(0x9400), "com\tr0"),
		Entry(nil, uint16(0x95F0), "com\tr31"),
		Entry(nil, uint16(0x9401), "neg\tr0"),
		Entry(nil, uint16(0x9402), "swap\tr0"),
		Entry(nil, uint16(0x9403), "inc\tr0"),
		Entry(nil, uint16(0x9404), ".word\t0x9404"),
		Entry(nil, uint16(0x9405), "asr\tr0"),
		Entry(nil, uint16(0x9406), "lsr\tr0"),
		Entry(nil, uint16(0x9407), "ror\tr0"),
		Entry(nil, uint16(0x95F7), "ror\tr31"),
		Entry(nil, uint16(0x940A), "dec\tr0"),
		Entry(nil, uint16(0x9408), "sec"),
		Entry(nil, uint16(0x9418), "sez"),
		Entry(nil, uint16(0x9428), "sen"),
		Entry(nil, uint16(0x9438), "sev"),
		Entry(nil, uint16(0x9448), "ses"),
		Entry(nil, uint16(0x9458), "seh"),
		Entry(nil, uint16(0x9468), "set"),
		Entry(nil, uint16(0x9478), "sei"),
		Entry(nil, uint16(0x9488), "clc"),
		Entry(nil, uint16(0x9498), "clz"),
		Entry(nil, uint16(0x94A8), "cln"),
		Entry(nil, uint16(0x94B8), "clv"),
		Entry(nil, uint16(0x94C8), "cls"),
		Entry(nil, uint16(0x94D8), "clh"),
		Entry(nil, uint16(0x94E8), "clt"),
		Entry(nil, uint16(0x94F8), "cli"),
		Entry(nil, uint16(0x9508), "ret"),
		Entry(nil, uint16(0x9518), "reti"),
		Entry(nil, uint16(0x9528), ".word\t0x9528"),
		Entry(nil, uint16(0x9588), "sleep"),
		Entry(nil, uint16(0x9598), "break"),
		Entry(nil, uint16(0x95A8), "wdr"),
		Entry(nil, uint16(0x95B8), ".word\t0x95b8"),
		Entry(nil, uint16(0x95C8), "lpm"),
		Entry(nil, uint16(0x95D8), "elpm"),
		Entry(nil, uint16(0x95E8), "spm"),
		Entry(nil, uint16(0x95F8), "spm\tz+"),
		Entry(nil, uint16(0x9409), "ijmp"),
		Entry(nil, uint16(0x9509), "icall"),
		Entry(nil, uint16(0x9419), "eijmp"),
		Entry(nil, uint16(0x9519), "eicall"),
		Entry(nil, uint16(0x9604), "adiw\tr24, 0x04"),
		Entry(nil, uint16(0x97FF), "sbiw\tr30, 0x3F"),
		Entry(nil, uint16(0x9800), "cbi\t0x00, 0"),
		Entry(nil, uint16(0x99FF), "sbic\t0x1f, 7"),
		Entry(nil, uint16(0x9AC5), "sbi\t0x18, 5"),
		Entry(nil, uint16(0x9B00), "sbis\t0x00, 0"),
		Entry(nil, uint16(0x9C00), "mul\tr0, r0"),
		Entry(nil, uint16(0x9FFF), "mul\tr31, r31"),
		Entry(nil, uint16(0x91C4), "lpm\tr28, Z"),
		Entry(nil, uint16(0x9005), "lpm\tr0, Z+"),
		Entry(nil, uint16(0x9006), "elpm\tr0, Z"),
		Entry(nil, uint16(0x9204), "xch\tZ, r0"),
		Entry(nil, uint16(0x9205), "las\tZ, r0"),
		Entry(nil, uint16(0x9206), "lac\tZ, r0"),
		Entry(nil, uint16(0x9207), "lat\tZ, r0"),
		Entry(nil, uint16(0x9000), "lds\tr0, 0x0000"),
		Entry(nil, uint16(0x940C), "jmp\t0x0"),
		Entry(nil, uint16(0xB000), "in\tr0, 0x00"),
		Entry(nil, uint16(0xB7FF), "in\tr31, 0x3f"),
		Entry(nil, uint16(0xB800), "out\t0x00, r0"),
		Entry(nil, uint16(0xBFFF), "out\t0x3f, r31"),
		Entry(nil, uint16(0xC000), "rjmp\t.+0"),
		Entry(nil, uint16(0xC7FF), "rjmp\t.+4094"),
		Entry(nil, uint16(0xC800), "rjmp\t.-4096"),
		Entry(nil, uint16(0xCFFF), "rjmp\t.-2"),
		Entry(nil, uint16(0xD000), "rcall\t.+0"),
		Entry(nil, uint16(0xD7FF), "rcall\t.+4094"),
		Entry(nil, uint16(0xD800), "rcall\t.-4096"),
		Entry(nil, uint16(0xDFFF), "rcall\t.-2"),
		Entry(nil, uint16(0xE000), "ldi\tr16, 0x00"),
		Entry(nil, uint16(0xE00F), "ldi\tr16, 0x0F"),
		Entry(nil, uint16(0xE0F0), "ldi\tr31, 0x00"),
		Entry(nil, uint16(0xEF00), "ldi\tr16, 0xF0"),
		Entry(nil, uint16(0xEFFF), "ldi\tr31, 0xFF"),
		Entry(nil, uint16(0xF000), "brcs\t.+0"),
		Entry(nil, uint16(0xF001), "breq\t.+0"),
		Entry(nil, uint16(0xF002), "brmi\t.+0"),
		Entry(nil, uint16(0xF003), "brvs\t.+0"),
		Entry(nil, uint16(0xF004), "brlt\t.+0"),
		Entry(nil, uint16(0xF005), "brhs\t.+0"),
		Entry(nil, uint16(0xF006), "brts\t.+0"),
		Entry(nil, uint16(0xF007), "brie\t.+0"),
		Entry(nil, uint16(0xF008), "brcs\t.+2"),
		Entry(nil, uint16(0xF0F0), "brcs\t.+60"),
		Entry(nil, uint16(0xF3F8), "brcs\t.-2"),
		Entry(nil, uint16(0xF400), "brcc\t.+0"),
		Entry(nil, uint16(0xF401), "brne\t.+0"),
		Entry(nil, uint16(0xF402), "brpl\t.+0"),
		Entry(nil, uint16(0xF403), "brvc\t.+0"),
		Entry(nil, uint16(0xF404), "brge\t.+0"),
		Entry(nil, uint16(0xF405), "brhc\t.+0"),
		Entry(nil, uint16(0xF406), "brtc\t.+0"),
		Entry(nil, uint16(0xF407), "brid\t.+0"),
		Entry(nil, uint16(0xF408), "brcc\t.+2"),
		Entry(nil, uint16(0xF4F0), "brcc\t.+60"),
		Entry(nil, uint16(0xF800), "bld\tr0, 0"),
		Entry(nil, uint16(0xFA17), "bst\tr1, 7"),
		Entry(nil, uint16(0xFC03), "sbrc\tr0, 3"),
		Entry(nil, uint16(0xFFF7), "sbrs\tr31, 7"),
		Entry(nil, uint16(0xF808), ".word\t0xf808"),
		Entry(nil, uint16(0xFFFF), ".word\t0xffff"),
	)

	Describe("DecodePair", func() {
		It("should render the address of LDS", func() {
			inst := decoder.DecodePair(0x9180, 0x0060)
			Expect(inst.String()).To(Equal("lds\tr24, 0x0060"))
		})

		It("should render the address of STS", func() {
			inst := decoder.DecodePair(0x9380, 0x0100)
			Expect(inst.String()).To(Equal("sts\t0x0100, r24"))
		})

		It("should render the byte address of CALL", func() {
			inst := decoder.DecodePair(0x940E, 0x0034)
			Expect(inst.String()).To(Equal("call\t0x68"))
		})

		It("should leave single-word instructions alone", func() {
			inst := decoder.DecodePair(0x0E01, 0xFFFF)
			Expect(inst.String()).To(Equal("add\tr0, r17"))
		})
	})
})
