package heap

// memoryModule builds a WASM module that only exports a memory of exactly
// pages pages as "memory".
func memoryModule(pages uint32) []byte {
	limits := []byte{0x01} // has maximum
	limits = appendULEB(limits, pages)
	limits = appendULEB(limits, pages)

	mod := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}

	// memory section: one memory with min == max
	memSec := append([]byte{0x01}, limits...)
	mod = append(mod, 0x05)
	mod = appendULEB(mod, uint32(len(memSec)))
	mod = append(mod, memSec...)

	// export section: "memory" -> memory 0
	expSec := []byte{0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00}
	mod = append(mod, 0x07)
	mod = appendULEB(mod, uint32(len(expSec)))
	mod = append(mod, expSec...)

	return mod
}

func appendULEB(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}
