package debug

type fakeMemory map[uint16]byte

func (m fakeMemory) Read(address uint16) byte { return m[address] }

func (m fakeMemory) writeSprite(index int, y, x, tile, attrs uint8) {
	at := oamEntry(index)
	for i, v := range []uint8{y, x, tile, attrs} {
		m[at+uint16(i)] = v
	}
}
