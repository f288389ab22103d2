package noise

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Hash32 хеширует узел решётки (x, y) в 32-битное значение.
// Ключ упаковывается в 64 бита как x<<32 | y (little-endian, как на x86)
// и прогоняется через MurmurHash3 x86_32 с сидом seed.
// Соседние узлы дают некоррелированные значения за счёт лавинного эффекта MurmurHash3.
func Hash32(x, y, seed uint32) uint32 {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(x)<<32|uint64(y))
	return murmur3.Sum32WithSeed(key[:], seed)
}

// hashAt приводит знаковые координаты решётки к uint32 (с переполнением) и хеширует их.
func hashAt(x, y int, seed uint32) uint32 {
	return Hash32(uint32(x), uint32(y), seed)
}
