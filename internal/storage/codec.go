package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/annel0/terrain-noise/internal/noise"
	"github.com/klauspost/compress/zstd"
)

// Формат записи тайла:
//
//	[4]  magic "TILE"
//	[1]  версия
//	[1]  флаги (bit0 - payload сжат zstd)
//	[4]  сторона тайла, uint32 LE
//	[4]  множитель нормировки, float32 LE
//	[..] payload: side*side float32 LE, построчно
const (
	codecMagic      = "TILE"
	codecVersion    = 1
	codecHeaderSize = 14

	flagCompressed = 1 << 0
)

var errMalformedTile = errors.New("malformed tile record")

// Codec сериализует тайлы, опционально сжимая их zstd.
// Codec безопасен для конкурентного использования.
type Codec struct {
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// NewCodec создаёт кодек. compress включает сжатие при записи;
// чтение понимает оба варианта.
func NewCodec(compress bool) (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &Codec{compress: compress, encoder: enc, decoder: dec}, nil
}

// Close освобождает ресурсы zstd.
func (c *Codec) Close() {
	c.encoder.Close()
	c.decoder.Close()
}

// Encode сериализует тайл.
func (c *Codec) Encode(st *StoredTile) ([]byte, error) {
	side := st.Tile.Side()
	raw := make([]byte, 0, side*side*4)
	for _, row := range st.Tile {
		if len(row) != side {
			return nil, fmt.Errorf("тайл не квадратный: строка %d вместо %d", len(row), side)
		}
		for _, v := range row {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
		}
	}

	var flags byte
	payload := raw
	if c.compress {
		flags |= flagCompressed
		payload = c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
	}

	out := make([]byte, codecHeaderSize, codecHeaderSize+len(payload))
	copy(out, codecMagic)
	out[4] = codecVersion
	out[5] = flags
	binary.LittleEndian.PutUint32(out[6:], uint32(side))
	binary.LittleEndian.PutUint32(out[10:], math.Float32bits(st.Scale))
	return append(out, payload...), nil
}

// Decode восстанавливает тайл из записи.
func (c *Codec) Decode(data []byte) (*StoredTile, error) {
	if len(data) < codecHeaderSize || string(data[:4]) != codecMagic {
		return nil, errMalformedTile
	}
	if data[4] != codecVersion {
		return nil, fmt.Errorf("%w: версия %d", errMalformedTile, data[4])
	}
	flags := data[5]
	side := int(binary.LittleEndian.Uint32(data[6:]))
	scale := math.Float32frombits(binary.LittleEndian.Uint32(data[10:]))

	payload := data[codecHeaderSize:]
	if flags&flagCompressed != 0 {
		raw, err := c.decoder.DecodeAll(payload, make([]byte, 0, side*side*4))
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		payload = raw
	}
	if len(payload) != side*side*4 {
		return nil, fmt.Errorf("%w: %d байт для стороны %d", errMalformedTile, len(payload), side)
	}

	tile := noise.NewTile(side)
	off := 0
	for i := range tile {
		for j := range tile[i] {
			tile[i][j] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
			off += 4
		}
	}
	return &StoredTile{Scale: scale, Tile: tile}, nil
}
