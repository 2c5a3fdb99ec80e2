package forecast

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// Rand uniform source in [0,1)
type Rand interface {
	Float64() float64
}

// RandFactory hands out a fresh Rand per forecast request
type RandFactory interface {
	For(symbol string, price float64) Rand
}

// SeededRandFactory derives a stream from Seed, symbol and price.
// Seed 0 mixes in the wall clock, so results differ per call.
type SeededRandFactory struct {
	Seed int64
}

// For implements RandFactory
func (f SeededRandFactory) For(symbol string, price float64) Rand {
	seed := f.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(price))
	h.Write(buf[:])

	return rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
}
