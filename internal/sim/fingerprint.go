package sim

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the position and velocity of every particle in arena
// order. Two worlds with the same fingerprint are in the same state, which
// makes seeded runs easy to compare.
func (w *World) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [32]byte
	for i := range w.particles {
		p := &w.particles[i]
		binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(p.Pos.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Pos.Y))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(p.Vel.X))
		binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(p.Vel.Y))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
