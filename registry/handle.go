/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package registry

// Handle packs a 16-bit generation into the high bits and a 48-bit
// slot id into the low bits. Two Handles with the same slot but
// different generations name unrelated Records: a trampoline callback
// holding a Handle from a destroyed-and-reused slot is rejected by
// Lookup/Destroy on generation mismatch rather than silently hitting
// whatever now occupies that slot.
type Handle uint64

const (
	slotBits = 48
	slotMask = (uint64(1) << slotBits) - 1
)

func newHandle(generation uint16, slotID uint64) Handle {
	return Handle((uint64(generation) << slotBits) | (slotID & slotMask))
}

// Slot returns the low 48 bits identifying the storage slot, independent
// of generation.
func (h Handle) Slot() uint64 {
	return uint64(h) & slotMask
}

// Generation returns the high 16 bits.
func (h Handle) Generation() uint16 {
	return uint16(uint64(h) >> slotBits)
}

// IsZero reports whether h was never assigned by Allocate.
func (h Handle) IsZero() bool {
	return h == 0
}
