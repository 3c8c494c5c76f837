package ecproto

// Sum8 computes the 8-bit additive checksum of data, the same sum the
// controller reports for a flash range via the FlashChecksum command.
// Overflow wraps; the result is the low byte of the byte sum.
func Sum8(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
