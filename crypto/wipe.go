package crypto

// SecureWipe overwrites b with zeroes in place, for scrubbing secret key
// material from memory. Nothing in this module calls it; the wallet has no
// lock operation that wipes its keys.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Wipe zeroes the secret key in place.
func (sk *SecretKey) Wipe() {
	SecureWipe(sk[:])
}
