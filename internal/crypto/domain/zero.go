package domain

// Zero overwrites b with zeros. Safe on nil.
func Zero(b []byte) {
	clear(b)
}

// ZeroAll zeroes every key in keys.
func ZeroAll(keys ...[]byte) {
	for _, key := range keys {
		Zero(key)
	}
}
