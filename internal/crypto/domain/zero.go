package domain

// Zero overwrites b with zeros to clear key material from memory.
func Zero(b []byte) {
	clear(b)
}
