package capi

// Variable-length strings cross the boundary in two phases. With a nil
// output the caller learns the size it must allocate, terminator included.
// With a buffer the content is copied, truncated to fit, and always
// NUL-terminated.

// requiredSize is the buffer size needed to hold s and its terminator.
func requiredSize(s string) uint {
	return uint(len(s)) + 1
}

// copyTerminated copies as much of s as fits into dst, leaving room for the
// terminator, and returns the number of content bytes written.
// dst must not be empty.
func copyTerminated(dst []byte, s string) int {
	n := copy(dst[:len(dst)-1], s)
	dst[n] = 0
	return n
}

// writeString implements the two-phase contract for one string.
// output is nil for a NULL buffer; otherwise its length is *outputSize.
func writeString(s string, output []byte, outputSize *uint) error {
	if outputSize == nil {
		return statusErrorf(StatusInvalidCParam, "output_size is null")
	}
	if output == nil {
		*outputSize = requiredSize(s)
		return nil
	}
	if len(output) == 0 {
		return statusErrorf(StatusInvalidCParam, "output buffer of size 0 cannot hold the terminator")
	}
	copyTerminated(output, s)
	return nil
}
