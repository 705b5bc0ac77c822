package audio

// Buffer accumulates inbound audio and releases fixed-size chunks in arrival order.
// After every Append the buffer holds fewer than chunkSize bytes.
// A Buffer is owned by a single goroutine and is not safe for concurrent use.
type Buffer struct {
	chunkSize int
	pending   []byte
}

// NewBuffer returns a buffer releasing chunks of chunkSize bytes.
// A non-positive size falls back to DefaultChunkSize.
func NewBuffer(chunkSize int) *Buffer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Buffer{
		chunkSize: chunkSize,
		pending:   make([]byte, 0, chunkSize*2),
	}
}

// Append adds p to the accumulator and returns every full chunk now available,
// oldest first. Returned chunks never alias p or the buffer's storage.
func (b *Buffer) Append(p []byte) [][]byte {
	b.pending = append(b.pending, p...)
	if len(b.pending) < b.chunkSize {
		return nil
	}

	chunks := make([][]byte, 0, len(b.pending)/b.chunkSize)
	for len(b.pending) >= b.chunkSize {
		chunk := make([]byte, b.chunkSize)
		copy(chunk, b.pending[:b.chunkSize])
		chunks = append(chunks, chunk)
		b.pending = b.pending[b.chunkSize:]
	}

	// compact so the backing array does not grow without bound
	rest := make([]byte, len(b.pending), b.chunkSize*2)
	copy(rest, b.pending)
	b.pending = rest

	return chunks
}

// Flush returns the buffered remainder, possibly short or empty, and resets the buffer.
func (b *Buffer) Flush() []byte {
	if len(b.pending) == 0 {
		return nil
	}
	rest := make([]byte, len(b.pending))
	copy(rest, b.pending)
	b.pending = b.pending[:0]
	return rest
}

// Len reports the number of unflushed bytes.
func (b *Buffer) Len() int {
	return len(b.pending)
}

// ChunkSize reports the chunk size in bytes.
func (b *Buffer) ChunkSize() int {
	return b.chunkSize
}
