// Package chunker plans the fixed-size spans a file transfer moves one at a
// time. Planning is separate from I/O so the transfer loop stays a plain
// sequence of read/write steps.
package chunker

import "fmt"

// Span is one bounded slice of a file: read (or write) Length bytes starting
// at Offset. Last marks the final span of the file.
type Span struct {
	Offset int64
	Length int64
	Last   bool
}

// Plan splits size bytes into spans of at most chunkSize bytes. A zero-size
// file yields no spans; the caller skips the transfer loop entirely and the
// destination ends up empty, which is a success, not an error.
func Plan(size, chunkSize int64) []Span {
	if chunkSize <= 0 {
		panic(fmt.Sprintf("chunker: chunk size must be > 0, got %d", chunkSize))
	}
	if size <= 0 {
		return nil
	}

	count := (size + chunkSize - 1) / chunkSize // ceil div
	spans := make([]Span, 0, count)
	for offset := int64(0); offset < size; offset += chunkSize {
		length := chunkSize
		if remaining := size - offset; remaining < chunkSize {
			length = remaining
		}
		spans = append(spans, Span{
			Offset: offset,
			Length: length,
			Last:   offset+length == size,
		})
	}
	return spans
}
