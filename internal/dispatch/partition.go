package dispatch

import "fmt"

// Chunk is a half-open index range [Begin, End).
type Chunk struct {
	Begin, End int
}

func (c Chunk) Len() int { return c.End - c.Begin }

// Partition splits [0, count) into at most parts contiguous chunks.
func Partition(count, parts int) ([]Chunk, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: count %d", ErrInvalidRange, count)
	}
	return PartitionRange(0, count, parts)
}

// PartitionRange splits [begin, end) into at most parts contiguous chunks in
// ascending order. The first (end-begin)%parts chunks hold one extra index;
// empty chunks are never produced.
func PartitionRange(begin, end, parts int) ([]Chunk, error) {
	if begin < 0 || begin > end {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, begin, end)
	}
	n := end - begin
	if n == 0 {
		return nil, ErrEmptyRange
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	base, rem := n/parts, n%parts
	chunks := make([]Chunk, parts)
	start := begin
	for i := range chunks {
		size := base
		if i < rem {
			size++
		}
		chunks[i] = Chunk{Begin: start, End: start + size}
		start += size
	}
	return chunks, nil
}
