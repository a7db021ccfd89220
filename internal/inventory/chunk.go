package inventory

import "fmt"

// SplitChunks partitions a dataset into order-preserving chunks of at most
// size entries; the last chunk may be shorter. Concatenating the chunks in
// order reproduces the dataset exactly. A dataset that fits in one chunk is
// returned as a single chunk, which is the normal path for the two smaller
// inventory types.
func SplitChunks(ds Dataset, size int) []Chunk {
	if size <= 0 || len(ds) == 0 {
		return nil
	}

	n := (len(ds) + size - 1) / size
	chunks := make([]Chunk, 0, n)
	for i := 0; i < len(ds); i += size {
		end := i + size
		if end > len(ds) {
			end = len(ds)
		}
		chunks = append(chunks, Chunk{
			Label:   fmt.Sprintf("chunk %d/%d", len(chunks)+1, n),
			Entries: ds[i:end],
		})
	}
	return chunks
}
