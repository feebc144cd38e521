package knowledge

import "strings"

const (
	// DefaultMaxChars is the soft cap on chunk length. Chunks are broken
	// earlier on a paragraph or sentence boundary when one exists past the
	// window midpoint.
	DefaultMaxChars = 1500

	// DefaultOverlap is how many characters consecutive chunks share.
	DefaultOverlap = 200
)

// ChunkText splits text into overlapping chunks, preferring paragraph
// breaks and then sentence endings over hard cuts. The final chunk
// carries no overlap.
func ChunkText(text string, maxChars, overlap int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var chunks []string
	start := 0

	for start < len(trimmed) {
		end := start + maxChars
		if end > len(trimmed) {
			end = len(trimmed)
		}
		if end < len(trimmed) {
			slice := trimmed[start:end]
			breakAt := strings.LastIndex(slice, "\n\n")
			for _, sep := range []string{". ", ".\n", "? ", "! "} {
				if i := strings.LastIndex(slice, sep); i > breakAt {
					breakAt = i
				}
			}
			if breakAt > maxChars/2 {
				end = start + breakAt + 1
			}
		}

		chunk := strings.TrimSpace(trimmed[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end < len(trimmed) {
			start = end - overlap
		} else {
			start = end
		}
		if start <= 0 || start >= len(trimmed) {
			break
		}
	}

	return chunks
}
