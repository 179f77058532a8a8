package knowledge

import "strings"

// Chunker splits prose into overlapping windows. Paragraph boundaries
// are preferred; a paragraph larger than the chunk size is split
// mid-paragraph.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker creates a chunker. chunkSize and overlap are in characters.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 8
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits content into pieces of roughly chunkSize characters.
func (c *Chunker) Chunk(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	if len(content) <= c.chunkSize {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, text)
		}
		current.Reset()
		// Seed the next chunk with the tail of this one.
		if len(text) > c.overlap {
			current.WriteString(text[len(text)-c.overlap:])
			current.WriteString("\n")
		}
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		for len(paragraph) > c.chunkSize {
			cut := strings.LastIndexByte(paragraph[:c.chunkSize], ' ')
			if cut <= 0 {
				cut = c.chunkSize
			}
			current.WriteString(paragraph[:cut])
			flush()
			paragraph = strings.TrimSpace(paragraph[cut:])
		}

		if current.Len()+len(paragraph) > c.chunkSize {
			flush()
		}
		current.WriteString(paragraph)
		current.WriteString("\n\n")
	}

	if text := strings.TrimSpace(current.String()); text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
