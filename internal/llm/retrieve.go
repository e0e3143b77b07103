package llm

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

// Chunking and retrieval parameters for long referral packages. Documents
// above maxContextChars are not truncated; instead the context is assembled
// from the document head plus the chunks most relevant to each field.
const (
	chunkSize      = 1000
	chunkOverlap   = 200
	chunksPerField = 3
	headChars      = 5000
)

// chunk is one overlapping slice of the document text.
type chunk struct {
	id    int
	text  string
	words map[string]struct{}
}

// chunkText splits text into overlapping chunks of roughly chunkSize runes,
// preferring paragraph breaks, then sentence breaks, past the half-chunk mark.
func chunkText(text string) []chunk {
	runes := []rune(text)
	var chunks []chunk
	id := 0

	for start := 0; start < len(runes); {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		} else {
			window := string(runes[start:end])
			half := chunkSize / 2
			if brk := strings.LastIndex(window, "\n\n"); brk > half {
				end = start + len([]rune(window[:brk+2]))
			} else {
				brk = -1
				for _, sep := range []string{". ", "! ", "? "} {
					if i := strings.LastIndex(window, sep); i > brk {
						brk = i
					}
				}
				if brk > half {
					end = start + len([]rune(window[:brk+2]))
				}
			}
		}

		if t := strings.TrimSpace(string(runes[start:end])); t != "" {
			chunks = append(chunks, chunk{id: id, text: t, words: wordSet(t)})
			id++
		}

		if end >= len(runes) {
			break
		}
		start = end - chunkOverlap
	}
	return chunks
}

func wordSet(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = struct{}{}
	}
	return words
}

// retrieve returns the chunks sharing the most words with the query, best
// first, at most topK. Ties break on chunk order so retrieval is
// deterministic.
func retrieve(chunks []chunk, query string, topK int) []chunk {
	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return nil
	}

	type scored struct {
		score float64
		c     chunk
	}
	var matches []scored
	for _, c := range chunks {
		overlap := 0
		for w := range queryWords {
			if _, ok := c.words[w]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			matches = append(matches, scored{float64(overlap) / float64(len(queryWords)), c})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].c.id < matches[j].c.id
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	out := make([]chunk, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.c)
	}
	return out
}

// fieldQuery builds the retrieval query for one field from its name and
// description.
func fieldQuery(fd schema.FieldDescriptor) string {
	q := strings.ReplaceAll(fd.Name, "_", " ")
	if fd.Description != "" {
		q += " " + fd.Description
	}
	return q
}

// buildContext returns the document text for the prompt. Short documents pass
// through unchanged. Long ones become the document head followed by the
// chunks relevant to each field of the vocabulary, deduplicated, in field
// order, separated by "---" markers.
func buildContext(docText string, tmpl schema.Template) string {
	if len(docText) <= maxContextChars {
		return docText
	}

	chunks := chunkText(docText)

	parts := []string{truncateRunes(docText, headChars)}
	seen := make(map[int]struct{})
	for _, fd := range tmpl.Fields {
		for _, c := range retrieve(chunks, fieldQuery(fd), chunksPerField) {
			if _, ok := seen[c.id]; ok {
				continue
			}
			seen[c.id] = struct{}{}
			parts = append(parts, c.text)
		}
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// truncateRunes cuts s to at most n runes, never splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
