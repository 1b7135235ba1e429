// Package chunker segments normalized page text into narratable chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/voxreader/voxreader/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	MaxChunkChars int // Maximum chunk length in characters.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkChars: 1000,
	}
}

// A paragraph boundary is a blank line: a single newline is a soft wrap
// inside a paragraph and is collapsed away later.
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Chunk splits normalized page text into chunks of at most cfg.MaxChunkChars
// characters, assigning consecutive ids starting at startID and tagging every
// chunk with pageNumber. Paragraphs that fit the budget are emitted whole;
// oversized paragraphs are packed sentence by sentence. A single sentence
// longer than the budget is emitted as one oversized chunk rather than being
// broken mid-sentence.
func Chunk(text string, pageNumber, startID int, cfg Config) []document.TextChunk {
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = 1000
	}

	var chunks []document.TextChunk
	emit := func(s string) {
		chunks = append(chunks, document.TextChunk{
			ID:         startID + len(chunks),
			Text:       s,
			PageNumber: pageNumber,
		})
	}

	for _, raw := range paragraphBreak.Split(text, -1) {
		para := collapseWhitespace(raw)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= cfg.MaxChunkChars {
			emit(para)
			continue
		}

		// Greedy sentence packing: flush whenever the next sentence
		// would push the buffer past the budget.
		var buf string
		for _, sent := range splitSentences(para) {
			if buf == "" {
				buf = sent
				continue
			}
			if utf8.RuneCountInString(buf)+1+utf8.RuneCountInString(sent) > cfg.MaxChunkChars {
				emit(buf)
				buf = sent
				continue
			}
			buf += " " + sent
		}
		if buf != "" {
			emit(buf)
		}
	}

	return chunks
}

// collapseWhitespace reduces every whitespace run to a single space and trims.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitSentences splits on `.`, `!` or `?` followed by whitespace or
// end-of-string. Text without any such boundary comes back as one sentence.
func splitSentences(s string) []string {
	var sentences []string
	rs := []rune(s)
	start := 0
	for i, r := range rs {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(rs) && !unicode.IsSpace(rs[i+1]) {
			continue
		}
		sent := strings.TrimSpace(string(rs[start : i+1]))
		if sent != "" {
			sentences = append(sentences, sent)
		}
		start = i + 1
	}
	if start < len(rs) {
		if tail := strings.TrimSpace(string(rs[start:])); tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}
