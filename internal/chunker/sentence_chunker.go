package chunker

import (
	"regexp"
	"strings"
)

// Strategy identifies the splitting rule so stored records can be traced
// back to the chunking that produced them.
const Strategy = "sentence_split_simple"

// boundary marks a sentence break: terminal punctuation followed by
// whitespace. Abbreviations and decimal numbers are not special-cased;
// this is a deliberate approximation, not full sentence detection.
var boundary = regexp.MustCompile(`[.!?]\s+`)

// SentenceChunker groups sentence-like units into fixed-size chunks
// with no overlap.
type SentenceChunker struct {
	sentencesPerChunk int
}

func New(sentencesPerChunk int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 3
	}
	return &SentenceChunker{sentencesPerChunk: sentencesPerChunk}
}

func (c *SentenceChunker) Strategy() string { return Strategy }

// Chunk splits text into sentences and joins consecutive groups of
// sentencesPerChunk with single spaces. A trailing partial group is still
// emitted. Empty or whitespace-only input yields no chunks.
func (c *SentenceChunker) Chunk(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}
	var chunks []string
	for i := 0; i < len(sentences); i += c.sentencesPerChunk {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[i:end], " "))
	}
	return chunks
}

// splitSentences breaks text at every boundary match, keeping the
// punctuation with the preceding sentence and discarding fragments that
// trim to nothing.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range boundary.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
