// Package assistant wraps the generative AI capabilities the journal needs:
// summarising transcripts, titling and tagging records, illustrating them,
// transcribing spoken answers, drafting follow-up questions and reading
// questions aloud.
package assistant

import (
	"context"
	"io"
	"strings"
)

// Writer produces text from text.
type Writer interface {
	Summarize(ctx context.Context, text string) (string, error)
	GenerateTitle(ctx context.Context, text string) (string, error)
	ExtractKeywords(ctx context.Context, text string) ([]string, error)
	FollowUpQuestion(ctx context.Context, history []QA) (string, error)
}

// Illustrator renders an image for a prompt.
type Illustrator interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// Transcriber converts recorded speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Speaker converts text to speech.
type Speaker interface {
	Speak(ctx context.Context, text string) (*Audio, error)
}

// QA is one question and the answer given to it.
type QA struct {
	Question string
	Answer   string
}

// Image is a generated picture.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Audio is synthesized speech.
type Audio struct {
	Data        []byte
	ContentType string
}

// Transcript renders question/answer pairs as "Q: ...\nA: ..." blocks joined
// by newlines, in the given order.
func Transcript(pairs []QA) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Q: ")
		b.WriteString(p.Question)
		b.WriteString("\nA: ")
		b.WriteString(p.Answer)
	}
	return b.String()
}

// ParseKeywords splits a comma-separated model reply into keywords. Entries
// are trimmed, empty ones dropped, order kept and duplicates left alone. At
// most max keywords are returned when max > 0.
func ParseKeywords(reply string, max int) []string {
	keywords := []string{}
	for _, part := range strings.Split(reply, ",") {
		kw := strings.TrimSpace(part)
		if kw == "" {
			continue
		}
		keywords = append(keywords, kw)
		if max > 0 && len(keywords) == max {
			break
		}
	}
	return keywords
}

// cleanLine trims whitespace and a pair of wrapping quotes from a one-line
// model reply such as a title.
func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
