package services

import (
	"strings"
	"unicode"

	"github.com/streamreco/recommend-engine/internal/models"
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {}, "that": {},
	"are": {}, "was": {}, "were": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"not": {}, "but": {}, "you": {}, "your": {}, "all": {}, "can": {}, "new": {},
}

const punctuationClass = ",|#@~'\"\\/_-[]+*{};:`=【】().’?"

// TaggingService (C1) turns a video's title and tag list into a
// normalized, deduplicated set of tokens.
type TaggingService struct{}

func NewTaggingService() *TaggingService {
	return &TaggingService{}
}

// Extract concatenates the title and tag list, lowercases, strips emoji
// and punctuation, splits on whitespace, and drops tokens that are too
// short, too long, or stop words. Returns an empty set (never an error)
// when given an empty document.
func (s *TaggingService) Extract(doc models.VideoDocument) map[string]struct{} {
	fields := make([]string, 0, len(doc.Tag)+1)
	fields = append(fields, doc.Title)
	fields = append(fields, doc.Tag...)

	text := strings.ToLower(strings.Join(fields, " "))
	text = stripEmoji(text)
	text = replacePunctuation(text)

	out := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		if !isValidToken(tok) {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

// ExtractSlice is Extract with the result flattened to a slice, the shape
// the content index client's tag-match query takes.
func (s *TaggingService) ExtractSlice(doc models.VideoDocument) []string {
	set := s.Extract(doc)
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	return out
}

func isValidToken(tok string) bool {
	if len(tok) <= 1 || len(tok) > 30 {
		return false
	}
	if _, stop := stopWords[tok]; stop {
		return false
	}
	for _, r := range tok {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func replacePunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuationClass, r) {
			return ' '
		}
		return r
	}, s)
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x1F300 && r <= 0x1F64F:
			return -1
		case r >= 0x1F680 && r <= 0x1F6FF:
			return -1
		case r >= 0x2600 && r <= 0x2B55:
			return -1
		default:
			return r
		}
	}, s)
}
