package nudge

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Analysis is the outcome of checking one draft note against the ruleset.
type Analysis struct {
	Nudges             []Nudge `json:"nudges"`
	Summary            string  `json:"summary"`
	DocumentationScore float64 `json:"documentation_score"`
}

// Service evaluates draft notes against the documentation ruleset.
type Service struct {
	rules  []Rule
	logger *logrus.Logger
}

// NewService creates a service over the given ruleset. Pass DefaultRules()
// for the built-in checks.
func NewService(rules []Rule, logger *logrus.Logger) *Service {
	return &Service{rules: rules, logger: logger}
}

// AnalyzeDraft checks the note against every rule and returns the triggered
// nudges with a documentation quality score. The score is the fraction of
// rules the note satisfies, so a note that triggers nothing scores 1.0.
func (s *Service) AnalyzeDraft(note string) *Analysis {
	text := strings.ToLower(note)

	var nudges []Nudge
	for _, rule := range s.rules {
		if !anyKeyword(text, rule.Keywords) {
			continue
		}
		if anyKeyword(text, rule.NegationKeywords) {
			continue
		}
		nudges = append(nudges, rule.Nudge)
	}

	score := 1.0
	if len(s.rules) > 0 {
		score = 1.0 - float64(len(nudges))/float64(len(s.rules))
	}

	s.logger.WithFields(logrus.Fields{
		"nudges": len(nudges),
		"score":  score,
	}).Debug("draft note analyzed")

	return &Analysis{
		Nudges:             nudges,
		Summary:            fmt.Sprintf("Found %d potential documentation improvement(s).", len(nudges)),
		DocumentationScore: score,
	}
}

// anyKeyword reports whether any keyword occurs as a whole word in the text.
// Whole-word matching keeps short triggers like "mi" from firing inside
// unrelated words.
func anyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if containsToken(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// containsToken is a unicode-aware whole-word substring test. Word runes are
// letters and digits; everything else is a boundary.
func containsToken(text, token string) bool {
	if token == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], token)
		if i < 0 {
			return false
		}
		i += start
		if boundaryBefore(text, i) && boundaryAfter(text, i+len(token)) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
