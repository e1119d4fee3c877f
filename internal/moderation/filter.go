// Package moderation screens user text before it reaches the AI botanist.
package moderation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmpty   = errors.New("message is empty")
	ErrTooLong = errors.New("message is too long")
	ErrBlocked = errors.New("message contains inappropriate language")
)

const MaxMessageRunes = 2000

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
}

// Filter is safe for concurrent use.
type Filter struct {
	banned *regexp.Regexp
	email  *regexp.Regexp
	phone  *regexp.Regexp
	url    *regexp.Regexp
}

func NewFilter() *Filter {
	quoted := make([]string, len(bannedWords))
	for i, w := range bannedWords {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return &Filter{
		banned: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`),
		email:  regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`),
		phone:  regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
		url:    regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
	}
}

// Check returns the trimmed message or why it was rejected.
func (f *Filter) Check(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	if n := utf8.RuneCountInString(text); n > MaxMessageRunes {
		return "", fmt.Errorf("%w: %d characters, limit %d", ErrTooLong, n, MaxMessageRunes)
	}
	if f.banned.MatchString(text) {
		return "", ErrBlocked
	}
	return text, nil
}

// Redact masks contact details so they are not forwarded to the provider.
func (f *Filter) Redact(text string) string {
	text = f.email.ReplaceAllString(text, "[email]")
	text = f.url.ReplaceAllString(text, "[link]")
	return f.phone.ReplaceAllString(text, "[phone]")
}
