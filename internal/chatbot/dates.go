package chatbot

import (
	"regexp"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
	"github.com/rs/zerolog"
)

const monthAlt = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	prepositionDateRe = regexp.MustCompile(`(?i)\b(?:on|at|for)\s+(\d{1,2}(?:st|nd|rd|th)?\s+(?:` + monthAlt + `)\b|yesterday|today|tomorrow|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|[a-z]+day)`)
	monthDayRe        = regexp.MustCompile(`(?i)\b((?:` + monthAlt + `)\s+\d{1,2}(?:st|nd|rd|th)?\b(?:\s*,?\s*\d{4})?)`)
	monthYearRe       = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\s+(\d{4})\b`)
	numericDateRe     = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?)`)
)

// maxWindowWords bounds the word-window scan, the last and least reliable step.
const maxWindowWords = 4

// DateParser turns a date phrase into a time. When strict is set the phrase has to name a
// complete date.
type DateParser interface {
	Parse(phrase string, now time.Time, strict bool) (time.Time, bool)
}

// LanguageDateParser parses English date phrases with go-dateparser.
type LanguageDateParser struct{}

func (LanguageDateParser) Parse(phrase string, now time.Time, strict bool) (time.Time, bool) {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return time.Time{}, false
	}
	switch phrase {
	case "today":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	case "tomorrow":
		return now.AddDate(0, 0, 1), true
	}

	cfg := &dps.Configuration{
		Languages:       []string{"en"},
		CurrentTime:     now,
		DefaultTimezone: now.Location(),
		StrictParsing:   strict,
	}
	dt, err := dps.Parse(cfg, phrase)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}
	return dt.Time, true
}

// DateExtractor finds the date a message talks about, defaulting to now.
type DateExtractor struct {
	Parser DateParser
	Now    func() time.Time
	Log    zerolog.Logger
}

// NewDateExtractor returns an extractor backed by LanguageDateParser and the wall clock.
func NewDateExtractor(log zerolog.Logger) *DateExtractor {
	return &DateExtractor{Parser: LanguageDateParser{}, Now: time.Now, Log: log}
}

// Extract tries progressively looser patterns and returns the first phrase that parses.
func (e *DateExtractor) Extract(text string) time.Time {
	now := e.Now()

	if m := prepositionDateRe.FindStringSubmatch(text); m != nil {
		if t, ok := e.try("preposition", m[1], now, false); ok {
			return t
		}
	}
	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		if t, ok := e.try("month-day", m[1], now, false); ok {
			return t
		}
	}
	if m := monthYearRe.FindStringSubmatch(text); m != nil {
		if t, ok := e.try("month-year", "1 "+m[1]+" "+m[2], now, false); ok {
			return t
		}
	}
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		if t, ok := e.try("numeric", m[1], now, false); ok {
			return t
		}
	}

	words := strings.Fields(text)
	for i := range words {
		for n := 1; n <= maxWindowWords && i+n <= len(words); n++ {
			if t, ok := e.try("window", strings.Join(words[i:i+n], " "), now, true); ok {
				return t
			}
		}
	}

	e.Log.Debug().Str("text", text).Msg("no date found, using current time")
	return now
}

func (e *DateExtractor) try(step, phrase string, now time.Time, strict bool) (time.Time, bool) {
	t, ok := e.Parser.Parse(phrase, now, strict)
	if ok {
		e.Log.Debug().Str("step", step).Str("phrase", phrase).Time("date", t).Msg("date extracted")
	}
	return t, ok
}
