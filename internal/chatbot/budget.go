package chatbot

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultBudgetTitle = "Monthly Budget"

var budgetKeywords = [...]string{
	"set budget", "create budget", "make budget", "new budget",
	"budget of", "budget for", "add budget",
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	budgetTitleRe = regexp.MustCompile(`(?i)\bbudget(?:ing)?\s+for\s+([a-z\s]+?)(?:\s+in\b|\s+from\b|\s+of\b|\s+for\b|\s+\$|\s*$)`)
	budgetMonthRe = regexp.MustCompile(`(?i)\b(?:in|for)\s+(` + monthAlt + `)\b(?:\s+(\d{4}))?`)
	budgetSpanRe  = regexp.MustCompile(`(?i)\b(?:from|between)\s+(.+?)\s+(?:to|through|until|and)\s+(.+?)(?:\s+(?:for|in|of|with)\b|\s*[,;!?]|\s*\.\s|\s*\.?$)`)
)

// IsBudgetRequest reports whether text asks for a new budget.
func IsBudgetRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range budgetKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// BudgetParser extracts a budget (title, amount, date range) from a message.
type BudgetParser struct {
	Parser DateParser
	Now    func() time.Time
	Log    zerolog.Logger
}

// NewBudgetParser returns a parser backed by LanguageDateParser and the wall clock.
func NewBudgetParser(log zerolog.Logger) *BudgetParser {
	return &BudgetParser{Parser: LanguageDateParser{}, Now: time.Now, Log: log}
}

// Parse returns the budget described by text. ok is false when no amount is present or no
// range can be settled on.
func (p *BudgetParser) Parse(text string) (ExtractedBudget, bool) {
	amount, ok := ExtractAmount(text)
	if !ok {
		p.Log.Debug().Str("text", text).Msg("budget request without amount")
		return ExtractedBudget{}, false
	}

	now := p.Now()
	title := defaultBudgetTitle
	if m := budgetTitleRe.FindStringSubmatch(text); m != nil {
		if t := titleCase(m[1]); t != "" {
			title = t
		}
	}

	var start, end time.Time
	resolved := false

	if m := budgetMonthRe.FindStringSubmatch(text); m != nil {
		year := now.Year()
		if m[2] != "" {
			year, _ = strconv.Atoi(m[2])
		}
		start, end = monthRange(year, months[strings.ToLower(m[1][:3])], now.Location())
		resolved = true
		if title == defaultBudgetTitle {
			title = start.Format("January 2006") + " Budget"
		}
	}

	if !resolved {
		if m := budgetSpanRe.FindStringSubmatch(text); m != nil {
			s, okStart := p.Parser.Parse(m[1], now, false)
			e, okEnd := p.Parser.Parse(m[2], now, false)
			switch {
			case !okStart || !okEnd:
				p.Log.Debug().Str("from", m[1]).Str("to", m[2]).Msg("budget span did not parse")
			case e.Before(s):
				p.Log.Debug().Time("start", s).Time("end", e).Msg("budget span ends before it starts")
			default:
				start, end = s, e
				resolved = true
				if title == defaultBudgetTitle {
					title = "Budget " + start.Format("Jan 02") + " to " + end.Format("Jan 02, 2006")
				}
			}
		}
	}

	if !resolved && strings.Contains(strings.ToLower(text), "budget") {
		start, end = monthRange(now.Year(), now.Month(), now.Location())
		resolved = true
		if title == defaultBudgetTitle {
			title = now.Format("January 2006") + " Budget"
		}
	}

	if !resolved {
		return ExtractedBudget{}, false
	}

	b := ExtractedBudget{
		Title:       title,
		Amount:      amount,
		Start:       start,
		End:         end,
		Description: "Created via chatbot: " + text,
	}
	p.Log.Debug().Str("title", b.Title).Str("amount", b.Amount.String()).
		Time("start", b.Start).Time("end", b.End).Msg("budget extracted")
	return b, true
}

// monthRange returns the first and last day of the month.
func monthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return first, first.AddDate(0, 1, -1)
}
