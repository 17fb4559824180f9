package chatbot

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// "$200", "200$", "200 dollars", "12.50". Unsigned, no thousands separator.
	amountRe = regexp.MustCompile(`(?i)\$?\s*(\d+(?:\.\d{1,2})?)\s*(?:dollars?|\$)?`)

	categoryRe = regexp.MustCompile(`(?i)\b(?:in|for|on)\s+([a-z]+)`)
)

// incomeKeywords mark a message as Income when found anywhere in it.
var incomeKeywords = [...]string{"earned", "received", "income", "salary", "payment", "got", "deposit"}

// ExtractAmount returns the first amount-like number in text.
func ExtractAmount(text string) (decimal.Decimal, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// ExtractCategory returns the word after the first "in", "for" or "on", capitalised.
func ExtractCategory(text string) (string, bool) {
	m := categoryRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return capitalize(m[1]), true
}

// ClassifyType labels text as Income when it mentions an income keyword, Expense otherwise.
func ClassifyType(text string) TransactionType {
	lower := strings.ToLower(text)
	for _, kw := range incomeKeywords {
		if strings.Contains(lower, kw) {
			return Income
		}
	}
	return Expense
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
