package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	budgetHelp      = "I couldn't understand the budget details. Please try saying something like 'Set budget of $1000 for April' or 'Create budget of $500 from April 1 to April 15'."
	transactionHelp = "I couldn't understand the amount or category. Please try saying something like 'I spent $200 on Travel' or 'I earned $500 in Salary'."

	displayDate = "January 02, 2006"
)

// Stores bundles the collaborators the processor writes to.
type Stores struct {
	Categories   CategoryStore
	Transactions TransactionStore
	Budgets      BudgetStore
	Balance      BalanceProvider
}

// Processor routes a chat message to budget or transaction creation.
type Processor struct {
	stores   Stores
	resolver *CategoryResolver
	dates    *DateExtractor
	budgets  *BudgetParser
	log      zerolog.Logger
}

// NewProcessor wires a processor on the wall clock.
func NewProcessor(stores Stores, log zerolog.Logger) *Processor {
	return NewProcessorWithClock(stores, time.Now, log)
}

// NewProcessorWithClock is NewProcessor with an explicit clock.
func NewProcessorWithClock(stores Stores, now func() time.Time, log zerolog.Logger) *Processor {
	log = log.With().Str("component", "chatbot").Logger()
	return &Processor{
		stores:   stores,
		resolver: NewCategoryResolver(stores.Categories, log),
		dates:    &DateExtractor{Parser: LanguageDateParser{}, Now: now, Log: log},
		budgets:  &BudgetParser{Parser: LanguageDateParser{}, Now: now, Log: log},
		log:      log,
	}
}

// Process handles one message. It never fails: every outcome, including store errors, is
// reported through the returned Reply.
func (p *Processor) Process(ctx context.Context, in IncomingMessage) (reply Reply) {
	log := p.log.With().Int64("user_id", in.UserID).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("chatbot processing panicked")
			created := false
			reply = Reply{
				Message:            fmt.Sprintf("Sorry, I encountered an error: %v", r),
				TransactionCreated: &created,
				Error:              fmt.Sprint(r),
			}
		}
	}()

	text := strings.ToLower(strings.TrimSpace(in.Message))
	log.Info().Str("message", text).Msg("processing chatbot message")

	if IsBudgetRequest(text) {
		return p.processBudget(ctx, log, in.UserID, text)
	}
	return p.processTransaction(ctx, log, in.UserID, text)
}

func (p *Processor) processBudget(ctx context.Context, log zerolog.Logger, userID int64, text string) Reply {
	b, ok := p.budgets.Parse(text)
	if !ok {
		return budgetReply(budgetHelp, false)
	}

	id, err := p.stores.Budgets.CreateBudget(ctx, userID, b.Title, b.Amount, b.Description, b.Start, b.End)
	if err != nil {
		log.Error().Err(err).Msg("creating budget")
		return budgetReply("Error creating budget: "+err.Error(), false)
	}
	if id == 0 {
		log.Error().Msg("budget store returned no id")
		return budgetReply("Budget was created but there was an issue retrieving its ID.", true)
	}

	log.Info().Int64("budget_id", id).Str("title", b.Title).Msg("budget created via chatbot")
	r := budgetReply(fmt.Sprintf("Successfully created budget '%s' of $%s from %s to %s.",
		b.Title, b.Amount.String(), b.Start.Format(displayDate), b.End.Format(displayDate)), true)
	r.BudgetDetails = &BudgetDetails{
		Title:     b.Title,
		Amount:    b.Amount,
		StartDate: b.Start,
		EndDate:   b.End,
	}
	return r
}

func (p *Processor) processTransaction(ctx context.Context, log zerolog.Logger, userID int64, text string) Reply {
	amount, okAmount := ExtractAmount(text)
	category, okCategory := ExtractCategory(text)
	tx := ExtractedTransaction{
		Amount:      amount,
		Category:    category,
		Type:        ClassifyType(text),
		Date:        p.dates.Extract(text),
		Description: "Added via chatbot: " + text,
	}
	log.Debug().Str("amount", tx.Amount.String()).Str("category", tx.Category).
		Str("type", string(tx.Type)).Time("date", tx.Date).Msg("extracted transaction")

	if !okAmount || !okCategory || !tx.Amount.IsPositive() {
		return transactionReply(transactionHelp, false)
	}

	res, err := p.resolver.Resolve(ctx, userID, tx.Category, tx.Type)
	if err != nil {
		log.Error().Err(err).Str("category", tx.Category).Msg("resolving category")
		return transactionReply(fmt.Sprintf("Couldn't find or create the %s category: %v", tx.Category, err), false)
	}
	if res.ID == 0 {
		verb := "Found"
		if res.Created {
			verb = "Created"
		}
		return transactionReply(fmt.Sprintf("%s the %s category but couldn't retrieve its ID. Please try again.", verb, tx.Category), false)
	}

	id, err := p.stores.Transactions.CreateTransaction(ctx, userID, res.ID, tx.Type, tx.Amount, tx.Description, tx.Date)
	if err != nil {
		log.Error().Err(err).Msg("creating transaction")
		return transactionReply("Error: "+err.Error(), false)
	}
	if id == 0 {
		log.Error().Msg("transaction store returned no id")
		return transactionReply("Transaction was created but there was an issue retrieving its ID.", true)
	}

	verb := "spent"
	if tx.Type == Income {
		verb = "received"
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "Successfully %s $%s in %s on %s.", verb, tx.Amount.String(), tx.Category, tx.Date.Format(displayDate))
	if res.Created {
		fmt.Fprintf(&msg, " Created new '%s' category.", tx.Category)
	}

	balance, err := p.stores.Balance.GetBalance(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("fetching balance")
		balance = decimal.Zero
	}
	fmt.Fprintf(&msg, "\nYour current balance is: $%s", balance.StringFixed(2))

	log.Info().Int64("transaction_id", id).Int64("category_id", res.ID).Msg("transaction created via chatbot")
	r := transactionReply(msg.String(), true)
	r.TransactionDetails = &TransactionDetails{
		Amount:   tx.Amount,
		Category: tx.Category,
		Type:     tx.Type,
		Date:     tx.Date,
		Balance:  balance,
	}
	return r
}
