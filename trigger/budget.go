package trigger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/event"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/push"
)

type recipientRole int

const (
	toProvider recipientRole = iota
	toClient
)

type budgetTemplate struct {
	title     string
	body      string // formatted with the budget title
	recipient recipientRole
}

var budgetTemplates = map[string]budgetTemplate{
	contract.BudgetAcceptedByClient: {
		title:     "Budget accepted! ✅",
		body:      `The client accepted your budget for "%s".`,
		recipient: toProvider,
	},
	contract.BudgetRejectedByClient: {
		title:     "Budget rejected ❌",
		body:      `The client rejected your budget for "%s".`,
		recipient: toProvider,
	},
	contract.BudgetContractCreated: {
		title:     "Job confirmed! 🤝",
		body:      `The provider confirmed the job for "%s".`,
		recipient: toClient,
	},
}

// BudgetStatusNotifier reacts to budget status transitions.
type BudgetStatusNotifier struct {
	notifier
}

func NewBudgetStatusNotifier(store Store, sender push.Sender) *BudgetStatusNotifier {
	return &BudgetStatusNotifier{notifier{store: store, push: sender}}
}

func (b *BudgetStatusNotifier) Handle(ctx context.Context, change *event.Change) Outcome {
	if !change.Updated() {
		return skipped("not an update")
	}
	if !change.FieldChanged("estado") {
		return skipped("status unchanged")
	}
	var budget contract.FirestoreBudget
	if err := change.After.DataTo(&budget); err != nil {
		return failed("error while decoding budget", err)
	}

	tmpl, ok := budgetTemplates[budget.Status]
	if !ok {
		return skipped("status " + budget.Status + " has no notification")
	}
	recipientID := budget.ProviderID
	if tmpl.recipient == toClient {
		recipientID = budget.ClientID
	}

	budgetID := change.Params["presupuestoId"]
	ctx = log.WithLogger(ctx, log.LoggerFromContext(ctx).With(slog.String(log.BudgetIDField, budgetID)))
	tokens, outcome, ok := b.tokens(ctx, recipientID)
	if !ok {
		return outcome
	}

	return b.send(ctx, recipientID, push.Notification{
		Title:  tmpl.title,
		Body:   fmt.Sprintf(tmpl.body, budget.Title),
		Data:   map[string]string{"referenceId": budgetID, "type": "budget_update"},
		Tokens: tokens,
	})
}

// NewBudgetNotifier tells a client that a provider sent them a budget.
type NewBudgetNotifier struct {
	notifier
}

func NewNewBudgetNotifier(store Store, sender push.Sender) *NewBudgetNotifier {
	return &NewBudgetNotifier{notifier{store: store, push: sender}}
}

func (b *NewBudgetNotifier) Handle(ctx context.Context, change *event.Change) Outcome {
	if !change.Created() {
		return skipped("not a creation")
	}
	var budget contract.FirestoreBudget
	if err := change.After.DataTo(&budget); err != nil {
		return failed("error while decoding budget", err)
	}
	if budget.ClientID == "" || budget.ProviderID == "" {
		return skipped("budget without client or provider")
	}

	budgetID := change.Params["presupuestoId"]
	ctx = log.WithLogger(ctx, log.LoggerFromContext(ctx).With(slog.String(log.BudgetIDField, budgetID)))
	professionalName := b.displayName(ctx, budget.ProviderID, unknownProfessional)
	tokens, outcome, ok := b.tokens(ctx, budget.ClientID)
	if !ok {
		return outcome
	}

	return b.send(ctx, budget.ClientID, push.Notification{
		Title: "You received a new budget!",
		Body:  fmt.Sprintf(`%s sent you an offer for your request: "%s".`, professionalName, budget.Title),
		Data: map[string]string{
			"referenceId": budgetID,
			"requestId":   budget.RequestID,
			"type":        "new_budget",
		},
		Tokens: tokens,
	})
}
