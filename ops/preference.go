package ops

import (
	"context"
	"log/slog"
	"strings"

	"github.com/servicly/functions/callable"
	"github.com/servicly/functions/contract"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/payment"
)

// PaymentPreferenceCreator opens a hosted checkout for a single item.
type PaymentPreferenceCreator struct {
	checkout Checkout
}

func NewPaymentPreferenceCreator(checkout Checkout) *PaymentPreferenceCreator {
	return &PaymentPreferenceCreator{checkout: checkout}
}

func (c *PaymentPreferenceCreator) Call(ctx context.Context, req *callable.Request) (any, error) {
	if _, err := req.RequireAuth(); err != nil {
		return nil, err
	}
	var in contract.PreferenceRequest
	if err := req.Bind(&in); err != nil {
		return nil, callable.WrapError(callable.InvalidArgument, "Missing data.", err)
	}
	title := strings.TrimSpace(in.Title)
	email := strings.TrimSpace(in.PayerEmail)
	if title == "" || email == "" || in.UnitPrice <= 0 {
		return nil, callable.NewError(callable.InvalidArgument, "Missing data.")
	}

	pref, err := c.checkout.CreatePreference(ctx, payment.Checkout{
		Title:      title,
		UnitPrice:  float64(in.UnitPrice),
		PayerEmail: email,
	})
	if err != nil {
		return nil, callable.WrapError(callable.Unknown, "Could not create the payment.", err)
	}
	log.LoggerFromContext(ctx).InfoContext(ctx, "payment preference created", slog.String("preferenceID", pref.ID))
	return contract.PreferenceResponse{PreferenceID: pref.ID, InitPoint: pref.InitPoint}, nil
}
