package push

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// multicastLimit is the maximum number of tokens FCM accepts per multicast call.
const multicastLimit = 500

var ErrNoTokens = errors.New("no device tokens")

type Notification struct {
	Title  string
	Body   string
	Data   map[string]string
	Tokens []string
}

// Report is the per-call delivery summary.
type Report struct {
	SuccessCount int
	FailureCount int
}

type Sender interface {
	Send(ctx context.Context, n Notification) (*Report, error)
}

type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCM delivers notifications through Firebase Cloud Messaging.
type FCM struct {
	client multicastClient
}

func NewFCM(client *messaging.Client) *FCM {
	return &FCM{client: client}
}

func (f *FCM) Send(ctx context.Context, n Notification) (*Report, error) {
	if len(n.Tokens) == 0 {
		return nil, ErrNoTokens
	}
	report := &Report{}
	for start := 0; start < len(n.Tokens); start += multicastLimit {
		end := min(start+multicastLimit, len(n.Tokens))
		resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: n.Tokens[start:end],
			Notification: &messaging.Notification{
				Title: n.Title,
				Body:  n.Body,
			},
			Data: n.Data,
		})
		if err != nil {
			return report, fmt.Errorf("failed to send FCM multicast: %w", err)
		}
		report.SuccessCount += resp.SuccessCount
		report.FailureCount += resp.FailureCount
	}
	return report, nil
}
