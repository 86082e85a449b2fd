// Package servicly registers the marketplace's Cloud Functions: the Firestore
// triggers that keep derived data and send push notifications, and the callable
// operations used by the apps.
package servicly

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/servicly/functions/callable"
	"github.com/servicly/functions/config"
	"github.com/servicly/functions/event"
	"github.com/servicly/functions/log"
	"github.com/servicly/functions/ops"
	"github.com/servicly/functions/payment"
	"github.com/servicly/functions/push"
	"github.com/servicly/functions/store"
	"github.com/servicly/functions/trigger"
	"google.golang.org/api/option"
)

type reactiveFunction struct {
	name string
	// eventType is the Firestore event the function is deployed for; other types are skipped.
	eventType string
	pattern   string
	build     func(d *dependencies) trigger.Handler
}

type callableFunction struct {
	name  string
	build func(d *dependencies) callable.Func
}

var reactiveFunctions = []reactiveFunction{
	{
		name:      "UpdateUserKeywords",
		eventType: event.TypeUpdated,
		pattern:   "usuarios/{userId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewKeywordIndexer(d.store) },
	},
	{
		name:      "SendContractChatMessageNotification",
		eventType: event.TypeCreated,
		pattern:   "chats/{chatId}/messages/{messageId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewChatMessageNotifier(d.store, d.push) },
	},
	{
		name:      "SendLikeNotification",
		eventType: event.TypeUpdated,
		pattern:   "post/{postId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewLikeNotifier(d.store, d.push) },
	},
	{
		name:      "SendCommentNotification",
		eventType: event.TypeCreated,
		pattern:   "post/{postId}/comentarios/{commentId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewCommentNotifier(d.store, d.push) },
	},
	{
		name:      "SendFollowerNotification",
		eventType: event.TypeUpdated,
		pattern:   "usuarios/{followedId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewFollowerNotifier(d.store, d.push) },
	},
	{
		name:      "NotifyOnBudgetUpdate",
		eventType: event.TypeUpdated,
		pattern:   "presupuestos/{presupuestoId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewBudgetStatusNotifier(d.store, d.push) },
	},
	{
		name:      "NotifyRelevantProviders",
		eventType: event.TypeCreated,
		pattern:   "solicitudes/{solicitudId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewNewRequestFanout(d.store, d.push) },
	},
	{
		name:      "NotifyOnNewBudget",
		eventType: event.TypeCreated,
		pattern:   "presupuestos/{presupuestoId}",
		build:     func(d *dependencies) trigger.Handler { return trigger.NewNewBudgetNotifier(d.store, d.push) },
	},
}

var callableFunctions = []callableFunction{
	{
		name:  "SetAdminRole",
		build: func(d *dependencies) callable.Func { return ops.NewAdminRoleAssigner(d.auth).Call },
	},
	{
		name:  "GetOrCreateChat",
		build: func(d *dependencies) callable.Func { return ops.NewChatRoomProvisioner(d.store).Call },
	},
	{
		name:  "CreateStripeAccountLink",
		build: func(d *dependencies) callable.Func { return ops.NewStripeOnboardingLinker(d.store, d.stripe).Call },
	},
	{
		name:  "CreateMercadoPagoPreference",
		build: func(d *dependencies) callable.Func { return ops.NewPaymentPreferenceCreator(d.mercadoPago).Call },
	},
}

func init() {
	for _, f := range reactiveFunctions {
		functions.CloudEvent(f.name, reactive(f))
	}
	for _, f := range callableFunctions {
		functions.HTTP(f.name, invokable(f))
	}
}

// dependencies are the clients shared by every invocation of an instance.
type dependencies struct {
	projectID   string
	store       *store.Store
	push        *push.FCM
	auth        *fbauth.Client
	stripe      *payment.Stripe
	mercadoPago *payment.MercadoPago
}

var (
	depsMu sync.Mutex
	deps   *dependencies
)

// loadDependencies builds the clients on first success; a failed attempt is retried
// by the next invocation.
func loadDependencies(ctx context.Context) (*dependencies, error) {
	return loadOnce(ctx, newDependencies)
}

func loadOnce(ctx context.Context, build func(context.Context) (*dependencies, error)) (*dependencies, error) {
	depsMu.Lock()
	defer depsMu.Unlock()
	if deps != nil {
		return deps, nil
	}
	d, err := build(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	deps = d
	return deps, nil
}

func newDependencies(ctx context.Context) (*dependencies, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firestore: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing auth: %w", err)
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing messaging: %w", err)
	}

	mercadoPago, err := payment.NewMercadoPago(
		cfg.MercadoPagoBaseURL,
		cfg.MercadoPagoAccessToken,
		cfg.PaymentCurrency,
		payment.BackURLs{
			Success: cfg.PaymentSuccessURL,
			Failure: cfg.PaymentFailureURL,
			Pending: cfg.PaymentPendingURL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("initializing mercadopago: %w", err)
	}

	return &dependencies{
		projectID:   cfg.ProjectID,
		store:       store.New(firestoreClient),
		push:        push.NewFCM(messagingClient),
		auth:        authClient,
		stripe:      payment.NewStripe(cfg.StripeSecretKey, cfg.StripeRefreshURL, cfg.StripeReturnURL),
		mercadoPago: mercadoPago,
	}, nil
}

// reactive adapts a trigger handler to a CloudEvent function. It always acknowledges
// the event: failures are logged and never retried.
func reactive(f reactiveFunction) func(context.Context, cloudevent.Event) error {
	return func(ctx context.Context, e cloudevent.Event) error {
		handleEvent(ctx, f, e, loadDependencies)
		return nil
	}
}

func handleEvent(ctx context.Context, f reactiveFunction, e cloudevent.Event, load func(context.Context) (*dependencies, error)) {
	logger := log.LoggerFromContext(ctx).With(
		slog.String(log.FunctionField, f.name),
		slog.String(log.EventIDField, e.ID()),
	)
	ctx = log.WithLogger(ctx, logger)
	logger.DebugContext(ctx, "event received",
		slog.String("type", e.Type()),
		slog.String("subject", e.Subject()),
	)

	if e.Type() != f.eventType {
		logger.WarnContext(ctx, "ignoring event of unexpected type",
			slog.String("type", e.Type()),
			slog.String("expectedType", f.eventType),
		)
		return
	}
	d, err := load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "error while initializing clients", log.Err(err))
		return
	}
	change, err := event.Decode(e, f.pattern)
	if err != nil {
		logger.ErrorContext(ctx, "error while decoding event", log.Err(err))
		return
	}
	f.build(d).Handle(ctx, change).Log(ctx, logger)
}

func invokable(f callableFunction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		d, err := loadDependencies(ctx)
		if err != nil {
			logger := log.LoggerFromContext(ctx).With(slog.String(log.FunctionField, f.name))
			logger.ErrorContext(ctx, "error while initializing clients", log.Err(err))
			callable.WriteError(log.WithLogger(ctx, logger), w, err)
			return
		}
		srv := &callable.Server{ProjectID: d.projectID, Verifier: d.auth}
		srv.Handler(f.name, f.build(d)).ServeHTTP(w, r)
	}
}
