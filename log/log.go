package log

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/logging"
)

const (
	ErrorMsgField    = "errorMsg"
	FunctionField    = "function"
	EventIDField     = "eventID"
	RequestIDField   = "requestID"
	UserIDField      = "userID"
	ChatIDField      = "chatID"
	PostIDField      = "postID"
	BudgetIDField    = "budgetID"
	RequestDocField  = "solicitudID"
	RecipientIDField = "recipientID"
	TokensField      = "tokens"
	ReasonField      = "reason"

	traceField = "logging.googleapis.com/trace"
)

type (
	ctxKey   struct{}
	traceKey struct{}
)

// CloudLoggingHandler is a slog.Handler implementation for Google Cloud Functions.
type CloudLoggingHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	attrs []slog.Attr
}

// NewCloudLoggingHandler creates a new handler that writes logs in Google Cloud structured format to stdout.
func NewCloudLoggingHandler() *CloudLoggingHandler {
	return newCloudLoggingHandler(os.Stdout)
}

func newCloudLoggingHandler(w io.Writer) *CloudLoggingHandler {
	return &CloudLoggingHandler{mu: &sync.Mutex{}, w: w}
}

// Handle processes log records.
func (h *CloudLoggingHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := map[string]any{
		"severity": Severity(r.Level),
		"time":     r.Time.Format(time.RFC3339Nano),
		"message":  r.Message,
	}
	if r.Time.IsZero() {
		entry["time"] = time.Now().Format(time.RFC3339Nano)
	}

	if trace := traceFromContext(ctx); trace != "" {
		entry[traceField] = trace
	}

	// handler attributes first, record attributes override them
	for _, attr := range h.attrs {
		entry[attr.Key] = attrValue(attr.Value.Resolve())
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attrValue(attr.Value.Resolve())
		return true
	})

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(append(jsonData, '\n'))
	return err
}

func attrValue(v slog.Value) any {
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}

// Enabled always returns true, so all log levels are handled.
func (h *CloudLoggingHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs returns a new handler with additional attributes.
func (h *CloudLoggingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &CloudLoggingHandler{mu: h.mu, w: h.w, attrs: newAttrs}
}

// WithGroup returns the same handler, as grouping is not implemented.
func (h *CloudLoggingHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Severity maps a slog level onto the Cloud Logging severity name.
func Severity(level slog.Level) string {
	var s logging.Severity
	switch {
	case level < slog.LevelInfo:
		s = logging.Debug
	case level < slog.LevelWarn:
		s = logging.Info
	case level < slog.LevelError:
		s = logging.Warning
	default:
		s = logging.Error
	}
	return strings.ToUpper(s.String())
}

// WithTrace stores a Cloud Trace resource name ("projects/<id>/traces/<trace>") in the context.
func WithTrace(ctx context.Context, trace string) context.Context {
	return context.WithValue(ctx, traceKey{}, trace)
}

func traceFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	trace, _ := ctx.Value(traceKey{}).(string)
	return trace
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(NewCloudLoggingHandler())
}

// Err is a shorthand for the error attribute every handler logs.
func Err(err error) slog.Attr {
	return slog.String(ErrorMsgField, err.Error())
}
