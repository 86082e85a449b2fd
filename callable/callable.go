// Package callable serves operations over the Firebase callable protocol:
// a POST of {"data": ...} answered with {"result": ...} or {"error": {"status", "message"}}.
package callable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/servicly/functions/auth"
	"github.com/servicly/functions/log"
)

const (
	traceHeader       = "X-Cloud-Trace-Context"
	executionIDHeader = "Function-Execution-Id"
	maxBodyBytes      = 1 << 20
)

// Auth is the verified identity of the caller.
type Auth struct {
	UID    string
	Claims map[string]any
}

// HasClaim reports whether the custom claim is present and exactly true.
func (a *Auth) HasClaim(name string) bool {
	if a == nil {
		return false
	}
	v, ok := a.Claims[name].(bool)
	return ok && v
}

type Request struct {
	// Auth is nil for unauthenticated callers.
	Auth *Auth
	Data json.RawMessage
}

// Bind decodes the request data into v.
func (r *Request) Bind(v any) error {
	data := bytes.TrimSpace(r.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return WrapError(InvalidArgument, "Invalid request data.", err)
	}
	return nil
}

// RequireAuth fails with Unauthenticated when there is no caller identity.
func (r *Request) RequireAuth() (*Auth, error) {
	if r.Auth == nil {
		return nil, NewError(Unauthenticated, "User is not authenticated.")
	}
	return r.Auth, nil
}

type Func func(ctx context.Context, req *Request) (any, error)

// Server adapts Funcs to http handlers.
type Server struct {
	ProjectID string
	Verifier  auth.Verifier
}

type requestBody struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) Handler(name string, fn Func) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := r.Header.Get(executionIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		logger := log.LoggerFromContext(ctx).With(
			slog.String(log.FunctionField, name),
			slog.String(log.RequestIDField, requestID),
		)
		if trace := s.trace(r); trace != "" {
			ctx = log.WithTrace(ctx, trace)
		}
		logger.InfoContext(ctx, "callable function called")

		if r.Method != http.MethodPost {
			logger.ErrorContext(ctx, "invalid method: "+r.Method)
			writeError(ctx, w, logger, NewError(InvalidArgument, "Request must be a POST."))
			return
		}

		var body requestBody
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(ctx, w, logger, WrapError(Internal, "Internal error.", err))
			return
		}
		if err := json.Unmarshal(data, &body); err != nil || body.Data == nil {
			writeError(ctx, w, logger, NewError(InvalidArgument, "Bad Request"))
			return
		}

		req := &Request{Data: body.Data}
		token, err := auth.Authenticate(r, s.Verifier)
		switch {
		case errors.Is(err, auth.ErrNoCredentials):
		case err != nil:
			logger.ErrorContext(ctx, "error while authenticating", log.Err(err))
			writeError(ctx, w, logger, NewError(Unauthenticated, "Unauthenticated"))
			return
		default:
			req.Auth = &Auth{UID: token.UID, Claims: token.Claims}
			logger = logger.With(slog.String(log.UserIDField, token.UID))
		}
		ctx = log.WithLogger(ctx, logger)

		result, err := fn(ctx, req)
		if err != nil {
			writeError(ctx, w, logger, err)
			return
		}
		writeJSON(ctx, w, logger, http.StatusOK, map[string]any{"result": result})
	}
}

// trace converts "TRACE_ID/SPAN_ID;o=1" into a Cloud Trace resource name.
func (s *Server) trace(r *http.Request) string {
	header := r.Header.Get(traceHeader)
	if header == "" || s.ProjectID == "" {
		return ""
	}
	traceID, _, _ := strings.Cut(header, "/")
	if traceID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/traces/%s", s.ProjectID, traceID)
}

// WriteError answers a callable request with the error body for err, for failures
// that happen before a Handler runs.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	writeError(ctx, w, log.LoggerFromContext(ctx), err)
}

func writeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	body := errorBody{Status: Internal.Status(), Message: "INTERNAL"}
	code := Internal
	var cerr *Error
	if errors.As(err, &cerr) {
		code = cerr.Code
		body = errorBody{Status: code.Status(), Message: cerr.Message}
	}
	if code == Internal || code == Unknown {
		logger.ErrorContext(ctx, "callable function failed", slog.String("code", string(code)), log.Err(err))
	} else {
		logger.WarnContext(ctx, "callable function rejected", slog.String("code", string(code)), log.Err(err))
	}
	writeJSON(ctx, w, logger, code.HTTPStatus(), map[string]any{"error": body})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ErrorContext(ctx, "error while writing response", log.Err(err))
	}
}
