package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// ErrFmtHandler is a slog handler that enriches records carrying an
// error attribute. The error's cockroachdb stacktrace is surfaced under
// StacktraceAttrKey and its concrete type under ErrorTypeKey, so that
// autologging failures can be filtered by error family.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps a slog handler with error enrichment.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var wrapped error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			if err, ok := attr.Value.Any().(error); ok {
				wrapped = err
			}
			return false
		}
		return true
	})
	if wrapped != nil {
		if st := extractStacktrace(wrapped); st != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, st))
		}
		r.AddAttrs(slog.String(ErrorTypeKey, errorTypeName(wrapped)))
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// errorTypeName reports the innermost cause's concrete type. Wrapping
// layers added by errors.Wrap are skipped so the family stays visible.
func errorTypeName(err error) string {
	cause := err
	for {
		next := errors.UnwrapOnce(cause)
		if next == nil {
			break
		}
		cause = next
	}
	return fmt.Sprintf("%T", cause)
}
