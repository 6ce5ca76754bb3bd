package taxonomy

import (
	"context"
	"log/slog"
)

// WarningKind classifies advisory diagnostics.
type WarningKind string

const (
	WarnTitleCase  WarningKind = "title-case"
	WarnSelfParent WarningKind = "self-parent"
)

// Warning is a non-fatal diagnostic produced while parsing or converting.
type Warning struct {
	Kind    WarningKind
	Subject string
	Message string
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Message
}

// Warnings accumulates diagnostics in the order they were produced.
type Warnings []Warning

// Log emits every warning at WARN level.
func (ws Warnings) Log(ctx context.Context, logger *slog.Logger) {
	for _, w := range ws {
		logger.WarnContext(ctx, w.Message,
			slog.String("kind", string(w.Kind)),
			slog.String("subject", w.Subject))
	}
}

// Kinds returns the kind of every warning, in order.
func (ws Warnings) Kinds() []WarningKind {
	out := make([]WarningKind, len(ws))
	for i, w := range ws {
		out[i] = w.Kind
	}
	return out
}
