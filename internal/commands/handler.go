package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// DefaultTimeout bounds a command unless WithTimeout overrides it.
const DefaultTimeout = 30 * time.Second

// Outcome is what a handler reports after every execution. Code is empty on
// success.
type Outcome struct {
	Command   string
	Operation string
	Code      string
	Fields    map[string]any
	Duration  time.Duration
	Err       error
}

// Observer is called with the outcome of each execution, after logging.
type Observer func(ctx context.Context, outcome Outcome)

// HandlerOption configures a Handler.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler runs a command function behind message validation, a deadline,
// structured logging and the LIS_COMMAND_* error codes.
type Handler[T command.Message] struct {
	exec       command.CommandFunc[T]
	logger     interfaces.Logger
	timeout    time.Duration
	operation  string
	fields     func(T) map[string]any
	collectors *metrics.Collectors
	observers  []Observer
}

func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute satisfies command.Commander[T].
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if ctx == nil {
		ctx = context.Background()
	}

	outcome := Outcome{
		Command:   command.GetMessageType(msg),
		Operation: h.operation,
		Fields:    h.messageFields(msg),
	}
	logger := logging.WithFields(h.logger, outcome.Fields)
	logger.Debug("command.execute.start")

	start := time.Now()
	err := h.run(ctx, msg)
	outcome.Duration = time.Since(start)
	outcome.Err = err
	outcome.Code = ErrorCode(err)

	switch outcome.Code {
	case "":
		logger.Info("command.execute.success", "duration_ms", outcome.Duration.Milliseconds())
	case CodeInvalid, CodeForbidden, CodeNotFound:
		logger.Warn("command.execute.rejected", "code", outcome.Code, "error", err)
	default:
		logger.Error("command.execute.failed", "code", outcome.Code, "error", err)
	}

	result := "ok"
	if outcome.Code != "" {
		result = outcome.Code
	}
	h.collectors.Command(outcome.Command, result, outcome.Duration)

	for _, observe := range h.observers {
		observe(ctx, outcome)
	}
	return err
}

func (h *Handler[T]) run(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return rejected(err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return wrapError(err)
	}

	err := h.exec(ctx, msg)
	if err == nil {
		err = ctx.Err()
	}
	return wrapError(err)
}

func (h *Handler[T]) messageFields(msg T) map[string]any {
	fields := map[string]any{"command": command.GetMessageType(msg)}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fields != nil {
		for key, value := range h.fields(msg) {
			fields[key] = value
		}
	}
	return fields
}

// WithTimeout overrides DefaultTimeout. Zero or less runs without a deadline.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = logging.Ensure(logger)
	}
}

// WithOperation names the operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields adds message specific fields to the execution logs.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithMetrics counts executions on lis_commands_total.
func WithMetrics[T command.Message](collectors *metrics.Collectors) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.collectors = collectors
	}
}

func WithObserver[T command.Message](fn Observer) HandlerOption[T] {
	return func(h *Handler[T]) {
		if fn != nil {
			h.observers = append(h.observers, fn)
		}
	}
}
