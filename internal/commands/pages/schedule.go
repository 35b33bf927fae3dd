package pagescmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lis/internal/commands"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

const (
	publishScheduledMessageType = "lis.pages.publish_scheduled"

	// DefaultScheduleExpression is how often the sweep runs under cron.
	DefaultScheduleExpression = "@every 1m"
)

// PublishScheduledCommand publishes every revision whose go live time has
// passed. A nil Now uses the current time.
type PublishScheduledCommand struct {
	Now *time.Time `json:"now,omitempty"`
}

// Type implements command.Message.
func (PublishScheduledCommand) Type() string { return publishScheduledMessageType }

func (m PublishScheduledCommand) Validate() error {
	if m.Now != nil && m.Now.IsZero() {
		return validation.Errors{
			"now": validation.NewError("lis.pages.publish_scheduled.now_invalid", "now must be a valid timestamp when provided"),
		}
	}
	return nil
}

// PublishScheduledHandler runs the scheduled publishing sweep.
type PublishScheduledHandler struct {
	inner      *commands.Handler[PublishScheduledCommand]
	cronConfig command.HandlerConfig
}

func NewPublishScheduledHandler(service pages.Service, collectors *metrics.Collectors, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[PublishScheduledCommand]) *PublishScheduledHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg PublishScheduledCommand) error {
		if !gates.schedulingEnabled() {
			return ErrSchedulingDisabled
		}
		now := time.Now().UTC()
		if msg.Now != nil {
			now = *msg.Now
		}
		results, err := service.PublishScheduled(ctx, now)
		for _, result := range results {
			collectors.Published(result.Page.Kind)
			logging.WithFields(baseLogger, map[string]any{
				"page_id":     result.Page.ID,
				"revision_id": result.Revision.ID,
			}).Info("pages.scheduled.published")
		}
		if err != nil {
			return err
		}
		baseLogger.Info("pages.scheduled.completed", "published", len(results))
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishScheduledCommand]{
		commands.WithLogger[PublishScheduledCommand](baseLogger),
		commands.WithOperation[PublishScheduledCommand]("pages.publish_scheduled"),
		commands.WithMetrics[PublishScheduledCommand](collectors),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishScheduledHandler{
		inner:      commands.NewHandler(exec, handlerOpts...),
		cronConfig: command.HandlerConfig{Expression: DefaultScheduleExpression},
	}
}

// WithCronExpression overrides the cron schedule. Blank values are ignored.
func (h *PublishScheduledHandler) WithCronExpression(expression string) *PublishScheduledHandler {
	if trimmed := strings.TrimSpace(expression); trimmed != "" {
		h.cronConfig.Expression = trimmed
	}
	return h
}

// Execute satisfies command.Commander[PublishScheduledCommand].Execute.
func (h *PublishScheduledHandler) Execute(ctx context.Context, msg PublishScheduledCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CronHandler satisfies command.CronCommand.
func (h *PublishScheduledHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), PublishScheduledCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *PublishScheduledHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

func (h *PublishScheduledHandler) CLIHandler() any {
	return h
}

func (h *PublishScheduledHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"publish-scheduled"},
		Group:       "pages",
		Description: "Publish revisions whose go live time has passed",
	}
}
