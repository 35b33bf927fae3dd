package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-lis/internal/commands"
	mediacmd "github.com/goliatone/go-lis/internal/commands/media"
	pagescmd "github.com/goliatone/go-lis/internal/commands/pages"
	"github.com/goliatone/go-lis/internal/di"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// ScheduleCron overrides Config.Schedule.Expression for the publishing sweep.
	ScheduleCron string
	// PruneReporter receives the outcome of every prune run.
	PruneReporter mediacmd.Reporter
}

// RegistrationResult captures the constructed handlers and dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands builds the archive command handlers from the
// container services and hands each one to the configured integrations.
// Integration failures are joined; handlers are still returned.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if container == nil {
		return result, nil
	}

	handlers := archiveHandlers(container, opts)
	if len(handlers) == 0 {
		return result, errors.New("commands: no services configured")
	}

	var errs []error
	for _, handler := range handlers {
		result.Handlers = append(result.Handlers, handler)
		errs = append(errs, opts.attach(handler, result)...)
	}
	return result, errors.Join(errs...)
}

func archiveHandlers(container *di.Container, opts RegistrationOptions) []any {
	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}
	cfg := container.Config
	collectors := container.Metrics()

	var handlers []any
	if service := container.PageService(); service != nil {
		logger := commands.CommandLogger(provider, "pages")
		handlers = append(handlers, pagescmd.NewPublishRevisionHandler(service, collectors, logger))
		if cfg.Features.Scheduling {
			expression := strings.TrimSpace(opts.ScheduleCron)
			if expression == "" {
				expression = cfg.Schedule.Expression
			}
			gates := pagescmd.FeatureGates{SchedulingEnabled: func() bool { return cfg.Features.Scheduling }}
			sweep := pagescmd.NewPublishScheduledHandler(service, collectors, logger, gates)
			handlers = append(handlers, sweep.WithCronExpression(expression))
		}
	}
	if service := container.MediaService(); service != nil {
		logger := commands.CommandLogger(provider, "media")
		handlers = append(handlers, mediacmd.NewPruneRenditionsHandler(service, collectors, logger, opts.PruneReporter))
	}
	return handlers
}

// attach registers handler with every integration set on opts.
func (opts RegistrationOptions) attach(handler any, result *RegistrationResult) []error {
	var errs []error
	if opts.Registry != nil {
		if err := opts.Registry.RegisterCommand(handler); err != nil {
			errs = append(errs, err)
		}
	}
	if opts.Dispatcher != nil {
		sub, err := opts.Dispatcher.RegisterCommand(handler)
		switch {
		case err != nil:
			errs = append(errs, err)
		case sub != nil:
			result.Subscriptions = append(result.Subscriptions, sub)
		}
	}
	if cron, ok := handler.(command.CronCommand); ok && opts.CronRegistrar != nil {
		if err := opts.CronRegistrar(cron.CronOptions(), cron.CronHandler()); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// GlobalDispatcher subscribes the archive handlers to the go-command
// process-wide dispatcher, retrying failed executions MaxRetries times.
type GlobalDispatcher struct {
	MaxRetries int
}

func (d GlobalDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	retries := runner.WithMaxRetries(d.MaxRetries)
	switch h := handler.(type) {
	case *pagescmd.PublishRevisionHandler:
		return dispatcher.SubscribeCommand(h, retries), nil
	case *pagescmd.PublishScheduledHandler:
		return dispatcher.SubscribeCommand(h, retries), nil
	case *mediacmd.PruneRenditionsHandler:
		return dispatcher.SubscribeCommand(h, retries), nil
	default:
		return nil, nil
	}
}
