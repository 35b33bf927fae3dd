package mediacmd

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-lis/internal/commands"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

const pruneRenditionsMessageType = "lis.media.renditions.prune"

// PruneRenditionsCommand removes stale renditions. With All every rendition
// goes and is regenerated on demand.
type PruneRenditionsCommand struct {
	All    bool `json:"all,omitempty"`
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (PruneRenditionsCommand) Type() string { return pruneRenditionsMessageType }

func (PruneRenditionsCommand) Validate() error { return nil }

// Reporter receives the outcome of a prune run.
type Reporter func(*media.PruneResult)

// PruneRenditionsHandler prunes renditions through the media service.
type PruneRenditionsHandler struct {
	inner *commands.Handler[PruneRenditionsCommand]
}

func NewPruneRenditionsHandler(service media.Service, collectors *metrics.Collectors, logger interfaces.Logger, report Reporter, opts ...commands.HandlerOption[PruneRenditionsCommand]) *PruneRenditionsHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg PruneRenditionsCommand) error {
		result, err := service.PruneRenditions(ctx, media.PruneOptions{All: msg.All, DryRun: msg.DryRun})
		if err != nil {
			return err
		}
		if !result.DryRun {
			collectors.Pruned(len(result.Renditions))
		}
		logging.WithFields(baseLogger, map[string]any{
			"renditions": len(result.Renditions),
			"files":      len(result.Files),
			"dry_run":    result.DryRun,
		}).Info("media.command.prune.completed")
		if report != nil {
			report(result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PruneRenditionsCommand]{
		commands.WithLogger[PruneRenditionsCommand](baseLogger),
		commands.WithOperation[PruneRenditionsCommand]("media.renditions.prune"),
		commands.WithMessageFields(func(msg PruneRenditionsCommand) map[string]any {
			return map[string]any{"all": msg.All, "dry_run": msg.DryRun}
		}),
		commands.WithTimeout[PruneRenditionsCommand](0),
		commands.WithMetrics[PruneRenditionsCommand](collectors),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PruneRenditionsHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PruneRenditionsCommand].Execute.
func (h *PruneRenditionsHandler) Execute(ctx context.Context, msg PruneRenditionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *PruneRenditionsHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the prune-renditions command.
func (h *PruneRenditionsHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"prune-renditions"},
		Group:       "media",
		Description: "Delete orphaned renditions or, with --all, every rendition",
	}
}
