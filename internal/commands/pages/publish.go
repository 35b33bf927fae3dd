package pagescmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/commands"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/pkg/interfaces"
	"github.com/google/uuid"
)

const publishRevisionMessageType = "lis.pages.publish_revision"

// PublishRevisionCommand publishes a stored revision. Revisions with a
// future go live time are scheduled instead.
type PublishRevisionCommand struct {
	RevisionID uuid.UUID  `json:"revision_id"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	Groups     []string   `json:"groups,omitempty"`
}

// Type implements command.Message.
func (PublishRevisionCommand) Type() string { return publishRevisionMessageType }

func (m PublishRevisionCommand) Validate() error {
	errs := validation.Errors{}
	if m.RevisionID == uuid.Nil {
		errs["revision_id"] = validation.NewError("lis.pages.publish.revision_id_required", "revision_id is required")
	}
	if m.ActorID != nil && *m.ActorID == uuid.Nil {
		errs["actor_id"] = validation.NewError("lis.pages.publish.actor_id_invalid", "actor_id must be a valid identifier when provided")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishRevisionHandler publishes revisions through the page service.
type PublishRevisionHandler struct {
	inner *commands.Handler[PublishRevisionCommand]
}

func NewPublishRevisionHandler(service pages.Service, collectors *metrics.Collectors, logger interfaces.Logger, opts ...commands.HandlerOption[PublishRevisionCommand]) *PublishRevisionHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg PublishRevisionCommand) error {
		actor := pages.Actor{Groups: msg.Groups}
		if msg.ActorID != nil {
			actor.ID = *msg.ActorID
		}
		result, err := service.Publish(ctx, pages.PublishRequest{RevisionID: msg.RevisionID, Actor: actor})
		if err != nil {
			return err
		}
		if !result.Scheduled {
			collectors.Published(result.Page.Kind)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishRevisionCommand]{
		commands.WithLogger[PublishRevisionCommand](baseLogger),
		commands.WithOperation[PublishRevisionCommand]("pages.publish"),
		commands.WithMessageFields(func(msg PublishRevisionCommand) map[string]any {
			fields := map[string]any{"revision_id": msg.RevisionID}
			if msg.ActorID != nil {
				fields["actor_id"] = *msg.ActorID
			}
			return fields
		}),
		commands.WithMetrics[PublishRevisionCommand](collectors),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishRevisionHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishRevisionCommand].Execute.
func (h *PublishRevisionHandler) Execute(ctx context.Context, msg PublishRevisionCommand) error {
	return h.inner.Execute(ctx, msg)
}
