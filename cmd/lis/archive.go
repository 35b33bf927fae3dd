package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-lis/commands"
	mediacmd "github.com/goliatone/go-lis/internal/commands/media"
	pagescmd "github.com/goliatone/go-lis/internal/commands/pages"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/spf13/cobra"
)

func (a *app) publishScheduledCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish-scheduled",
		Short: "Publish revisions whose go live time has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			if !module.Container().Config.Features.Scheduling {
				return pagescmd.ErrSchedulingDisabled
			}

			registration, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
				Dispatcher: commands.GlobalDispatcher{},
			})
			if err != nil {
				return err
			}
			defer registration.Unsubscribe()

			return dispatcher.Dispatch(ctx, pagescmd.PublishScheduledCommand{})
		},
	}
}

func (a *app) pruneRenditionsCmd() *cobra.Command {
	var all, dryRun bool

	cmd := &cobra.Command{
		Use:   "prune-renditions",
		Short: "Remove renditions of deleted images and orphaned rendition files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			out := cmd.OutOrStdout()
			registration, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
				Dispatcher: commands.GlobalDispatcher{},
				PruneReporter: func(result *media.PruneResult) {
					printPruneResult(out, result)
				},
			})
			if err != nil {
				return err
			}
			defer registration.Unsubscribe()

			return dispatcher.Dispatch(ctx, mediacmd.PruneRenditionsCommand{All: all, DryRun: dryRun})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every rendition, they are regenerated on demand")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be removed without removing it")
	return cmd
}

func printPruneResult(w io.Writer, result *media.PruneResult) {
	if result == nil {
		return
	}
	verb := "Removed"
	if result.DryRun {
		verb = "Would remove"
	}
	for _, rendition := range result.Renditions {
		fmt.Fprintf(w, "  rendition %d (image %d, %s)\n", rendition.ID, rendition.ImageID, rendition.FilterSpec)
	}
	for _, file := range result.Files {
		fmt.Fprintf(w, "  file %s\n", file)
	}
	fmt.Fprintf(w, "%s %d renditions and %d files\n", verb, len(result.Renditions), len(result.Files))
}

func (a *app) signImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign-image <image-id> <filter-spec>",
		Short: "Print the signed URL of an image rendition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid image id %q", args[0])
			}

			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			url, err := module.Media().URL(ctx, imageID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}
