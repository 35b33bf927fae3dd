package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-lis/internal/migrations"
	"github.com/spf13/cobra"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			applied, err := module.Migrate(ctx)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", name)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			runner := migrations.NewRunner(module.Container().DB(), module.Logger("lis.migrations"))
			rolledBack, err := runner.Down(ctx)
			if err != nil {
				return err
			}
			if len(rolledBack) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back")
				return nil
			}
			for _, name := range rolledBack {
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %s\n", name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			runner := migrations.NewRunner(module.Container().DB(), module.Logger("lis.migrations"))
			pending, err := runner.Pending(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", len(pending))
			for _, name := range pending {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
			return nil
		},
	})

	return cmd
}

func (a *app) createEditorCmd() *cobra.Command {
	var (
		password string
		groups   []string
	)

	cmd := &cobra.Command{
		Use:   "create-editor <username>",
		Short: "Create an editor account",
		Long:  "Create an editor account. Without --password the password is read from the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = line
			}

			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			editor, err := module.Container().Editors().Create(ctx, args[0], password, groups...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created editor %s (%s) in %s\n",
				editor.Username, editor.ID, strings.Join(editor.Groups, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "account password, at least 8 characters")
	cmd.Flags().StringSliceVar(&groups, "group", nil, "group membership: ADMIN, EDITOR or READONLY")
	return cmd
}

func (a *app) createAPIKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-api-key <name>",
		Short: "Issue an API key; the raw key is printed once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			raw, key, err := module.Container().APIKeys().Issue(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Issued key %q (%s)\n%s\n", key.Name, key.ID, raw)
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no input")
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}
