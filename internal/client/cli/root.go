package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/qaforum/internal/buildinfo"
	"github.com/dmitrijs2005/qaforum/internal/client/config"
	"github.com/dmitrijs2005/qaforum/internal/common"
	"github.com/dmitrijs2005/qaforum/internal/logging"
	"github.com/spf13/cobra"
)

// Root runs the interactive loop until the user exits.
func (a *App) Root(ctx context.Context) {
	a.println("Type 'help' for commands.")
	runREPL(ctx, a, a.status, a.reader)
}

// NewRootCommand builds the command tree. Without a subcommand the
// interactive loop starts. Errors are returned unprinted; callers show them
// with UserMessage.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var flags *config.Flags

	withApp := func(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		cfg, err := flags.Load()
		if err != nil {
			return err
		}
		log, err := logging.New(cfg.LogFormat, cfg.LogLevel, errOut)
		if err != nil {
			return err
		}

		app, err := NewApp(ctx, cfg, log, in, out)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				log.Error(ctx, "close failed", "error", err)
			}
		}()

		if err := app.Start(ctx); err != nil {
			return err
		}
		return fn(ctx, app)
	}

	root := &cobra.Command{
		Use:           common.AppName,
		Short:         "Terminal client for the Q&A forum",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buildinfo.PrintBanner(out, common.AppName)
			return withApp(cmd, func(ctx context.Context, a *App) error {
				a.Root(ctx)
				return nil
			})
		},
	}
	flags = config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "questions",
			Short: "Print all questions, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd, func(ctx context.Context, a *App) error {
					return dispatch(ctx, a, commands["list"], "")
				})
			},
		},
		&cobra.Command{
			Use:   "search [text]",
			Short: "Filter questions; without text opens the live search view",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *App) error {
					return dispatch(ctx, a, commands["search"], strings.Join(args, " "))
				})
			},
		},
		&cobra.Command{
			Use:   "show <question id>",
			Short: "Print a question and its answers",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, func(ctx context.Context, a *App) error {
					return dispatch(ctx, a, commands["show"], args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(out)
			},
		},
	)
	return root
}

// Execute runs the command tree with the process's terminal and returns the
// exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := NewRootCommand(in, out, errOut)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, UserMessage(err))
		return 1
	}
	return 0
}
