// Command cyquery-lint parses, builds, rewrites, and validates a single
// query, reporting the first error it finds or confirmation that the
// query is well-formed.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cyquery/frontend/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cyquery-lint",
		Short:         "parse and validate property-graph queries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	return root
}

func newValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "validate a query read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline phase")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string, verbose bool) error {
	filename := "<stdin>"
	var src []byte
	var err error

	if len(args) == 1 {
		filename = args[0]
		src, err = os.ReadFile(filename)
	} else {
		src, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading query: %w", err)
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.ErrorLevel)
	}

	res, err := pipeline.Run(cmd.Context(), string(src), pipeline.Config{
		Filename: filename,
		Logger:   log,
	})
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), err.Error())
		return err
	}

	clauses := 0
	for _, sq := range res.Handle.Root().Single {
		clauses += len(sq.Clauses)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d clause(s), %d rewrite pass(es)\n", clauses, res.RewritePasses)
	return nil
}
