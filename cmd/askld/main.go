// Command askld runs the ASKL query engine: it connects to an index
// oracle (spec §4.3) and evaluates ASKL source read from stdin or a flag
// into the §6.1 JSON graph, or retrieves a raw source range (§6.2).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/askl/db"
	"github.com/oxhq/askl/internal/ast"
	"github.com/oxhq/askl/internal/config"
	"github.com/oxhq/askl/internal/execctx"
	"github.com/oxhq/askl/internal/graphasm"
	"github.com/oxhq/askl/internal/oracle"
	"github.com/oxhq/askl/internal/queryerr"
	"github.com/oxhq/askl/internal/solver"
	"github.com/oxhq/askl/internal/verb"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "askld",
		Short: "ASKL query engine",
	}
	root.AddCommand(newQueryCmd())
	root.AddCommand(newSourceCmd())
	return root
}

func newQueryCmd() *cobra.Command {
	var queryFlag string
	var path string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Evaluate an ASKL query and print the result graph as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := queryFlag
			if src == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read query source: %w", err)
				}
				src = string(data)
			}

			cfg := config.Load()
			result, qerr := runQuery(cfg, src, path)
			if qerr != nil {
				return printError(cmd, qerr)
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "ASKL source (reads stdin if omitted)")
	cmd.Flags().StringVar(&path, "path", "", "source path recorded in diagnostics")
	return cmd
}

func newSourceCmd() *cobra.Command {
	var fileID int
	var start, end int64

	cmd := &cobra.Command{
		Use:   "source",
		Short: "Retrieve a raw byte range from a file known to the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			gdb, err := db.Connect(cfg.DSN, cfg.Debug)
			if err != nil {
				return printError(cmd, queryerr.OracleFailure("could not connect to storage", err))
			}

			store := oracle.NewStore(gdb)
			contents, err := store.ReadSource(int32(fileID), start, end)
			if err != nil {
				return printError(cmd, queryerr.OracleFailure("source range retrieval failed", err))
			}

			fmt.Fprint(cmd.OutOrStdout(), contents)
			return nil
		},
	}

	cmd.Flags().IntVar(&fileID, "file", 0, "file id")
	cmd.Flags().Int64Var(&start, "start", 0, "start byte offset (inclusive)")
	cmd.Flags().Int64Var(&end, "end", 0, "end byte offset (exclusive)")
	return cmd
}

// runQuery runs the full pipeline: parse, build commands, wire the
// execution context, solve, enumerate edges, assemble the result graph.
func runQuery(cfg *config.Config, src, path string) (*graphasm.Result, *queryerr.Error) {
	tree, err := ast.Parse(src)
	if err != nil {
		return nil, ast.ToQueryError(err, path)
	}

	commands, err := verb.BuildCommands(tree, path)
	if err != nil {
		if qe, ok := err.(*queryerr.Error); ok {
			return nil, qe
		}
		return nil, queryerr.Parse(queryerr.CodeBadArgumentShape, err.Error(), queryerr.Location{Path: path})
	}

	ec, err := execctx.Build(tree, commands, path)
	if err != nil {
		if qe, ok := err.(*queryerr.Error); ok {
			return nil, qe
		}
		return nil, queryerr.StaticSolve(queryerr.CodeIllegalPosition, err.Error(), queryerr.Location{Path: path})
	}

	gdb, err := db.Connect(cfg.DSN, cfg.Debug)
	if err != nil {
		return nil, queryerr.OracleFailure("could not connect to storage", err)
	}
	store := oracle.NewStore(gdb)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()

	if err := solver.Solve(ctx, store, ec); err != nil {
		if qe, ok := err.(*queryerr.Error); ok {
			return nil, qe
		}
		return nil, queryerr.OracleFailure("solve failed", err)
	}

	edges, err := solver.EnumerateEdges(store, ec)
	if err != nil {
		return nil, queryerr.OracleFailure("edge enumeration failed", err)
	}
	return graphasm.Assemble(ec, edges, nil), nil
}

func printJSON(cmd *cobra.Command, result *graphasm.Result) error {
	body, err := result.JSON()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return nil
}

func printError(cmd *cobra.Command, qerr *queryerr.Error) error {
	body, _ := json.Marshal(qerr)
	fmt.Fprintln(cmd.ErrOrStderr(), string(body))
	return fmt.Errorf("%s", qerr.Message)
}
