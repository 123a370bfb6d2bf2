package main

import (
	"io"
	"os"

	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx/compressx"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx/jsonx"
	"github.com/spf13/cobra"
)

func newDecodeCmd(_ *app) *cobra.Command {
	var (
		sortByIndex bool
		validate    bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode serving prepared statements and print them as canonical JSON",
		Long: `Decode reads a collection response, a JSON array or a single statement, gzipped or not,
from a file or from stdin ("-" or no argument). Unknown fields are dropped and malformed
known fields are left unset.

Example:
  stmtctl decode statements.json --sort`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			data, err = compressx.GzipDecompressIfNeeded(cmd.Context(), data)
			if err != nil {
				return err
			}

			stmts, err := servingstmt.DecodeList(data)
			if err != nil {
				return err
			}

			if validate {
				for i, stmt := range stmts {
					if err := stmt.Validate(); err != nil {
						return errorx.NewGeneralErrorWrapper(err, "statement %d is invalid", i)
					}
				}
			}

			if sortByIndex {
				servingstmt.SortByIndex(stmts)
			}

			return printCollection(cmd, stmts)
		},
	}

	cmd.Flags().BoolVar(&sortByIndex, "sort", false, "order statements by prepared statement index")
	cmd.Flags().BoolVar(&validate, "validate", false, "fail on statements with negative ids or indexes")

	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, errorx.NewGeneralErrorWrapper(err, "error reading %s", args[0])
	}

	return data, nil
}

func printCollection(cmd *cobra.Command, stmts []*servingstmt.ServingPreparedStatement) error {
	out, err := jsonx.MarshalIndent(servingstmt.NewCollection(stmts))
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)

	return err
}
