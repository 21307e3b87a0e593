package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"salary-import/internal/salary"
	genexcel "salary-import/internal/service/generate-excel"
)

type summaryReport struct {
	Total            int `yaml:"total" json:"total"`
	OK               int `yaml:"ok" json:"ok"`
	UnmatchedWorkers int `yaml:"unmatched_workers" json:"unmatched_workers"`
	UnmatchedPrices  int `yaml:"unmatched_prices" json:"unmatched_prices"`
	Pending          int `yaml:"pending" json:"pending"`
}

type rowReport struct {
	Row     int    `yaml:"row" json:"row"`
	Worker  string `yaml:"worker" json:"worker"`
	Process string `yaml:"process" json:"process"`
	Spec    string `yaml:"spec" json:"spec"`
	Status  string `yaml:"status" json:"status"`
}

type checkReport struct {
	File      string        `yaml:"file" json:"file"`
	ImportID  string        `yaml:"import_id" json:"import_id"`
	Summary   summaryReport `yaml:"summary" json:"summary"`
	Warnings  []string      `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Unmatched []rowReport   `yaml:"unmatched,omitempty" json:"unmatched,omitempty"`
}

// reconciled is a parsed spreadsheet after both check passes.
type reconciled struct {
	file     string
	importID string
	sheet    *salary.Sheet
	ref      *salary.Reference
	summary  salary.Summary
}

func (a *app) reconcileFile(ctx context.Context, path string) (*reconciled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sheet, err := salary.Parse(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return nil, err
	}

	ref := salary.NewReferenceCache(a.log, a.client).Get(ctx)

	return &reconciled{
		file:     filepath.Base(path),
		importID: salary.ImportID(data),
		sheet:    sheet,
		ref:      ref,
		summary:  salary.Reconcile(sheet.Rows, ref),
	}, nil
}

func (r *reconciled) report() checkReport {
	rep := checkReport{
		File:     r.file,
		ImportID: r.importID,
		Summary: summaryReport{
			Total:            r.summary.Total,
			OK:               r.summary.OK,
			UnmatchedWorkers: r.summary.UnmatchedWorkers,
			UnmatchedPrices:  r.summary.UnmatchedPrices,
			Pending:          r.summary.Pending,
		},
		Warnings: r.ref.Warnings,
	}

	for _, row := range r.sheet.Rows {
		if row.Status() == salary.StatusOK {
			continue
		}
		rep.Unmatched = append(rep.Unmatched, rowReport{
			Row:     row.Index,
			Worker:  row.WorkerName,
			Process: row.ProcessName,
			Spec:    row.SpecName,
			Status:  string(row.Status()),
		})
	}

	return rep
}

func newCheckCmd(a *app) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Reconcile a spreadsheet against the backend without submitting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}

			r, err := a.reconcileFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if exportPath != "" {
				data, err := genexcel.ExportSession(&salary.SessionView{
					FileName: r.file,
					Columns:  r.sheet.Columns,
					Rows:     r.sheet.Rows,
				})
				if err != nil {
					return err
				}
				if err := os.WriteFile(exportPath, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "annotated workbook written to %s\n", exportPath)
			}

			return a.print(cmd.OutOrStdout(), r.report())
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write an annotated workbook to this path")

	return cmd
}
