package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	genexcel "salary-import/internal/service/generate-excel"
	"salary-import/internal/storage"
)

type workerWages struct {
	Worker string            `yaml:"worker" json:"worker"`
	ByDate map[string]string `yaml:"by_date" json:"by_date"`
	Total  string            `yaml:"total" json:"total"`
}

type wageReport struct {
	From    string        `yaml:"from" json:"from"`
	To      string        `yaml:"to" json:"to"`
	Dates   []string      `yaml:"dates" json:"dates"`
	Workers []workerWages `yaml:"workers" json:"workers"`
}

func newReportCmd(a *app) *cobra.Command {
	var (
		from, to  string
		workerID  int64
		processID int64
		layout    string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise stored wage logs, or write them as a workbook with --out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}

			now := time.Now()
			if from == "" {
				from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(time.DateOnly)
			}
			if to == "" {
				to = now.Format(time.DateOnly)
			}
			for _, d := range []string{from, to} {
				if _, err := time.Parse(time.DateOnly, d); err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)
				}
			}

			filter := storage.WageLogFilter{
				StartDate: from,
				EndDate:   to,
				WorkerID:  workerID,
				ProcessID: processID,
			}

			if out != "" {
				l, err := genexcel.ParseLayout(layout)
				if err != nil {
					return err
				}
				data, err := genexcel.NewGenerateService(a.client).GenerateWageReport(cmd.Context(), filter, l)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s written to %s\n", genexcel.FileName(l, filter), out)
				return nil
			}

			logs, err := a.client.QueryWageLogs(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				return errors.New("no wage logs for the selected range")
			}

			dates, rows := genexcel.Pivot(logs)
			rep := wageReport{From: from, To: to, Dates: dates}
			for _, r := range rows {
				w := workerWages{Worker: r.Worker, ByDate: make(map[string]string, len(r.ByDate)), Total: r.Total.StringFixed(2)}
				for d, v := range r.ByDate {
					w.ByDate[d] = v.StringFixed(2)
				}
				rep.Workers = append(rep.Workers, w)
			}

			return a.print(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (default first day of this month)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (default today)")
	cmd.Flags().Int64Var(&workerID, "worker-id", 0, "only this worker")
	cmd.Flags().Int64Var(&processID, "process-id", 0, "only this process")
	cmd.Flags().StringVar(&layout, "layout", string(genexcel.LayoutSummary), "workbook layout: summary, daily or raw")
	cmd.Flags().StringVar(&out, "out", "", "write a workbook to this path instead of printing")

	return cmd
}
