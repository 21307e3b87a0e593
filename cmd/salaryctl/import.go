package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"salary-import/internal/salary"
	"salary-import/internal/storage/journal"
)

type importReport struct {
	File          string `yaml:"file" json:"file"`
	ImportID      string `yaml:"import_id" json:"import_id"`
	Total         int    `yaml:"total" json:"total"`
	Submitted     int    `yaml:"submitted" json:"submitted"`
	Chunks        int    `yaml:"chunks" json:"chunks"`
	SkippedChunks int    `yaml:"skipped_chunks" json:"skipped_chunks"`
}

func newImportCmd(a *app) *cobra.Command {
	var (
		batchSize int
		restart   bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Reconcile a spreadsheet and submit it as wage logs",
		Long: `import runs both check passes and, when every row is matched, submits the
rows in sequential chunks. Acknowledged rows are recorded in the journal so
running the same file again sends only the rows not yet acknowledged, even
with a different --batch-size. A process-local memory journal cannot outlive
the run, so when journal.driver is memory the file at journal.path is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()

			r, err := a.reconcileFile(ctx, args[0])
			if err != nil {
				return err
			}
			if r.summary.OK != r.summary.Total {
				if err := a.print(cmd.OutOrStdout(), r.report()); err != nil {
					return err
				}
				return fmt.Errorf("%s: %w", r.file, salary.ErrNotReconciled)
			}

			jcfg := *a.cfg
			if jcfg.Journal.Driver == "" || jcfg.Journal.Driver == journal.DriverMemory {
				jcfg.Journal.Driver = journal.DriverFile
				fmt.Fprintf(cmd.ErrOrStderr(), "journal: recording acknowledged rows in %s\n", jcfg.Journal.Path)
			}

			chunks, closeJournal, err := journal.Open(jcfg)
			if err != nil {
				return err
			}
			defer closeJournal()

			if restart {
				if err := chunks.ForgetImport(ctx, r.importID); err != nil {
					return err
				}
			}

			if batchSize <= 0 {
				batchSize = a.cfg.Import.BatchSize
			}

			stderr := cmd.ErrOrStderr()
			submitter := salary.NewSubmitter(a.log, a.client, chunks, batchSize)

			res, err := submitter.Submit(ctx, r.importID, r.sheet.Rows, func(p salary.Progress) {
				fmt.Fprintf(stderr, "chunk %d/%d: %d/%d rows\n", p.Chunk, p.Chunks, p.Submitted, p.Total)
			})
			if err != nil {
				return fmt.Errorf("submitted %d of %d rows: %w", res.Submitted, res.Total, err)
			}

			return a.print(cmd.OutOrStdout(), importReport{
				File:          r.file,
				ImportID:      res.ImportID,
				Total:         res.Total,
				Submitted:     res.Submitted,
				Chunks:        res.Chunks,
				SkippedChunks: res.SkippedChunks,
			})
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per chunk (default import.batch_size)")
	cmd.Flags().BoolVar(&restart, "restart", false, "forget acknowledged chunks and send everything again")

	return cmd
}
