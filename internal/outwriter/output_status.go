package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"

	"github.com/olekukonko/tablewriter"
)

// StatusReport combines store health with the sync state of every repository.
type StatusReport struct {
	Store        schema.StoreStatus `json:"store"`
	Repositories []schema.SyncState `json:"repositories"`
}

// WriteStatus outputs a status report, dispatching based on the output format configured.
func WriteStatus(report StatusReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, syncStateCSVHeader, func(cw *csv.Writer) error {
				return writeSyncStatesCSV(cw, report.Repositories)
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusText(w, report)
		}, "Wrote table")
	}
}

var syncStateCSVHeader = []string{
	"repository",
	"status",
	"last_sync_at",
	"started_at",
	"activities_processed",
	"resumable",
	"error",
}

func writeStatusText(w io.Writer, report StatusReport) error {
	s := report.Store
	if _, err := fmt.Fprintf(w, "Store: %s (connected: %t)\n", s.Backend, s.Connected); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Activities: %d  Contributors: %d  Snapshots: %d\n", s.Activities, s.Contributors, s.Snapshots); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Last activity: %s  Last snapshot: %s\n", formatTime(s.LastActivityAt), formatTime(s.LastSnapshotAt)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repository", "Status", "Last Sync", "Processed", "Resumable", "Error"})
	data := make([][]string, 0, len(report.Repositories))
	for _, st := range report.Repositories {
		data = append(data, []string{
			st.Repository,
			contract.GetColorSyncStatus(st.Status),
			formatTimePtr(st.LastSyncAt),
			strconv.Itoa(st.ActivitiesProcessed),
			strconv.FormatBool(st.Cursor != ""),
			contract.TruncateText(st.Error, 60),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSyncStatesCSV(w *csv.Writer, states []schema.SyncState) error {
	for _, st := range states {
		rec := []string{
			st.Repository,
			string(st.Status),
			formatTimePtr(st.LastSyncAt),
			formatTimePtr(st.StartedAt),
			strconv.Itoa(st.ActivitiesProcessed),
			strconv.FormatBool(st.Cursor != ""),
			st.Error,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteRun outputs the per-repository outcome of one sync run.
func WriteRun(summary schema.RunSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"run_id", "repository", "status", "skipped", "activities", "discarded", "contributors", "duration_ms", "error"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range summary.Results {
					rec := []string{
						summary.RunID,
						r.Repository,
						string(r.Status),
						strconv.FormatBool(r.Skipped),
						strconv.Itoa(r.ActivitiesProcessed),
						strconv.Itoa(r.Discarded),
						strconv.Itoa(r.Contributors),
						strconv.FormatInt(r.DurationMs, 10),
						r.Error,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunText(w, summary, duration)
		}, "Wrote table")
	}
}

func writeRunText(w io.Writer, summary schema.RunSummary, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Repository", "Status", "Activities", "Discarded", "Contributors", "Error"})
	data := make([][]string, 0, len(summary.Results))
	for _, r := range summary.Results {
		status := contract.GetColorSyncStatus(r.Status)
		if r.Skipped {
			status += " (skipped)"
		}
		data = append(data, []string{
			r.Repository,
			status,
			strconv.Itoa(r.ActivitiesProcessed),
			strconv.Itoa(r.Discarded),
			strconv.Itoa(r.Contributors),
			contract.TruncateText(r.Error, 60),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Run %s finished in %v: %d repositories, %d failed\n",
		summary.RunID, duration.Round(time.Millisecond), len(summary.Results), summary.Failed())
	return err
}
