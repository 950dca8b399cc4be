package worker

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"stokvel/internal/amqp"
	"stokvel/internal/core"
	"stokvel/internal/metrics"
	"stokvel/internal/sheets/memory"
	"stokvel/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedGoal(t *testing.T, repo *storage.SQLiteRepository) {
	t.Helper()
	g := core.Goal{
		ID:      1,
		Name:    "December Trip",
		Target:  core.Money{Cents: 100000},
		Current: core.Money{Cents: 40000},
		Status:  core.StatusActive,
		Participants: []core.Participant{
			{Name: "Thandi"},
		},
		Contributions: []core.Contribution{
			{ID: 1, Name: "Thandi", Amount: core.Money{Cents: 40000}, Date: core.NewDate(2026, 8, 1)},
		},
		CreatedDate: core.NewDate(2026, 7, 1),
	}
	if err := repo.ReplaceGoal(context.Background(), g); err != nil {
		t.Fatalf("ReplaceGoal() error = %v", err)
	}
}

func TestHandleSyncMessage(t *testing.T) {
	repo := newTestStorage(t)
	seedGoal(t, repo)
	sink := memory.New()
	w := NewExportWorker(repo, sink, 10)

	msg := &amqp.ContributionSyncMessage{GoalID: 1, ContributionID: 1}
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	rows := sink.Rows()
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.GoalName != "December Trip" || row.Contributor != "Thandi" {
		t.Errorf("row = %+v", row)
	}
	if row.Amount.Cents != 40000 || row.Date.ISO() != "2026-08-01" {
		t.Errorf("row amount/date = %d/%q", row.Amount.Cents, row.Date.ISO())
	}

	// Exporting clears the pending queue.
	pending, err := repo.GetPendingExportContributions(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingExportContributions() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d, want 0", len(pending))
	}
}

func TestHandleSyncMessageUnknownContribution(t *testing.T) {
	repo := newTestStorage(t)
	seedGoal(t, repo)
	w := NewExportWorker(repo, memory.New(), 10)

	msg := &amqp.ContributionSyncMessage{GoalID: 1, ContributionID: 99}
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Error("HandleSyncMessage() accepted an unknown contribution")
	}
}

type failingSink struct{}

func (failingSink) AppendRow(context.Context, core.ExportRow) (string, error) {
	return "", errors.New("sheets unavailable")
}

func TestExportFailureMarksError(t *testing.T) {
	repo := newTestStorage(t)
	seedGoal(t, repo)
	w := NewExportWorker(repo, failingSink{}, 10)

	msg := &amqp.ContributionSyncMessage{GoalID: 1, ContributionID: 1}
	if err := w.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("HandleSyncMessage() error = nil, want sink failure")
	}

	// The contribution is out of the pending queue so the sweep does not
	// retry it endlessly.
	pending, err := repo.GetPendingExportContributions(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetPendingExportContributions() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d, want 0 after error mark", len(pending))
	}
}

// counterValue scrapes the shared registry for a plain counter.
func counterValue(t *testing.T, name string) float64 {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, name+" ") {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimPrefix(line, name+" "), 64)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
		return v
	}
	return 0
}

func TestExportMetricsRecorded(t *testing.T) {
	repo := newTestStorage(t)
	seedGoal(t, repo)
	w := NewExportWorker(repo, memory.New(), 10)

	rowsBefore := counterValue(t, "stokvel_engine_export_rows_appended_total")
	if err := w.HandleSyncMessage(context.Background(), &amqp.ContributionSyncMessage{GoalID: 1, ContributionID: 1}); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if got := counterValue(t, "stokvel_engine_export_rows_appended_total"); got != rowsBefore+1 {
		t.Errorf("export rows counter = %v, want %v", got, rowsBefore+1)
	}

	failing := NewExportWorker(repo, failingSink{}, 10)
	seedSecondContribution(t, repo)

	errsBefore := counterValue(t, "stokvel_engine_export_errors_total")
	if err := failing.HandleSyncMessage(context.Background(), &amqp.ContributionSyncMessage{GoalID: 1, ContributionID: 2}); err == nil {
		t.Fatal("HandleSyncMessage() error = nil, want sink failure")
	}
	if got := counterValue(t, "stokvel_engine_export_errors_total"); got != errsBefore+1 {
		t.Errorf("export errors counter = %v, want %v", got, errsBefore+1)
	}
}

func seedSecondContribution(t *testing.T, repo *storage.SQLiteRepository) {
	t.Helper()
	g, err := repo.GetGoal(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	g, _, err = core.Apply(g, core.ProposedContribution{
		Name:   "Sipho",
		Amount: core.Money{Cents: 10000},
		Date:   core.NewDate(2026, 8, 15),
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := repo.ReplaceGoal(context.Background(), g); err != nil {
		t.Fatalf("ReplaceGoal() error = %v", err)
	}
}

func TestStartupExportCheck(t *testing.T) {
	repo := newTestStorage(t)
	seedGoal(t, repo)
	sink := memory.New()
	w := NewExportWorker(repo, sink, 10)

	if err := w.StartupExportCheck(context.Background()); err != nil {
		t.Fatalf("StartupExportCheck() error = %v", err)
	}
	if len(sink.Rows()) != 1 {
		t.Errorf("len(rows) = %d, want 1", len(sink.Rows()))
	}

	// A second sweep finds nothing to do.
	if err := w.StartupExportCheck(context.Background()); err != nil {
		t.Fatalf("StartupExportCheck() second run error = %v", err)
	}
	if len(sink.Rows()) != 1 {
		t.Errorf("len(rows) after second sweep = %d, want still 1", len(sink.Rows()))
	}
}
