package task

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task_status.json")
	ledger := NewLedger(path)

	t.Run("missing document reads empty", func(t *testing.T) {
		if got := ledger.All(); len(got) != 0 {
			t.Errorf("All() = %v, want empty", got)
		}
	})

	t.Run("set and read back", func(t *testing.T) {
		outcome := Outcome{Status: "ok", ExitCode: 0, LastRunID: "1-ab", StartedAt: "a", EndedAt: "b"}
		if err := ledger.Set("00_doctor", outcome); err != nil {
			t.Fatalf("set: %v", err)
		}
		got := ledger.All()
		if got["00_doctor"] != outcome {
			t.Errorf("All()[00_doctor] = %+v, want %+v", got["00_doctor"], outcome)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		if err := ledger.Set("00_doctor", Outcome{Status: "error", ExitCode: 3}); err != nil {
			t.Fatalf("set: %v", err)
		}
		if got := ledger.All()["00_doctor"]; got.Status != "error" || got.ExitCode != 3 {
			t.Errorf("entry = %+v, want error/3", got)
		}
	})

	t.Run("reset reports removed keys", func(t *testing.T) {
		ledger.Set("prereqs", Outcome{Status: "ok"})
		removed, err := ledger.Reset("00_doctor", "doctor", "prereqs")
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		if len(removed) != 2 || removed[0] != "00_doctor" || removed[1] != "prereqs" {
			t.Errorf("removed = %v, want [00_doctor prereqs]", removed)
		}
		if got := ledger.All(); len(got) != 0 {
			t.Errorf("ledger not empty after reset: %v", got)
		}
	})

	t.Run("reset of absent keys is a no-op", func(t *testing.T) {
		removed, err := ledger.Reset("never_ran")
		if err != nil {
			t.Fatalf("reset: %v", err)
		}
		if removed != nil {
			t.Errorf("removed = %v, want nil", removed)
		}
	})
}

func TestLedgerCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task_status.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	ledger := NewLedger(path)

	if got := ledger.All(); len(got) != 0 {
		t.Errorf("corrupt document should read empty, got %v", got)
	}
	if err := ledger.Set("doctor", Outcome{Status: "ok"}); err != nil {
		t.Fatalf("set over corrupt document: %v", err)
	}
	if got := ledger.All(); len(got) != 1 {
		t.Errorf("All() = %v, want one entry", got)
	}
}
