package session

import (
	"testing"
	"time"

	"github.com/BerylCAtieno/rfm-workbench/internal/dataset"
	"github.com/BerylCAtieno/rfm-workbench/internal/models"
)

func TestStore_GetCreatesAndReuses(t *testing.T) {
	st := NewStore(time.Minute)
	s, created := st.Get("")
	if !created || s.ID == "" {
		t.Fatalf("expected new session, got %+v created=%t", s, created)
	}
	again, created := st.Get(s.ID)
	if created || again != s {
		t.Fatal("expected the same session back")
	}
	other, _ := st.Get("unknown")
	if other == s {
		t.Fatal("unknown id returned an existing session")
	}
	if st.Len() != 2 {
		t.Fatalf("len = %d", st.Len())
	}
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	st := NewStore(time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return clock }

	s, _ := st.Get("")
	clock = clock.Add(30 * time.Second)
	if _, created := st.Get(s.ID); created {
		t.Fatal("session expired too early")
	}
	clock = clock.Add(2 * time.Minute)
	fresh, created := st.Get(s.ID)
	if !created || fresh.ID == s.ID {
		t.Fatal("idle session was not evicted")
	}
	if st.Len() != 1 {
		t.Fatalf("len = %d", st.Len())
	}
}

func TestSession_SetDatasetClearsReport(t *testing.T) {
	s := &Session{Report: []models.CustomerRFM{{CustomerID: "1"}}}
	s.SetDataset(&dataset.Table{Columns: []string{"a"}})
	if s.Report != nil {
		t.Fatal("report should be cleared")
	}
	if s.Dataset == nil {
		t.Fatal("dataset not set")
	}
}

func TestStore_Delete(t *testing.T) {
	st := NewStore(time.Minute)
	s, _ := st.Get("")
	st.Delete(s.ID)
	if st.Len() != 0 {
		t.Fatalf("len = %d", st.Len())
	}
}
