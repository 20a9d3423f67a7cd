package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fair-invitations/internal/models"
	"fair-invitations/internal/storage"
)

func newStorage(t *testing.T) (*storage.Storage, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "guests.json")
	s, err := storage.NewStorage(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return s, path
}

func sampleGuests() []models.GuestRecord {
	return []models.GuestRecord{
		{Row: 1, FullName: "Jan", Email: "jan@example.com", Status: models.StatusPending},
		{Row: 2, Email: "bad", Status: models.StatusError, Error: "Nieprawidłowy e-mail"},
		{Row: 3, FullName: "Anna", Email: "anna@firma.pl", Status: models.StatusPending},
	}
}

func TestStorageReplaceAndReload(t *testing.T) {
	t.Parallel()

	s, path := newStorage(t)
	if err := s.ReplaceGuests("expo-1", "guests.csv", sampleGuests()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := s.UpdateStatus(1, models.StatusSuccess, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	reloaded, err := storage.NewStorage(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	session := reloaded.Session()
	if session.ExhibitionID != "expo-1" || session.Source != "guests.csv" {
		t.Fatalf("unexpected session metadata: %+v", session)
	}
	if len(session.Guests) != 3 {
		t.Fatalf("expected 3 guests, got %d", len(session.Guests))
	}
	g, err := reloaded.GetGuest(1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if g.Status != models.StatusSuccess {
		t.Fatalf("expected success status, got %s", g.Status)
	}
}

func TestStorageUpdateStatusUnknownRow(t *testing.T) {
	t.Parallel()

	s, _ := newStorage(t)
	if err := s.UpdateStatus(42, models.StatusSuccess, ""); !errors.Is(err, storage.ErrGuestNotFound) {
		t.Fatalf("expected ErrGuestNotFound, got %v", err)
	}
}

func TestStorageUpdateStatusClearsErrorOutsideErrorState(t *testing.T) {
	t.Parallel()

	s, _ := newStorage(t)
	if err := s.ReplaceGuests("expo-1", "", sampleGuests()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := s.UpdateStatus(2, models.StatusSending, "ignored"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	g, _ := s.GetGuest(2)
	if g.Error != "" {
		t.Fatalf("expected error to be cleared, got %q", g.Error)
	}
}

func TestStorageResetFailedKeepsInvalidRows(t *testing.T) {
	t.Parallel()

	s, _ := newStorage(t)
	guests := sampleGuests()
	guests[2].Status = models.StatusError
	guests[2].Error = "Błąd wysyłki"
	if err := s.ReplaceGuests("expo-1", "", guests); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	n, err := s.ResetFailed("Nieprawidłowy e-mail")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 reset, got %d", n)
	}
	if got := len(s.GetGuestsByStatus(models.StatusPending)); got != 2 {
		t.Fatalf("expected 2 pending guests, got %d", got)
	}
	if got := s.GetGuestsByStatus(models.StatusError); len(got) != 1 || got[0].Row != 2 {
		t.Fatalf("expected invalid row to stay in error, got %+v", got)
	}
}

func TestStorageLoadMarksInterruptedSends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "guests.json")
	data := `{"guests":[{"row":1,"full_name":"Jan","email":"jan@example.com","status":"sending"}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	s, err := storage.NewStorage(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	g, _ := s.GetGuest(1)
	if g.Status != models.StatusError || g.Error == "" {
		t.Fatalf("expected interrupted send to be flagged, got %+v", g)
	}
}
