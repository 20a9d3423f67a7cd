package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fair-invitations/internal/models"
)

// ErrGuestNotFound is returned when no record has the requested row number
var ErrGuestNotFound = errors.New("guest not found")

// Session is the persisted state of one loaded guest list
type Session struct {
	ExhibitionID string               `json:"exhibition_id,omitempty"`
	Source       string               `json:"source,omitempty"`
	LoadedAt     time.Time            `json:"loaded_at"`
	Guests       []models.GuestRecord `json:"guests"`
}

type Storage struct {
	mu      sync.RWMutex
	session Session
	file    string
}

// NewStorage creates a new storage instance
func NewStorage(filePath string) (*Storage, error) {
	s := &Storage{
		session: Session{Guests: make([]models.GuestRecord, 0)},
		file:    filePath,
	}

	// Load existing data if file exists
	if _, err := os.Stat(filePath); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("failed to load storage: %w", err)
		}
	}

	return s, nil
}

// ReplaceGuests starts a new session with a freshly parsed guest list
func (s *Storage) ReplaceGuests(exhibitionID, source string, guests []models.GuestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.GuestRecord, len(guests))
	copy(copied, guests)

	s.session = Session{
		ExhibitionID: exhibitionID,
		Source:       source,
		LoadedAt:     time.Now(),
		Guests:       copied,
	}
	return s.Save()
}

// Session returns a copy of the current session
func (s *Storage) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	out.Guests = make([]models.GuestRecord, len(s.session.Guests))
	copy(out.Guests, s.session.Guests)
	return out
}

// GetGuest retrieves a guest by row number
func (s *Storage) GetGuest(row int) (*models.GuestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.session.Guests {
		if g.Row == row {
			return &g, nil
		}
	}
	return nil, ErrGuestNotFound
}

// UpdateStatus updates the send status for a guest
func (s *Storage) UpdateStatus(row int, status models.SendStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.session.Guests {
		if g.Row == row {
			s.session.Guests[i].Status = status
			s.session.Guests[i].Error = ""
			if status == models.StatusError {
				s.session.Guests[i].Error = message
			}
			return s.Save()
		}
	}
	return ErrGuestNotFound
}

// ResetFailed moves failed sends back to pending so the next run retries them.
// Rows flagged with an invalid email stay in the error state.
func (s *Storage) ResetFailed(keepMessage string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i, g := range s.session.Guests {
		if g.Status == models.StatusError && g.Error != keepMessage {
			s.session.Guests[i].Status = models.StatusPending
			s.session.Guests[i].Error = ""
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.Save()
}

// GetAllGuests returns all guests
func (s *Storage) GetAllGuests() []models.GuestRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guests := make([]models.GuestRecord, len(s.session.Guests))
	copy(guests, s.session.Guests)
	return guests
}

// GetGuestsByStatus returns guests filtered by send status
func (s *Storage) GetGuestsByStatus(status models.SendStatus) []models.GuestRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.GuestRecord
	for _, g := range s.session.Guests {
		if g.Status == status {
			result = append(result, g)
		}
	}
	return result
}

// Save saves the session to file
func (s *Storage) Save() error {
	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(s.file, data, 0644)
}

// Load loads the session from file
func (s *Storage) Load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		s.session = Session{Guests: make([]models.GuestRecord, 0)}
		return nil
	}

	if err := json.Unmarshal(data, &s.session); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	// A crash mid-run can leave a row in sending; it was never confirmed.
	for i, g := range s.session.Guests {
		if g.Status == models.StatusSending {
			s.session.Guests[i].Status = models.StatusError
			s.session.Guests[i].Error = "Wysyłka przerwana"
		}
	}

	return nil
}
