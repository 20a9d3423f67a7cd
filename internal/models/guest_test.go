package models_test

import (
	"testing"

	"fair-invitations/internal/models"
)

func TestSendStatusValid(t *testing.T) {
	t.Parallel()

	for _, s := range []models.SendStatus{models.StatusPending, models.StatusSending, models.StatusSuccess, models.StatusError} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if models.SendStatus("queued").Valid() {
		t.Fatal("did not expect unknown status to be valid")
	}
}

func TestGuestRecordEligible(t *testing.T) {
	t.Parallel()

	if !(models.GuestRecord{Status: models.StatusPending}).Eligible() {
		t.Fatal("expected pending record to be eligible")
	}
	if (models.GuestRecord{Status: models.StatusError, Error: "x"}).Eligible() {
		t.Fatal("did not expect error record to be eligible")
	}
}
