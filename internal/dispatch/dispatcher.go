// Package dispatch sends invitations for a set of guest records one at a time,
// tracking each record's lifecycle and the progress of the run.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fair-invitations/internal/models"
)

// DefaultSendError is recorded when a failed send does not explain itself
const DefaultSendError = "Błąd wysyłki"

// ErrRunInProgress is returned by TryDispatchAll while another run is active
var ErrRunInProgress = errors.New("dispatch run already in progress")

// SendFunc delivers one invitation. Returned errors and panics count as failed sends.
type SendFunc func(ctx context.Context, rec models.GuestRecord) (models.SendOutcome, error)

// Options identifies a run and hooks observers into it
type Options struct {
	// RunID labels the run; a random id is used when empty.
	RunID string
	// OnRecord fires after every status transition with the record's index in the input slice.
	OnRecord func(index int, rec models.GuestRecord)
	// OnProgress fires after each record finishes with the run's completion percentage.
	OnProgress func(percent int)
}

// Dispatcher runs invitation batches sequentially
type Dispatcher struct {
	log zerolog.Logger

	mu sync.Mutex
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		log: log.With().Str("component", "Dispatch").Logger(),
	}
}

// TryDispatchAll is DispatchAll that refuses to overlap with a run already active on d
func (d *Dispatcher) TryDispatchAll(ctx context.Context, records []models.GuestRecord, send SendFunc, opts Options) (models.DispatchResult, error) {
	if !d.mu.TryLock() {
		return models.DispatchResult{}, ErrRunInProgress
	}
	defer d.mu.Unlock()

	return d.run(ctx, records, send, opts), nil
}

// DispatchAll sends an invitation for every pending record, in order, mutating records in place.
// Cancelling ctx stops the run between records; an in-flight send is allowed to finish.
func (d *Dispatcher) DispatchAll(ctx context.Context, records []models.GuestRecord, send SendFunc, opts Options) models.DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.run(ctx, records, send, opts)
}

func (d *Dispatcher) run(ctx context.Context, records []models.GuestRecord, send SendFunc, opts Options) models.DispatchResult {
	eligible := make([]int, 0, len(records))
	for i, rec := range records {
		if rec.Eligible() {
			eligible = append(eligible, i)
		}
	}

	result := models.DispatchResult{RunID: opts.RunID}
	if result.RunID == "" {
		result.RunID = uuid.NewString()
	}
	if len(eligible) == 0 {
		return result
	}

	log := d.log.With().Str("run_id", result.RunID).Logger()
	log.Info().Int("eligible", len(eligible)).Msg("Starting dispatch run")

	sendCtx := context.WithoutCancel(ctx)

	for n, idx := range eligible {
		if ctx.Err() != nil {
			result.Aborted = true
			log.Warn().Int("processed", n).Int("eligible", len(eligible)).Msg("Dispatch run aborted")
			break
		}

		rec := &records[idx]
		rec.Status = models.StatusSending
		rec.Error = ""
		opts.record(idx, *rec)

		outcome, err := safeSend(sendCtx, send, *rec)
		switch {
		case err != nil:
			log.Error().Err(err).Int("row", rec.Row).Str("email", rec.Email).Msg("Invitation send failed")
			rec.Status = models.StatusError
			rec.Error = DefaultSendError
		case !outcome.Success:
			rec.Status = models.StatusError
			rec.Error = outcome.Message
			if rec.Error == "" {
				rec.Error = DefaultSendError
			}
			log.Warn().Int("row", rec.Row).Str("email", rec.Email).Str("reason", rec.Error).Msg("Invitation rejected")
		default:
			rec.Status = models.StatusSuccess
			log.Debug().Int("row", rec.Row).Str("email", rec.Email).Msg("Invitation sent")
		}

		result.Total++
		if rec.Status == models.StatusSuccess {
			result.Success++
		} else {
			result.Failed++
		}

		opts.record(idx, *rec)
		opts.progress(Progress(n+1, len(eligible)))
	}

	log.Info().
		Int("total", result.Total).
		Int("success", result.Success).
		Int("failed", result.Failed).
		Bool("aborted", result.Aborted).
		Msg("Dispatch run finished")

	return result
}

// Progress is the completion percentage after done of total records.
// It only reaches 100 when done == total.
func Progress(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(total) * 100))
	if p >= 100 && done < total {
		return 99
	}
	return p
}

func safeSend(ctx context.Context, send SendFunc, rec models.GuestRecord) (outcome models.SendOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panicked: %v", r)
		}
	}()
	return send(ctx, rec)
}

func (o Options) record(index int, rec models.GuestRecord) {
	if o.OnRecord != nil {
		o.OnRecord(index, rec)
	}
}

func (o Options) progress(p int) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}
