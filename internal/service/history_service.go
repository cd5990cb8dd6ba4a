package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"licence-plate-checker/internal/form"
	"licence-plate-checker/internal/model"
	"licence-plate-checker/internal/plate"
	"licence-plate-checker/internal/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("history is not enabled")
)

const maxHistoryLimit = 500

// AttemptStore is the persistence the history needs.
type AttemptStore interface {
	Create(ctx context.Context, attempt *model.ValidationAttempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ValidationAttempt, error)
	List(ctx context.Context, filter repository.AttemptListFilter) ([]model.ValidationAttempt, error)
}

// HistoryService stores resolved validations and lists them back. It is the
// form.Recorder of the controllers it is attached to.
type HistoryService struct {
	store        AttemptStore
	defaultLimit int
}

func NewHistoryService(store AttemptStore, defaultLimit int) *HistoryService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &HistoryService{
		store:        store,
		defaultLimit: defaultLimit,
	}
}

func (s *HistoryService) Record(ctx context.Context, attempt form.Attempt) error {
	if s == nil || s.store == nil {
		return nil
	}

	outcome, ok := attemptOutcome(attempt.Outcome.Kind)
	if !ok {
		return ErrInvalidInput
	}

	record := &model.ValidationAttempt{
		Plate:        attempt.Plate,
		CompactPlate: plate.Compact(attempt.Plate),
		Variant:      string(attempt.Variant),
		Outcome:      outcome,
		Result:       attempt.Outcome.Result,
		RequestedAt:  attempt.RequestedAt.UTC(),
		DurationMs:   attempt.Elapsed.Milliseconds(),
	}
	if msg := attempt.Outcome.Message; msg != "" {
		record.Message = &msg
	}

	return s.store.Create(ctx, record)
}

type ListAttemptsInput struct {
	Plate   string
	Outcome string
	Limit   int
}

func (s *HistoryService) List(ctx context.Context, input ListAttemptsInput) ([]model.ValidationAttempt, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}

	filter := repository.AttemptListFilter{Limit: s.defaultLimit}
	if input.Limit < 0 || input.Limit > maxHistoryLimit {
		return nil, ErrInvalidInput
	}
	if input.Limit > 0 {
		filter.Limit = input.Limit
	}
	if p := plate.Compact(input.Plate); p != "" {
		filter.CompactPlate = &p
	}
	if raw := strings.TrimSpace(input.Outcome); raw != "" {
		o := model.AttemptOutcome(strings.ToUpper(raw))
		switch o {
		case model.AttemptOutcomeSucceeded, model.AttemptOutcomeFailed, model.AttemptOutcomeTransportError:
			filter.Outcome = &o
		default:
			return nil, ErrInvalidInput
		}
	}

	return s.store.List(ctx, filter)
}

func (s *HistoryService) Get(ctx context.Context, id string) (*model.ValidationAttempt, error) {
	if s == nil || s.store == nil {
		return nil, ErrUnavailable
	}
	attemptID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrInvalidInput
	}
	attempt, err := s.store.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrNotFound
	}
	return attempt, nil
}

func attemptOutcome(kind form.OutcomeKind) (model.AttemptOutcome, bool) {
	switch kind {
	case form.OutcomeSucceeded:
		return model.AttemptOutcomeSucceeded, true
	case form.OutcomeFailed:
		return model.AttemptOutcomeFailed, true
	case form.OutcomeTransportError:
		return model.AttemptOutcomeTransportError, true
	}
	return "", false
}
