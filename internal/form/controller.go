// Package form owns the plate form state: field values, focus, the loading
// flag and the outcome of the latest validation.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"licence-plate-checker/internal/client"
	"licence-plate-checker/internal/plate"
)

var (
	ErrInvalidForm        = errors.New("form is not submittable")
	ErrSubmissionInFlight = errors.New("a validation is already in flight")
	ErrClosed             = errors.New("form is closed")
)

// Validator is the remote plate validator.
type Validator interface {
	Validate(ctx context.Context, plate string) (*client.ApiResponse, error)
}

// Focuser moves input focus to the element with the given id.
type Focuser interface {
	Focus(id string)
}

type FocuserFunc func(id string)

func (f FocuserFunc) Focus(id string) { f(id) }

// Attempt describes one resolved validation.
type Attempt struct {
	Plate       string
	Variant     plate.Variant
	Outcome     Outcome
	RequestedAt time.Time
	Elapsed     time.Duration
}

// Recorder receives every resolved attempt, e.g. to keep a history.
type Recorder interface {
	Record(ctx context.Context, attempt Attempt) error
}

// State is a snapshot of the form.
type State struct {
	Variant  plate.Variant
	Fields   plate.FieldSet
	FreeForm string
	Focus    plate.Field
	Loading  bool
	Outcome  Outcome
}

type Option func(*Controller)

func WithFocuser(f Focuser) Option {
	return func(c *Controller) { c.focuser = f }
}

func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// Controller is the only writer of the form state. It is safe for concurrent
// use; at most one validation is in flight at a time.
type Controller struct {
	mu       sync.Mutex
	variant  plate.Variant
	fields   plate.FieldSet
	freeForm string
	focus    plate.Field
	loading  bool
	outcome  Outcome
	seq      uint64
	closed   bool

	validator Validator
	focuser   Focuser
	recorder  Recorder
	log       zerolog.Logger
}

func NewController(variant plate.Variant, validator Validator, opts ...Option) *Controller {
	c := &Controller{
		variant:   variant,
		focus:     plate.FieldCityCode,
		validator: validator,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Variant:  c.variant,
		Fields:   c.fields,
		FreeForm: c.freeForm,
		Focus:    c.focus,
		Loading:  c.loading,
		Outcome:  c.outcome,
	}
}

func (c *Controller) Focused() plate.Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// Focus moves focus to f, as when the user clicks into a field.
func (c *Controller) Focus(f plate.Field) {
	if !f.Valid() {
		return
	}
	c.mu.Lock()
	c.focus = f
	c.mu.Unlock()
}

// Input replaces the value of field f with the filtered raw value and
// returns what was stored. Filling region code or letters to its cap moves
// focus to the next field.
func (c *Controller) Input(f plate.Field, raw string) string {
	c.mu.Lock()
	value := c.fields.Set(f, raw)
	next, moved := c.advanceIfFull(f, value)
	c.mu.Unlock()

	c.notifyFocus(next, moved)
	return value
}

// Key types one rune into the focused field and reports whether focus moved.
// In the free-form variant the rune is appended unfiltered.
func (c *Controller) Key(r rune) bool {
	c.mu.Lock()
	if c.variant == plate.VariantFree {
		c.freeForm += string(r)
		c.mu.Unlock()
		return false
	}
	f := c.focus
	value := c.fields.Type(f, r)
	next, moved := c.advanceIfFull(f, value)
	c.mu.Unlock()

	c.notifyFocus(next, moved)
	return moved
}

// Advance moves focus to the next field like a Tab key. It does nothing on
// the last field.
func (c *Controller) Advance() (plate.Field, bool) {
	c.mu.Lock()
	next, ok := c.focus.Next()
	if ok {
		c.focus = next
	}
	c.mu.Unlock()

	c.notifyFocus(next, ok)
	return next, ok
}

func (c *Controller) SetFreeForm(raw string) {
	c.mu.Lock()
	c.freeForm = raw
	c.mu.Unlock()
}

// Canonical returns the plate string that Submit would send.
func (c *Controller) Canonical() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canonical()
}

// Submit starts a validation of the current form. It returns ErrInvalidForm
// without touching the state when the form is not submittable, and
// ErrSubmissionInFlight while a previous validation is loading. The returned
// channel yields the resolved outcome once and is then closed.
func (c *Controller) Submit(ctx context.Context) (<-chan Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.loading {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	canonical, err := c.canonical()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	c.seq++
	seq := c.seq
	variant := c.variant
	c.loading = true
	c.outcome = Pending()
	c.mu.Unlock()

	c.log.Debug().Str("plate", canonical).Str("variant", string(variant)).Msg("validation submitted")

	done := make(chan Outcome, 1)
	go c.run(ctx, seq, variant, canonical, done)
	return done, nil
}

// SubmitAndWait is Submit followed by waiting for the outcome.
func (c *Controller) SubmitAndWait(ctx context.Context) (Outcome, error) {
	done, err := c.Submit(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return <-done, nil
}

// Reset clears fields and outcome and puts focus back on the first field.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrSubmissionInFlight
	}
	c.fields = plate.FieldSet{}
	c.freeForm = ""
	c.focus = plate.FieldCityCode
	c.outcome = Outcome{}
	return nil
}

// Close tears the form down. An outcome still in flight is not applied.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.loading = false
	c.seq++
	c.mu.Unlock()
}

func (c *Controller) run(ctx context.Context, seq uint64, variant plate.Variant, canonical string, done chan<- Outcome) {
	defer close(done)

	started := time.Now()
	resp, err := c.validator.Validate(ctx, canonical)
	outcome := Resolve(resp, err)
	elapsed := time.Since(started)

	c.mu.Lock()
	applied := seq == c.seq && !c.closed
	if applied {
		c.outcome = outcome
		c.loading = false
	}
	c.mu.Unlock()

	event := c.log.Info()
	if outcome.Kind == OutcomeTransportError {
		event = c.log.Warn().Err(err)
	}
	event.Str("plate", canonical).
		Str("outcome", outcome.Kind.String()).
		Dur("elapsed", elapsed).
		Bool("applied", applied).
		Msg("validation resolved")

	if c.recorder != nil {
		attempt := Attempt{
			Plate:       canonical,
			Variant:     variant,
			Outcome:     outcome,
			RequestedAt: started,
			Elapsed:     elapsed,
		}
		if err := c.recorder.Record(context.WithoutCancel(ctx), attempt); err != nil {
			c.log.Error().Err(err).Str("plate", canonical).Msg("failed to record validation attempt")
		}
	}

	done <- outcome
}

func (c *Controller) canonical() (string, error) {
	if c.variant == plate.VariantFree {
		ff := plate.FreeForm{Value: c.freeForm}
		if err := ff.Validate(); err != nil {
			return "", err
		}
		return ff.Canonical(), nil
	}
	if err := c.fields.Validate(); err != nil {
		return "", err
	}
	return c.fields.Canonical(), nil
}

func (c *Controller) advanceIfFull(f plate.Field, value string) (plate.Field, bool) {
	if !f.AutoAdvances() || plate.Len(value) != f.Cap() {
		return "", false
	}
	next, _ := f.Next()
	c.focus = next
	return next, true
}

func (c *Controller) notifyFocus(f plate.Field, moved bool) {
	if moved && c.focuser != nil {
		c.focuser.Focus(f.String())
	}
}
