package terminal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"licence-plate-checker/internal/form"
	"licence-plate-checker/internal/plate"
)

const multiHelp = "Type region code, letters and digits. '-', space or tab jump to the next field."

// Session drives one form controller through a prompt driver until the user
// stops or aborts.
type Session struct {
	ctrl   *form.Controller
	driver PromptDriver
	log    zerolog.Logger
}

func NewSession(ctrl *form.Controller, driver PromptDriver, log zerolog.Logger) *Session {
	return &Session{
		ctrl:   ctrl,
		driver: driver,
		log:    log,
	}
}

// Run loops over fill, submit, show. It returns nil when the user declines
// another round and ErrAborted on Ctrl+C.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := s.fill(ctx); err != nil {
			return err
		}

		outcome, err := s.ctrl.SubmitAndWait(ctx)
		if errors.Is(err, form.ErrInvalidForm) {
			if err := s.driver.Info(ctx, err.Error()); err != nil {
				return err
			}
			if err := s.ctrl.Reset(); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := s.driver.Info(ctx, Describe(outcome)); err != nil {
			return err
		}

		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Validate another plate?", Default: true})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		if err := s.ctrl.Reset(); err != nil {
			return err
		}
	}
}

func (s *Session) fill(ctx context.Context) error {
	if s.ctrl.State().Variant == plate.VariantFree {
		line, err := s.driver.Input(ctx, InputConfig{
			Message: "Licence plate",
			Validator: func(v string) error {
				return plate.FreeForm{Value: v}.Validate()
			},
		})
		if err != nil {
			return err
		}
		s.ctrl.SetFreeForm(line)
		return nil
	}

	line, err := s.driver.Input(ctx, InputConfig{Message: "Licence plate", Help: multiHelp})
	if err != nil {
		return err
	}
	FeedKeys(s.ctrl, line)

	st := s.ctrl.State()
	s.log.Debug().
		Str("cityCode", st.Fields.CityCode).
		Str("letters", st.Fields.Letters).
		Str("numbers", st.Fields.Numbers).
		Msg("fields filled")
	return nil
}

// FeedKeys replays line as keystrokes into the focused field. A separator
// ('-', space, tab) acts as Tab, except right after focus was auto-advanced,
// where it is swallowed so "MUC-AB 12" and "MUCAB12" both land in the
// right fields.
func FeedKeys(ctrl *form.Controller, line string) {
	justAdvanced := false
	for _, r := range line {
		if isSeparator(r) {
			if !justAdvanced {
				ctrl.Advance()
			}
			justAdvanced = false
			continue
		}
		justAdvanced = ctrl.Key(r)
	}
}

func isSeparator(r rune) bool {
	return r == '-' || r == ' ' || r == '\t'
}

// Describe renders an outcome the way the form shows it.
func Describe(o form.Outcome) string {
	switch o.Kind {
	case form.OutcomeSucceeded:
		if text := o.ResultText(); text != "" {
			return fmt.Sprintf("Valid: %s", text)
		}
		return "Valid"
	case form.OutcomeFailed, form.OutcomeTransportError:
		return fmt.Sprintf("Error: %s", o.ErrorText())
	case form.OutcomePending:
		return "Validating..."
	}
	return ""
}
