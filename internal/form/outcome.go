package form

import (
	"errors"

	"licence-plate-checker/internal/client"
)

const (
	FallbackValidationFailed = "Validation failed"
	FallbackTransportError   = "An error occurred during validation"
)

type OutcomeKind int

const (
	// OutcomeIdle means the form has not been submitted yet.
	OutcomeIdle OutcomeKind = iota
	OutcomePending
	OutcomeSucceeded
	OutcomeFailed
	OutcomeTransportError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeTransportError:
		return "transport_error"
	}
	return "idle"
}

// Outcome is the result of the latest validation attempt. Only the fields
// belonging to Kind are set: Result for Succeeded (nil when the validator sent
// none), Message for Failed and TransportError.
type Outcome struct {
	Kind    OutcomeKind
	Result  *string
	Message string
}

func Pending() Outcome {
	return Outcome{Kind: OutcomePending}
}

func Succeeded(result *string) Outcome {
	return Outcome{Kind: OutcomeSucceeded, Result: result}
}

func Failed(message string) Outcome {
	return Outcome{Kind: OutcomeFailed, Message: message}
}

func TransportError(message string) Outcome {
	return Outcome{Kind: OutcomeTransportError, Message: message}
}

// ResultText is what the form shows as result, empty unless Succeeded.
func (o Outcome) ResultText() string {
	if o.Kind != OutcomeSucceeded || o.Result == nil {
		return ""
	}
	return *o.Result
}

// ErrorText is what the form shows as error, empty unless Failed or
// TransportError.
func (o Outcome) ErrorText() string {
	if o.Kind == OutcomeFailed || o.Kind == OutcomeTransportError {
		return o.Message
	}
	return ""
}

// Resolve maps a validator reply to an outcome.
func Resolve(resp *client.ApiResponse, err error) Outcome {
	if err != nil || resp == nil || resp.Success == nil {
		msg := FallbackTransportError
		var te *client.TransportError
		if errors.As(err, &te) && te.Message != "" {
			msg = te.Message
		}
		return TransportError(msg)
	}
	if *resp.Success {
		return Succeeded(resp.Result)
	}
	if resp.Error != "" {
		return Failed(resp.Error)
	}
	return Failed(FallbackValidationFailed)
}
