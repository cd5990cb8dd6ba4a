package plate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidPlate = errors.New("invalid plate")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldSet holds the three parts of a multi-field plate. Values written
// through Set and Type only ever contain their field's character class.
type FieldSet struct {
	CityCode string `json:"cityCode" validate:"required,min=1,max=3"`
	Letters  string `json:"letters" validate:"max=2"`
	Numbers  string `json:"numbers" validate:"required,min=1,max=4"`
}

func (s FieldSet) Get(f Field) string {
	switch f {
	case FieldCityCode:
		return s.CityCode
	case FieldLetters:
		return s.Letters
	case FieldNumbers:
		return s.Numbers
	}
	return ""
}

// Set filters raw for field f, stores it and returns the stored value.
func (s *FieldSet) Set(f Field, raw string) string {
	value := Normalize(f, raw)
	s.store(f, value)
	return value
}

// Type applies a single keystroke to field f and returns the stored value.
func (s *FieldSet) Type(f Field, r rune) string {
	value := Type(f, s.Get(f), r)
	s.store(f, value)
	return value
}

func (s *FieldSet) store(f Field, value string) {
	switch f {
	case FieldCityCode:
		s.CityCode = value
	case FieldLetters:
		s.Letters = value
	case FieldNumbers:
		s.Numbers = value
	}
}

// Validate checks the length rules: region code 1-3, letters 0-2, digits 1-4.
func (s FieldSet) Validate() error {
	return validationError(validate.Struct(s))
}

func (s FieldSet) Valid() bool {
	return s.Validate() == nil
}

// Canonical joins the trimmed fields as "cityCode-letters numbers". The
// joiners are emitted even when letters is empty ("B- 1234").
func (s FieldSet) Canonical() string {
	return fmt.Sprintf("%s-%s %s",
		strings.TrimSpace(s.CityCode),
		strings.TrimSpace(s.Letters),
		strings.TrimSpace(s.Numbers),
	)
}

// FreeForm is the single-field variant. No character filtering applies.
type FreeForm struct {
	Value string `json:"value" validate:"min=2"`
}

func (f FreeForm) Canonical() string {
	return strings.TrimSpace(f.Value)
}

// Validate requires at least two runes after trimming.
func (f FreeForm) Validate() error {
	return validationError(validate.Struct(FreeForm{Value: f.Canonical()}))
}

func (f FreeForm) Valid() bool {
	return f.Validate() == nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidPlate, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidPlate, strings.Join(parts, ", "))
}
