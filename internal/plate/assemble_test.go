package plate

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldSet_SetFilters(t *testing.T) {
	var s FieldSet
	s.Set(FieldCityCode, "b1")
	s.Set(FieldLetters, "m w")
	s.Set(FieldNumbers, "12x34")

	want := FieldSet{CityCode: "B", Letters: "MW", Numbers: "1234"}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("field set mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldSet_Canonical(t *testing.T) {
	cases := []struct {
		set  FieldSet
		want string
	}{
		{FieldSet{CityCode: "B", Letters: "MW", Numbers: "1234"}, "B-MW 1234"},
		{FieldSet{CityCode: "B", Letters: "AB", Numbers: "1234"}, "B-AB 1234"},
		{FieldSet{CityCode: "B", Numbers: "1234"}, "B- 1234"},
		{FieldSet{CityCode: "MÜ", Letters: "X", Numbers: "7"}, "MÜ-X 7"},
	}
	for _, c := range cases {
		for i := 0; i < 2; i++ {
			if got := c.set.Canonical(); got != c.want {
				t.Fatalf("Canonical(%+v) = %q, want %q", c.set, got, c.want)
			}
		}
	}
}

func TestFieldSet_Validate(t *testing.T) {
	cases := []struct {
		name  string
		set   FieldSet
		valid bool
		field string
	}{
		{"full", FieldSet{CityCode: "B", Letters: "MW", Numbers: "1234"}, true, ""},
		{"no letters", FieldSet{CityCode: "HH", Numbers: "1"}, true, ""},
		{"umlaut counts once", FieldSet{CityCode: "MÜÖ", Numbers: "1"}, true, ""},
		{"empty city", FieldSet{Letters: "AB", Numbers: "1"}, false, "cityCode"},
		{"empty numbers", FieldSet{CityCode: "B"}, false, "numbers"},
		{"long city", FieldSet{CityCode: "BERL", Numbers: "1"}, false, "cityCode"},
		{"long letters", FieldSet{CityCode: "B", Letters: "ABC", Numbers: "1"}, false, "letters"},
		{"long numbers", FieldSet{CityCode: "B", Numbers: "12345"}, false, "numbers"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.set.Validate()
			if c.valid {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidPlate) {
				t.Fatalf("expected ErrInvalidPlate, got %v", err)
			}
			if !strings.Contains(err.Error(), c.field) {
				t.Fatalf("error %q does not name %s", err, c.field)
			}
		})
	}
}

func TestFreeForm(t *testing.T) {
	f := FreeForm{Value: "  ab12  "}
	if got := f.Canonical(); got != "ab12" {
		t.Fatalf("got %q", got)
	}
	if !f.Valid() {
		t.Fatal("expected valid")
	}
	if (FreeForm{Value: "  a "}).Valid() {
		t.Fatal("single rune after trim must be invalid")
	}
	if !(FreeForm{Value: "ö!"}).Valid() {
		t.Fatal("free form applies no character filter")
	}
}
