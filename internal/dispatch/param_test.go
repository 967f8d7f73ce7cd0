package dispatch

import (
	"testing"

	"github.com/typedfn/typedfn/internal/registry"
)

func TestParseParamEmptyIsAny(t *testing.T) {
	p, err := ParseParam("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.AnyType() || len(p.Types) != 1 {
		t.Errorf("ParseParam(\"\") = %+v, want a single any type", p)
	}
}

func TestParseParamVariadicUnion(t *testing.T) {
	p, err := ParseParam("...number|string")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.VarArgs {
		t.Error("expected VarArgs to be true")
	}
	if len(p.Types) != 2 || p.Types[0] != "number" || p.Types[1] != "string" {
		t.Errorf("unexpected types: %v", p.Types)
	}
}

func TestParseParamRejectsDuplicateAny(t *testing.T) {
	if _, err := ParseParam("any|any"); err == nil {
		t.Error("expected duplicate any to be rejected")
	}
}

func TestParseParamRejectsEmptyAlternative(t *testing.T) {
	if _, err := ParseParam("number|"); err == nil {
		t.Error("expected an empty alternative to be rejected")
	}
}

func TestOverlappingAndMatches(t *testing.T) {
	number, _ := ParseParam("number")
	str, _ := ParseParam("string")
	union, _ := ParseParam("number|boolean")
	anyP, _ := ParseParam("any")

	if number.Overlapping(str) {
		t.Error("number and string should not overlap")
	}
	if !number.Overlapping(union) {
		t.Error("number and number|boolean should overlap")
	}
	if !number.Matches(anyP) || !anyP.Matches(str) {
		t.Error("any should match everything")
	}
	if str.Matches(number) {
		t.Error("string should not match number")
	}
}

func TestParamStringRoundTrip(t *testing.T) {
	p, _ := ParseParam("...number|string")
	if got := p.String(); got != "...number|string" {
		t.Errorf("String() = %q, want \"...number|string\"", got)
	}
}

func TestParamStringShowsTarget(t *testing.T) {
	p, _ := ParseParam("string")
	p.Conversions[0] = &registry.ConversionRef{
		Conversion: registry.Conversion{From: "string", To: "number"},
		Index:      0,
	}
	if got := p.String(true); got != "number" {
		t.Errorf("String(true) = %q, want \"number\"", got)
	}
	if got := p.String(); got != "string" {
		t.Errorf("String() = %q, want \"string\"", got)
	}
}
