package dispatch

import (
	"testing"

	"github.com/typedfn/typedfn/internal/registry"
)

func TestParseSignatureTextEmptyIsArityZero(t *testing.T) {
	sig, err := ParseSignatureText("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sig.Params) != 0 {
		t.Errorf("expected zero Params, got %d", len(sig.Params))
	}
}

func TestParseSignatureTextParsesParams(t *testing.T) {
	sig, err := ParseSignatureText("number, ...string", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sig.Params) != 2 {
		t.Fatalf("expected 2 Params, got %d", len(sig.Params))
	}
	if !sig.VarArgs() {
		t.Error("expected the trailing Param to be variadic")
	}
}

func TestNewSignatureRejectsNonTerminalVariadic(t *testing.T) {
	a, _ := ParseParam("...number")
	b, _ := ParseParam("string")
	if _, err := NewSignature([]*Param{a, b}, nil); err == nil {
		t.Error("expected a non-terminal variadic Param to be rejected")
	}
}

func TestSignatureExpandSplitsUnion(t *testing.T) {
	sig, _ := ParseSignatureText("number|string", nil)
	expanded := sig.Expand(registry.New())
	if len(expanded) != 2 {
		t.Fatalf("expected 2 expansions, got %d", len(expanded))
	}
	keys := map[string]bool{}
	for _, e := range expanded {
		keys[e.Key()] = true
	}
	if !keys["number"] || !keys["string"] {
		t.Errorf("unexpected expansion keys: %v", keys)
	}
}

func TestSignatureExpandInjectsConversions(t *testing.T) {
	reg := registry.New()
	_ = reg.AddConversion(registry.Conversion{From: "string", To: "number", Convert: func(v any) (any, error) { return v, nil }})
	sig, _ := ParseSignatureText("number", nil)
	expanded := sig.Expand(reg)
	if len(expanded) != 2 {
		t.Fatalf("expected 2 expansions (direct + conversion), got %d", len(expanded))
	}
	var sawConversion bool
	for _, e := range expanded {
		if e.HasConversions() {
			sawConversion = true
		}
	}
	if !sawConversion {
		t.Error("expected one expansion to carry the injected conversion")
	}
}

func TestSignatureParamsStartWith(t *testing.T) {
	sig, _ := ParseSignatureText("any, string", nil)
	prefix := []*Param{mustParam("number")}
	if !sig.ParamsStartWith(prefix) {
		t.Error("expected an any-typed leading Param to match any prefix")
	}
	other, _ := ParseSignatureText("string, string", nil)
	if other.ParamsStartWith(prefix) {
		t.Error("expected string to not match a number prefix")
	}
}

func TestCompareSignaturesShorterFirst(t *testing.T) {
	reg := registry.New()
	short, _ := ParseSignatureText("number", nil)
	long, _ := ParseSignatureText("number, string", nil)
	if CompareSignatures(short, long, reg) >= 0 {
		t.Error("expected the shorter signature to sort first")
	}
}
