package typedfn

import "testing"

func TestComposeAndCall(t *testing.T) {
	sys := New()
	d, err := sys.Compose("add", Bindings{
		{Signature: "number, number", Fn: func(a, b int) int { return a + b }},
		{Signature: "string, string", Fn: func(a, b string) string { return a + b }},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got, err := d.Call(2, 3); err != nil || got != 5 {
		t.Errorf("Call(2,3) = (%v, %v), want (5, nil)", got, err)
	}
	if got, err := d.Call("a", "b"); err != nil || got != "ab" {
		t.Errorf("Call(\"a\",\"b\") = (%v, %v), want (ab, nil)", got, err)
	}
	if _, err := d.Call(2, "b"); err == nil {
		t.Error("expected mixed-type call to fail")
	}
}

func TestSystemAddTypeAndConversion(t *testing.T) {
	sys := New()
	type Point struct{ X, Y int }
	if err := sys.AddType("Point", func(v any) bool { _, ok := v.(Point); return ok }); err != nil {
		t.Fatalf("AddType: %v", err)
	}
	if err := sys.AddConversion("number", "Point", func(v any) (any, error) {
		return Point{X: v.(int), Y: v.(int)}, nil
	}); err != nil {
		t.Fatalf("AddConversion: %v", err)
	}
	d, err := sys.Compose("diag", Bindings{
		{Signature: "Point", Fn: func(p Point) int { return p.X + p.Y }},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	got, err := d.Call(4)
	if err != nil || got != 8 {
		t.Errorf("Call(4) = (%v, %v), want (8, nil) via the number->Point conversion", got, err)
	}
}

func TestSystemConvertDirect(t *testing.T) {
	sys := New()
	_ = sys.AddConversion("string", "number", func(v any) (any, error) { return len(v.(string)), nil })
	got, err := sys.Convert("abcd", "number")
	if err != nil || got != 4 {
		t.Errorf("Convert(\"abcd\", \"number\") = (%v, %v), want (4, nil)", got, err)
	}
}

func TestComposeDispatchersMergesMany(t *testing.T) {
	sys := New()
	a, err := sys.Compose("a", Bindings{{Signature: "number", Fn: func(n int) string { return "num" }}})
	if err != nil {
		t.Fatalf("Compose a: %v", err)
	}
	b, err := sys.Compose("b", Bindings{{Signature: "string", Fn: func(s string) string { return "str" }}})
	if err != nil {
		t.Fatalf("Compose b: %v", err)
	}
	merged, err := ComposeDispatchers("ab", a, b)
	if err != nil {
		t.Fatalf("ComposeDispatchers: %v", err)
	}
	if got, err := merged.Call(1); err != nil || got != "num" {
		t.Errorf("merged.Call(1) = (%v, %v), want (num, nil)", got, err)
	}
	if got, err := merged.Call("x"); err != nil || got != "str" {
		t.Errorf("merged.Call(\"x\") = (%v, %v), want (str, nil)", got, err)
	}
}

func TestSystemCreateIsIsolated(t *testing.T) {
	sys := New()
	_ = sys.AddType("Weird", func(v any) bool { return false })
	fresh := sys.Create()
	if _, err := fresh.Compose("f", Bindings{{Signature: "Weird", Fn: func() {}}}); err == nil {
		t.Error("expected a type registered only on the parent System to be unknown on a fresh Create()")
	}
}
