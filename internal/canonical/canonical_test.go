package canonical

import "testing"

func TestEncode_MapOrderIndependent(t *testing.T) {
	a := map[string]any{"watch": 0.5, "rate": 0.3, "recent": 0.2}
	b := map[string]any{"recent": 0.2, "rate": 0.3, "watch": 0.5}

	ea, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode a: %v", err)
	}
	eb, err := Encode(b)
	if err != nil {
		t.Fatalf("Encode b: %v", err)
	}
	if string(ea) != string(eb) {
		t.Fatalf("encodings differ:\n%s\n%s", ea, eb)
	}
}

func TestEncode_StructFieldOrderIrrelevant(t *testing.T) {
	type p1 struct {
		Limit int    `json:"limit"`
		Name  string `json:"name"`
	}
	type p2 struct {
		Name  string `json:"name"`
		Limit int    `json:"limit"`
	}

	ea, err := Encode(p1{Limit: 100, Name: "balanced"})
	if err != nil {
		t.Fatalf("Encode p1: %v", err)
	}
	eb, err := Encode(p2{Name: "balanced", Limit: 100})
	if err != nil {
		t.Fatalf("Encode p2: %v", err)
	}
	if string(ea) != string(eb) {
		t.Fatalf("encodings differ:\n%s\n%s", ea, eb)
	}
}

func TestEncode_NestedSorting(t *testing.T) {
	v := map[string]any{
		"b": map[string]any{"z": 1, "a": 2},
		"a": []any{map[string]any{"y": true, "x": false}},
	}
	got, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"a":[{"x":false,"y":true}],"b":{"a":2,"z":1}}`
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestEncode_NumbersKeepPrecision(t *testing.T) {
	got, err := Encode(map[string]any{"w": 0.1})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"w":0.1}`
	if string(got) != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestEncode_ValueChangesEncoding(t *testing.T) {
	ea, err := Encode(map[string]any{"watch": 0.5})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	eb, err := Encode(map[string]any{"watch": 0.6})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(ea) == string(eb) {
		t.Fatal("different values must encode differently")
	}
}
