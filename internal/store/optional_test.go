package store

import (
	"encoding/json"
	"testing"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	var p struct {
		Name  Optional[string] `json:"name"`
		Color Optional[string] `json:"color"`
		IDs   Optional[[]uint] `json:"ids"`
	}
	if err := json.Unmarshal([]byte(`{"color": null, "ids": []}`), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if p.Name.Set {
		t.Errorf("absent field: Set = true, want false")
	}
	if !p.Color.Set || !p.Color.Null {
		t.Errorf("null field = %+v, want Set and Null", p.Color)
	}
	if !p.IDs.Present() || len(p.IDs.Value) != 0 {
		t.Errorf("empty list = %+v, want present and empty", p.IDs)
	}
}

func TestOptional_AssignHelpers(t *testing.T) {
	name := "old"
	if err := assign("name", &name, Optional[string]{}); err != nil || name != "old" {
		t.Errorf("assign(absent) = %q, %v; want old, nil", name, err)
	}
	if err := assign("name", &name, Some("new")); err != nil || name != "new" {
		t.Errorf("assign(value) = %q, %v; want new, nil", name, err)
	}
	if err := assign("name", &name, Null[string]()); err == nil {
		t.Error("assign(null) on required field error = nil, want error")
	}

	color := ptr("#FFFFFF")
	assignPtr(&color, Optional[string]{})
	if color == nil {
		t.Fatal("assignPtr(absent) cleared the field")
	}
	assignPtr(&color, Null[string]())
	if color != nil {
		t.Errorf("assignPtr(null) = %q, want nil", *color)
	}
}
