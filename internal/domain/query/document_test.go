package query

import (
	"reflect"
	"testing"
)

func TestClone_DeepCopy(t *testing.T) {
	orig := Document{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{map[string]any{"match": map[string]any{"post_title": "hello"}}},
			},
		},
		"size": float64(10),
	}

	c := orig.Clone()
	if !reflect.DeepEqual(orig, c) {
		t.Fatalf("clone differs: %v vs %v", orig, c)
	}

	q, _ := c.Map("query")
	b := q["bool"].(map[string]any)
	b["must"] = append(b["must"].([]any), "x")
	q["extra"] = true

	origQ, _ := orig.Map("query")
	if _, ok := origQ["extra"]; ok {
		t.Error("mutating clone leaked into original map")
	}
	if n := len(origQ["bool"].(map[string]any)["must"].([]any)); n != 1 {
		t.Errorf("mutating clone leaked into original slice, len=%d", n)
	}
}

func TestClone_Nil(t *testing.T) {
	var d Document
	if d.Clone() != nil {
		t.Error("expected nil clone of nil document")
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"empty map", map[string]any{}, true},
		{"empty slice", []any{}, true},
		{"map", map[string]any{"a": 1}, false},
		{"string", "", false},
		{"number", float64(0), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEmpty(tc.v); got != tc.want {
				t.Errorf("IsEmpty(%v) = %v, want %v", tc.v, got, tc.want)
			}
		})
	}
}

func TestMap_NotObject(t *testing.T) {
	d := Document{"query": "oops"}
	if _, ok := d.Map("query"); ok {
		t.Error("expected ok=false for non-object value")
	}
	if _, ok := d.Map("missing"); ok {
		t.Error("expected ok=false for missing key")
	}
}
