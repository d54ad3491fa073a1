package game

import (
	"reflect"
	"testing"
)

func TestRotateToFirst(t *testing.T) {
	ids := []string{"A", "B", "C", "D"}

	cases := []struct {
		target string
		want   []string
	}{
		{"A", []string{"A", "B", "C", "D"}},
		{"C", []string{"C", "D", "A", "B"}},
		{"D", []string{"D", "A", "B", "C"}},
		{"missing", []string{"A", "B", "C", "D"}},
	}
	for _, c := range cases {
		got := RotateToFirst(ids, c.target)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("RotateToFirst(%v, %q) = %v, want %v", ids, c.target, got, c.want)
		}
	}
}

func TestRotateToFirst_DoesNotAliasInput(t *testing.T) {
	ids := []string{"A", "B", "C"}
	got := RotateToFirst(ids, "A")
	got[0] = "Z"
	if ids[0] != "A" {
		t.Error("RotateToFirst must not return a slice aliasing its input")
	}
}
