package ir

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromKeyValsOrder(t *testing.T) {
	node := FromKeyVals([]KeyVal{
		{Key: "b", Val: FromInt(1)},
		{Key: "a", Val: FromInt(2)},
		{Key: "c", Val: FromInt(3)},
	})
	if diff := cmp.Diff([]string{"b", "a", "c"}, node.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}

func TestSetReplacesInPlace(t *testing.T) {
	node := FromKeyVals([]KeyVal{
		{Key: "b", Val: FromInt(1)},
		{Key: "a", Val: FromInt(2)},
		{Key: "b", Val: FromInt(3)},
	})
	if got := len(node.Fields); got != 2 {
		t.Fatalf("got %d fields, want 2", got)
	}
	if diff := cmp.Diff([]string{"b", "a"}, node.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if v := Get(node, "b"); v == nil || *v.Int64 != 3 {
		t.Errorf("expected b to be replaced by 3, got %v", v)
	}
	node.Set("z", Null())
	if diff := cmp.Diff([]string{"b", "a", "z"}, node.Keys()); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	node := FromKeyVals([]KeyVal{{Key: "x", Val: FromBool(true)}})
	if Get(node, "y") != nil {
		t.Error("expected nil for absent field")
	}
	if Get(FromString("x"), "x") != nil {
		t.Error("expected nil for non-object")
	}
	if Get(nil, "x") != nil {
		t.Error("expected nil for nil node")
	}
	if v := Get(node, "x"); v == nil || !v.Bool {
		t.Errorf("got %v", v)
	}
}

func TestToAny(t *testing.T) {
	node := FromKeyVals([]KeyVal{
		{Key: "s", Val: FromString("v")},
		{Key: "i", Val: FromInt(7)},
		{Key: "f", Val: FromFloat(0.5)},
		{Key: "big", Val: FromNumber("123456789012345678901234567890")},
		{Key: "n", Val: Null()},
		{Key: "l", Val: FromSlice([]*Node{FromBool(false)})},
	})
	want := map[string]any{
		"s":   "v",
		"i":   7,
		"f":   0.5,
		"big": "123456789012345678901234567890",
		"n":   nil,
		"l":   []any{false},
	}
	if diff := cmp.Diff(want, ToAny(node)); diff != "" {
		t.Errorf("ToAny (-want +got):\n%s", diff)
	}
}

func TestVisitCounts(t *testing.T) {
	node := FromSlice([]*Node{
		FromInt(1),
		FromKeyVals([]KeyVal{{Key: "a", Val: FromInt(2)}}),
	})
	pre := 0
	err := node.Visit(func(y *Node, isPost bool) (bool, error) {
		if !isPost {
			pre++
		}
		return true, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if pre != 4 {
		t.Errorf("visited %d nodes, want 4", pre)
	}
}
