package bidform

import (
	"encoding/json"
	"testing"
)

func TestOrderedValuesRoundTrip(t *testing.T) {
	raw := `{"item_id":"1","unit_price":"$4.10","total_cost":"$4.10","qty":2}`

	var ov OrderedValues
	if err := json.Unmarshal([]byte(raw), &ov); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	wantKeys := []string{"item_id", "unit_price", "total_cost", "qty"}
	gotKeys := ov.Keys()
	if len(gotKeys) != len(wantKeys) {
		t.Fatalf("got %d keys, want %d", len(gotKeys), len(wantKeys))
	}
	for i, k := range wantKeys {
		if gotKeys[i] != k {
			t.Errorf("key[%d] = %q, want %q", i, gotKeys[i], k)
		}
	}

	if v, ok := ov.Get("unit_price"); !ok || v != "$4.10" {
		t.Errorf("Get(unit_price) = %v, %v", v, ok)
	}
	if v, ok := ov.Get("qty"); !ok || v != json.Number("2") {
		t.Errorf("Get(qty) = %v (%T), want json.Number(2)", v, v)
	}

	out, err := json.Marshal(ov)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("round trip = %s, want %s", out, raw)
	}
}

func TestOrderedValuesSetOverwrite(t *testing.T) {
	ov := NewOrderedValues("a", 1, "b", 2)
	ov.Set("a", 3)

	if ov.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ov.Len())
	}
	if v, _ := ov.Get("a"); v != 3 {
		t.Errorf("Get(a) = %v, want 3", v)
	}
	if keys := ov.Keys(); keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys = %v, want [a b]", keys)
	}
}

func TestOrderedValuesUnmarshalNull(t *testing.T) {
	var ov OrderedValues
	if err := json.Unmarshal([]byte(`null`), &ov); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !ov.IsEmpty() {
		t.Errorf("expected empty values after null, got %s", ov)
	}
}

func TestOrderedValuesUnmarshalRejectsArray(t *testing.T) {
	var ov OrderedValues
	if err := json.Unmarshal([]byte(`[1,2]`), &ov); err == nil {
		t.Error("expected error for non-object input")
	}
}
