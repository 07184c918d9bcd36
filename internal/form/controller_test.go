package form

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewController_Defaults(t *testing.T) {
	c := NewController(nil)

	if c.Step() != StepPersonal {
		t.Errorf("Step = %d, want %d", c.Step(), StepPersonal)
	}

	snap := c.Snapshot()
	for _, name := range DefaultCatalog().Names() {
		v, ok := snap.Fields[name]
		if !ok {
			t.Errorf("field %q missing from fresh snapshot", name)
			continue
		}
		if v != "" {
			t.Errorf("field %q = %q, want empty", name, v)
		}
	}
}

func TestSetField_LastWriteWins(t *testing.T) {
	c := NewController(nil)

	writes := []struct{ name, value string }{
		{"firstName", "Ella"},
		{"lastName", "Begay"},
		{"firstName", "Elsie"},
		{"city", "Chinle"},
		{"lastName", "Yazzie"},
		{"customNote", "kept"},
	}
	for _, w := range writes {
		c.SetField(w.name, w.value)
	}

	want := make(map[string]string)
	for _, name := range DefaultCatalog().Names() {
		want[name] = ""
	}
	want["firstName"] = "Elsie"
	want["lastName"] = "Yazzie"
	want["city"] = "Chinle"
	want["customNote"] = "kept"

	if diff := cmp.Diff(want, c.Snapshot().Fields); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigation_StaysInRange(t *testing.T) {
	c := NewController(nil)

	if got := c.Previous(); got != StepPersonal {
		t.Errorf("Previous from 1 = %d, want 1", got)
	}

	for i := 0; i < 10; i++ {
		got := c.Next()
		if got < FirstStep || got > LastStep {
			t.Fatalf("Next produced %d", got)
		}
	}
	if c.Step() != StepGrant {
		t.Errorf("Step = %d, want %d", c.Step(), StepGrant)
	}
	if got := c.Next(); got != StepGrant {
		t.Errorf("Next from 5 = %d, want 5", got)
	}

	for i := 0; i < 10; i++ {
		got := c.Previous()
		if got < FirstStep || got > LastStep {
			t.Fatalf("Previous produced %d", got)
		}
	}
	if c.Step() != StepPersonal {
		t.Errorf("Step = %d, want 1", c.Step())
	}
}

func TestNavigation_Sequence(t *testing.T) {
	c := NewController(nil)
	moves := []struct {
		next bool
		want Step
	}{
		{true, 2}, {true, 3}, {false, 2}, {true, 3}, {true, 4}, {true, 5}, {true, 5}, {false, 4},
	}
	for i, m := range moves {
		var got Step
		if m.next {
			got = c.Next()
		} else {
			got = c.Previous()
		}
		if got != m.want {
			t.Fatalf("move %d: step = %d, want %d", i, got, m.want)
		}
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	c := NewController(nil)
	c.SetField("firstName", "Ella")

	snap := c.Snapshot()
	c.SetField("firstName", "Changed")
	c.Next()

	if snap.Get("firstName") != "Ella" {
		t.Errorf("snapshot field changed to %q", snap.Get("firstName"))
	}
	if snap.Step != StepPersonal {
		t.Errorf("snapshot step changed to %d", snap.Step)
	}

	snap.Fields["lastName"] = "Mutated"
	if c.Field("lastName") != "" {
		t.Errorf("controller affected by snapshot mutation: %q", c.Field("lastName"))
	}
}

func TestReset(t *testing.T) {
	c := NewController(nil)
	c.SetField("firstName", "Ella")
	c.SetField("extra", "x")
	c.Next()
	c.Next()

	c.Reset()

	if c.Step() != StepPersonal {
		t.Errorf("Step after reset = %d, want 1", c.Step())
	}
	if c.Field("firstName") != "" {
		t.Errorf("firstName after reset = %q", c.Field("firstName"))
	}
	if _, ok := c.Snapshot().Fields["extra"]; ok {
		t.Error("non-catalog field survived reset")
	}
}

func TestLoad(t *testing.T) {
	c := NewController(nil)
	c.SetField("city", "Tuba City")
	c.Next()

	c.Load(map[string]string{"firstName": "Ella"})

	if c.Field("firstName") != "Ella" {
		t.Errorf("firstName = %q, want Ella", c.Field("firstName"))
	}
	if c.Field("city") != "" {
		t.Errorf("city = %q, want empty after load", c.Field("city"))
	}
	if c.Step() != StepPersonal {
		t.Errorf("Step = %d, want 1", c.Step())
	}
}

func TestSnapshotJSON(t *testing.T) {
	snap := Snapshot{Step: StepAddress, Fields: map[string]string{"zipCode": "86503", "city": "Chinle"}}

	got := snap.JSON()
	want := "{\n  \"city\": \"Chinle\",\n  \"zipCode\": \"86503\"\n}"
	if got != want {
		t.Errorf("JSON = %q, want %q", got, want)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestSnapshotJSON_Empty(t *testing.T) {
	if got := (Snapshot{}).JSON(); strings.TrimSpace(got) != "{}" {
		t.Errorf("JSON = %q, want {}", got)
	}
}
