package editor

import (
	"testing"

	"github.com/google/uuid"
)

func TestChangedReflexivity(t *testing.T) {
	t.Parallel()

	f := Fields{Description: "Entry door", Quantity: 2, Price: 10, LaborHours: 1.5, Hardware: 5}
	if Changed(f, f) {
		t.Fatal("identical fields reported as changed")
	}
}

func TestChangedFlipsPerTrackedField(t *testing.T) {
	t.Parallel()

	base := Fields{Description: "Entry door", Quantity: 2, Price: 10, LaborHours: 1.5, Hardware: 5}

	cases := []struct {
		name   string
		field  Field
		mutate func(*Fields)
	}{
		{"description", FieldDescription, func(f *Fields) { f.Description = "Back door" }},
		{"quantity", FieldQuantity, func(f *Fields) { f.Quantity = 3 }},
		{"price", FieldPrice, func(f *Fields) { f.Price = 12.5 }},
		{"labor_hours", FieldLaborHours, func(f *Fields) { f.LaborHours = 2 }},
		{"hardware", FieldHardware, func(f *Fields) { f.Hardware = 0 }},
	}

	for _, tc := range cases {
		edited := base
		tc.mutate(&edited)
		if !Changed(base, edited) {
			t.Fatalf("%s change not detected", tc.name)
		}
		changed := ChangedFields(base, edited)
		if len(changed) != 1 || changed[0] != tc.field {
			t.Fatalf("%s: changed fields = %v", tc.name, changed)
		}
	}
}

func TestChangedIgnoresIdentityAttributes(t *testing.T) {
	t.Parallel()

	a := LineItem{ID: uuid.New(), Position: 1, Description: "Entry door", Quantity: 2, Price: 10}
	b := LineItem{ID: uuid.New(), Position: 7, Description: "Entry door", Quantity: 2, Price: 10}

	if Changed(a.Fields(), b.Fields()) {
		t.Fatal("id and position must not participate in change detection")
	}
}

func TestChangedComparesNumbersNotStrings(t *testing.T) {
	t.Parallel()

	base := Fields{Description: "Entry door", Quantity: 1, Price: 1}
	edited := base
	// "1" and "1.0" parse to the same float and must not register.
	edited.Quantity = CoerceNumber("1.0")
	if Changed(base, edited) {
		t.Fatal("equivalent numeric input reported as a change")
	}
}

func TestCoerceNumber(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"12.5":  12.5,
		" 3 ":   3,
		"":      0,
		"abc":   0,
		"1e2":   100,
		"-4.25": -4.25,
	}
	for raw, want := range cases {
		if got := CoerceNumber(raw); got != want {
			t.Fatalf("CoerceNumber(%q) = %v, want %v", raw, got, want)
		}
	}
}
