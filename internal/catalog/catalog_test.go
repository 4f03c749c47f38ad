package catalog

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() != 7 {
		t.Fatalf("expected 7 steps, got %d", c.Len())
	}

	want := []string{
		"generating proxy",
		"proxy assigned",
		"generating email",
		"requesting phone number",
		"starting script",
		"opening app",
		"creating account",
	}
	for i, label := range c.Labels() {
		if label != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], label)
		}
	}
}

func TestRender(t *testing.T) {
	c := Default()
	values := map[string]string{FieldLocation: "Dallas, Texas"}

	tests := []struct {
		index int
		want  string
	}{
		{0, "Generating proxy for Dallas, Texas"},
		{1, "Proxy assigned"},
		{3, "Phone number received"},
		{6, "Account creation started"},
	}
	for _, tt := range tests {
		step, ok := c.At(tt.index)
		if !ok {
			t.Fatalf("step %d missing", tt.index)
		}
		if got := step.Render(values); got != tt.want {
			t.Errorf("step %d: expected %q, got %q", tt.index, tt.want, got)
		}
	}

	step, _ := c.At(0)
	if got := step.Render(nil); got != "Generating proxy for " {
		t.Errorf("missing field should render empty, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	step, idx, ok := c.Lookup("opening app")
	if !ok || idx != 5 || step.Format != "Opening app" {
		t.Errorf("unexpected lookup result: %+v %d %v", step, idx, ok)
	}

	if _, idx, ok := c.Lookup("unknown"); ok || idx != -1 {
		t.Errorf("expected miss, got %d %v", idx, ok)
	}

	if _, ok := c.At(-1); ok {
		t.Error("expected At(-1) to miss")
	}
	if _, ok := c.At(c.Len()); ok {
		t.Error("expected At(Len) to miss")
	}
}

func TestNewRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		defs []StepDef
		want error
	}{
		{"empty", nil, ErrEmptyCatalog},
		{"blank label", []StepDef{{Label: " ", Format: "x"}}, ErrEmptyLabel},
		{"duplicate", []StepDef{{Label: "a", Format: "x"}, {Label: "a", Format: "y"}}, ErrDuplicateLabel},
		{"missing field", []StepDef{{Label: "a", Format: "for %s"}}, ErrTemplateArity},
		{"extra field", []StepDef{{Label: "a", Format: "plain", Fields: []string{FieldCity}}}, ErrTemplateArity},
		{"non-string verb", []StepDef{{Label: "a", Format: "%d", Fields: []string{FieldCity}}}, ErrTemplateArity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStepsReturnsCopy(t *testing.T) {
	c := Default()
	steps := c.Steps()
	steps[0].Label = "mutated"
	steps[0].Fields[0] = "mutated"

	step, _ := c.At(0)
	if step.Label != "generating proxy" || step.Fields[0] != FieldLocation {
		t.Errorf("catalog was mutated through Steps(): %+v", step)
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Default())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var steps []StepDef
	if err := json.Unmarshal(data, &steps); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(steps) != 7 || steps[0].Fields[0] != FieldLocation {
		t.Errorf("unexpected catalog JSON: %s", data)
	}
}
