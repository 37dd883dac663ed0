package coerce

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNumberUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		valid    bool
		expected string
	}{
		{name: "plain number", input: `12.5`, valid: true, expected: "12.5"},
		{name: "numeric string", input: `"7"`, valid: true, expected: "7"},
		{name: "thousands separator", input: `"1,250.75"`, valid: true, expected: "1250.75"},
		{name: "null", input: `null`, valid: false},
		{name: "empty string", input: `""`, valid: false},
		{name: "NaN string", input: `"NaN"`, valid: false},
		{name: "garbage string", input: `"ten"`, valid: false},
		{name: "boolean", input: `true`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			if err := json.Unmarshal([]byte(tt.input), &n); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n.Valid != tt.valid {
				t.Fatalf("expected valid=%v, got %v", tt.valid, n.Valid)
			}
			if tt.valid && n.Value.String() != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, n.Value)
			}
		})
	}
}

func TestNumberMarshal(t *testing.T) {
	data, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: NewNumber(3.25)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":3.25,"b":null}` {
		t.Errorf("unexpected json: %s", data)
	}
}

func TestDefaults(t *testing.T) {
	def := decimal.NewFromInt(35)

	if got := Or(Number{}, def); !got.Equal(def) {
		t.Errorf("expected default for absent, got %s", got)
	}
	if got := Positive(FromInt(0), def); !got.Equal(def) {
		t.Errorf("expected default for zero rate, got %s", got)
	}
	if got := Positive(FromInt(40), def); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected 40, got %s", got)
	}
	if got := Percent(FromInt(-5), def); !got.IsZero() {
		t.Errorf("expected negative percent floored to 0, got %s", got)
	}
	if n := NewNumber(math.NaN()); n.Valid {
		t.Error("expected NaN to be absent")
	}
}

func TestClamp(t *testing.T) {
	lo, hi := decimal.NewFromInt(250), decimal.NewFromInt(450)
	tests := []struct {
		in, expected int64
	}{
		{100, 250},
		{350, 350},
		{600, 450},
	}
	for _, tt := range tests {
		if got := Clamp(decimal.NewFromInt(tt.in), lo, hi); !got.Equal(decimal.NewFromInt(tt.expected)) {
			t.Errorf("Clamp(%d): expected %d, got %s", tt.in, tt.expected, got)
		}
	}
}
