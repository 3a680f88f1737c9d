package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEvaluateThreshold(t *testing.T) {
	ceiling := dec("77700")

	tests := []struct {
		name        string
		revenue     string
		wantPercent string
		wantAlert   bool
	}{
		{"no revenue", "0", "0", false},
		{"well below", "38850", "50", false},
		{"just under the alert line", "62000", "79.79", false},
		{"exactly at the alert line", "62160", "80", true},
		{"above the alert line", "70000", "90.09", true},
		{"over the ceiling", "80000", "102.96", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateThreshold(2024, dec(tt.revenue), ceiling, 80)
			if !got.Percent.Round(2).Equal(dec(tt.wantPercent)) {
				t.Errorf("percent = %s, want %s", got.Percent.Round(2), tt.wantPercent)
			}
			if got.Alert != tt.wantAlert {
				t.Errorf("alert = %v, want %v", got.Alert, tt.wantAlert)
			}
		})
	}
}

func TestEvaluateThresholdZeroCeiling(t *testing.T) {
	got := EvaluateThreshold(2024, dec("50000"), decimal.Zero, 80)
	if !got.Percent.IsZero() {
		t.Errorf("percent = %s, want 0", got.Percent)
	}
	if got.Alert {
		t.Error("zero ceiling must never alert")
	}
}

func TestEvaluateThresholdCarriesInputs(t *testing.T) {
	got := EvaluateThreshold(2023, dec("1000"), dec("77700"), 80)
	if got.Year != 2023 || !got.Revenue.Equal(dec("1000")) || !got.Ceiling.Equal(dec("77700")) {
		t.Errorf("status did not carry its inputs: %+v", got)
	}
}
