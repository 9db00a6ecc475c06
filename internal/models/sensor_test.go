package models

import (
	"math"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		ph        float64
		turbidity float64
		tds       float64
		expected  SafetyTier
	}{
		{name: "Neutral clear water is safe", ph: 7.2, turbidity: 2.0, tds: 350, expected: TierSafe},
		{name: "Lower pH bound is inclusive", ph: 6.5, turbidity: 0, tds: 0, expected: TierSafe},
		{name: "Upper pH bound is inclusive", ph: 8.5, turbidity: 2.99, tds: 600, expected: TierSafe},
		{name: "TDS 600 is still safe", ph: 7, turbidity: 1, tds: 600, expected: TierSafe},
		{name: "Turbidity 3 falls to moderate", ph: 7, turbidity: 3, tds: 100, expected: TierModerate},
		{name: "Turbidity 5 is moderate", ph: 7, turbidity: 5, tds: 100, expected: TierModerate},
		{name: "TDS 601 is moderate", ph: 7, turbidity: 1, tds: 601, expected: TierModerate},
		{name: "TDS 900 is moderate", ph: 7, turbidity: 1, tds: 900, expected: TierModerate},
		{name: "Acidic but clear is moderate", ph: 5.0, turbidity: 1, tds: 200, expected: TierModerate},
		{name: "Alkaline but clear is moderate", ph: 8.51, turbidity: 0.5, tds: 200, expected: TierModerate},
		{name: "Turbidity above 5 is unsafe", ph: 7, turbidity: 5.01, tds: 100, expected: TierUnsafe},
		{name: "TDS above 900 is unsafe", ph: 7, turbidity: 1, tds: 901, expected: TierUnsafe},
		{name: "Contamination spike is unsafe", ph: 4.0, turbidity: 9.0, tds: 1000, expected: TierUnsafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := Classify(tt.ph, tt.turbidity, tt.tds)
			if tier != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tier)
			}
		})
	}
}

func TestClassify_SafeBand(t *testing.T) {
	for ph := 6.5; ph <= 8.5; ph += 0.25 {
		for turbidity := 0.0; turbidity < 3; turbidity += 0.5 {
			for tds := 0.0; tds <= 600; tds += 100 {
				if tier := Classify(ph, turbidity, tds); tier != TierSafe {
					t.Fatalf("Expected Safe for (%v, %v, %v), got %v", ph, turbidity, tds, tier)
				}
			}
		}
	}
}

func TestClassify_TurbidityThreeNeverSafe(t *testing.T) {
	for ph := 6.5; ph <= 8.5; ph += 0.5 {
		for tds := 0.0; tds <= 600; tds += 150 {
			if tier := Classify(ph, 3, tds); tier != TierModerate {
				t.Fatalf("Expected Moderate for (%v, 3, %v), got %v", ph, tds, tier)
			}
		}
	}
}

func TestQualityIndex(t *testing.T) {
	tests := []struct {
		name      string
		ph        float64
		turbidity float64
		tds       float64
		expected  int
	}{
		{name: "Perfect water scores 100", ph: 7, turbidity: 0, tds: 0, expected: 100},
		{name: "Typical safe reading", ph: 7.2, turbidity: 2.0, tds: 350, expected: 75},
		{name: "Fractional result is floored", ph: 6.5, turbidity: 2.99, tds: 600, expected: 59},
		{name: "Contamination clamps to 0", ph: 4.0, turbidity: 9.0, tds: 1000, expected: 0},
		{name: "Extreme pH clamps to 0", ph: 14, turbidity: 10, tds: 1200, expected: 0},
		{name: "Out of domain pH still clamps", ph: -50, turbidity: 0, tds: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := QualityIndex(tt.ph, tt.turbidity, tt.tds)
			if score != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, score)
			}
		})
	}
}

func TestQualityIndex_Bounds(t *testing.T) {
	for ph := 0.0; ph <= 14; ph += 0.5 {
		for turbidity := 0.0; turbidity <= 12; turbidity += 1.5 {
			for tds := 0.0; tds <= 1500; tds += 250 {
				score := QualityIndex(ph, turbidity, tds)
				if score < 0 || score > 100 {
					t.Fatalf("Score %d out of range for (%v, %v, %v)", score, ph, turbidity, tds)
				}
			}
		}
	}
}

func TestQualityIndex_Monotonic(t *testing.T) {
	prev := math.MaxInt
	for dev := 0.0; dev <= 7; dev += 0.1 {
		score := QualityIndex(7+dev, 0.5, 100)
		if score > prev {
			t.Fatalf("Score increased with pH deviation %v: %d > %d", dev, score, prev)
		}
		prev = score
	}

	prev = math.MaxInt
	for turbidity := 0.0; turbidity <= 15; turbidity += 0.25 {
		score := QualityIndex(7, turbidity, 100)
		if score > prev {
			t.Fatalf("Score increased with turbidity %v: %d > %d", turbidity, score, prev)
		}
		prev = score
	}

	prev = math.MaxInt
	for tds := 0.0; tds <= 5000; tds += 37 {
		score := QualityIndex(7, 0.5, tds)
		if score > prev {
			t.Fatalf("Score increased with tds %v: %d > %d", tds, score, prev)
		}
		prev = score
	}
}

func TestSafetyTier_Recommendation(t *testing.T) {
	if TierSafe.Recommendation() != "Safe for drinking and domestic use." {
		t.Errorf("Unexpected Safe recommendation: %s", TierSafe.Recommendation())
	}
	if TierModerate.Recommendation() != "Boil water before drinking." {
		t.Errorf("Unexpected Moderate recommendation: %s", TierModerate.Recommendation())
	}
	if TierUnsafe.Recommendation() != "Do NOT consume. Inform authorities." {
		t.Errorf("Unexpected Unsafe recommendation: %s", TierUnsafe.Recommendation())
	}
}

func TestNewEvaluation(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	eval := NewEvaluation(Reading{Ph: 7.2, Turbidity: 2.0, TDS: 350}, "Indore City", SourceManual, now)

	if eval.Tier != TierSafe {
		t.Errorf("Expected Safe, got %v", eval.Tier)
	}
	if eval.Index != 75 {
		t.Errorf("Expected WQI 75, got %d", eval.Index)
	}
	if eval.Recommendation != TierSafe.Recommendation() {
		t.Errorf("Expected recommendation to follow tier, got %q", eval.Recommendation)
	}
	if eval.Alert != nil {
		t.Error("Expected no alert on a fresh evaluation")
	}
}

func TestSensorData_ValidateReading(t *testing.T) {
	tests := []struct {
		name     string
		data     SensorData
		expected bool
	}{
		{name: "Valid reading", data: SensorData{Ph: 7, Turbidity: 1, TDS: 300}, expected: true},
		{name: "pH above 14", data: SensorData{Ph: 14.1, Turbidity: 1, TDS: 300}, expected: false},
		{name: "Negative pH", data: SensorData{Ph: -0.1, Turbidity: 1, TDS: 300}, expected: false},
		{name: "Negative turbidity", data: SensorData{Ph: 7, Turbidity: -1, TDS: 300}, expected: false},
		{name: "Negative TDS", data: SensorData{Ph: 7, Turbidity: 1, TDS: -5}, expected: false},
		{name: "TDS at ceiling", data: SensorData{Ph: 7, Turbidity: 1, TDS: MaxTDS}, expected: true},
		{name: "Huge TDS", data: SensorData{Ph: 7, Turbidity: 1, TDS: 1e300}, expected: false},
		{name: "Infinite TDS", data: SensorData{Ph: 7, Turbidity: 1, TDS: math.Inf(1)}, expected: false},
		{name: "NaN pH", data: SensorData{Ph: math.NaN(), Turbidity: 1, TDS: 100}, expected: false},
		{name: "NaN turbidity", data: SensorData{Ph: 7, Turbidity: math.NaN(), TDS: 100}, expected: false},
		{name: "Infinite turbidity", data: SensorData{Ph: 7, Turbidity: math.Inf(1), TDS: 100}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.ValidateReading(); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSensorData_ToReadingRoundsTDS(t *testing.T) {
	data := SensorData{Ph: 7.1, Turbidity: 0.4, TDS: 349.6}
	reading := data.ToReading()
	if reading.TDS != 350 {
		t.Errorf("Expected TDS 350, got %d", reading.TDS)
	}
}

func TestNewAlertRecord_TruncatesToSecond(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 30, 15, 987654321, time.UTC)
	record := NewAlertRecord(Reading{Ph: 4, Turbidity: 9, TDS: 1000}, "Narmada River", now)

	if record.Time.Nanosecond() != 0 {
		t.Errorf("Expected second precision, got %v", record.Time)
	}
	if record.Location != "Narmada River" {
		t.Errorf("Expected location 'Narmada River', got '%s'", record.Location)
	}
	if record.Reading() != (Reading{Ph: 4, Turbidity: 9, TDS: 1000}) {
		t.Errorf("Unexpected reading %v", record.Reading())
	}
}
