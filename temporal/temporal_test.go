package temporal

import (
	"testing"

	"github.com/TheGonzalezDesigns/waldo-vision/chunk"
)

func greyAgg(cx, cy int, lum float64) chunk.Aggregate {
	return chunk.Aggregate{CX: cx, CY: cy, MeanLum: lum, MeanSat: 0, HueDefined: false}
}

func TestModel_CalibratesThenStable(t *testing.T) {
	m := NewModel(0.02, 1.0/30, 10)
	for i := 0; i < 10; i++ {
		st := m.Observe(greyAgg(0, 0, 0.5), 3.0)
		if st.Kind != Calibrating {
			t.Fatalf("frame %d: expected Calibrating, got %v", i, st.Kind)
		}
	}
	st := m.Observe(greyAgg(0, 0, 0.5), 3.0)
	if st.Kind != Stable {
		t.Fatalf("expected Stable after calibration, got %v", st.Kind)
	}
}

func TestModel_FlagsAnomalyOnLargeJump(t *testing.T) {
	m := NewModel(0.02, 1.0/30, 10)
	for i := 0; i < 10; i++ {
		m.Observe(greyAgg(0, 0, 0.5), 3.0)
	}
	st := m.Observe(greyAgg(0, 0, 0.95), 3.0)
	if st.Kind != Anomalous {
		t.Fatalf("expected Anomalous on large jump, got %v (score %v)", st.Kind, st.Score)
	}
}

func TestModel_FreezesStatsUnderAnomaly(t *testing.T) {
	m := NewModel(0.02, 1.0/30, 5)
	for i := 0; i < 5; i++ {
		m.Observe(greyAgg(0, 0, 0.5), 3.0)
	}
	meanBefore := m.meanLum
	m.Observe(greyAgg(0, 0, 0.95), 3.0)
	if m.meanLum != meanBefore {
		t.Fatalf("expected mean to stay frozen across anomalous observation: before=%v after=%v", meanBefore, m.meanLum)
	}
}

func TestBank_StatusMapLengthMatchesGrid(t *testing.T) {
	bk := NewBank(4, 3, 0.02, 1.0/30, 5, 3.0)
	aggs := make([]chunk.Aggregate, 12)
	for i := range aggs {
		aggs[i] = greyAgg(i%4, i/4, 0.5)
	}
	statuses, heatmap := bk.Observe(aggs)
	if len(statuses) != 12 || len(heatmap) != 12 {
		t.Fatalf("expected length 12 status/heatmap, got %d/%d", len(statuses), len(heatmap))
	}
}

func TestBank_AllCalibratedAfterCalibrationFrames(t *testing.T) {
	bk := NewBank(2, 2, 0.02, 1.0/30, 3, 3.0)
	aggs := make([]chunk.Aggregate, 4)
	for i := range aggs {
		aggs[i] = greyAgg(i%2, i/2, 0.5)
	}
	for i := 0; i < 2; i++ {
		bk.Observe(aggs)
		if bk.AllCalibrated() {
			t.Fatalf("should not be calibrated before %d frames (frame %d)", 3, i)
		}
	}
	bk.Observe(aggs)
	if !bk.AllCalibrated() {
		t.Fatalf("expected calibration complete after calibration window")
	}
}
