package analysis

import (
	"math/rand"
	"testing"
)

func timelineAt(timestamps ...float64) []Detection {
	tl := make([]Detection, 0, len(timestamps))
	for i, ts := range timestamps {
		tl = append(tl, Detection{
			TimestampSeconds: ts,
			FrameNumber:      i,
			ClassName:        "car",
		})
	}
	return tl
}

func TestMergeIntervals(t *testing.T) {
	tests := []struct {
		name string
		ts   []float64
		gap  float64
		want []Interval
	}{
		{
			// 连续帧合并为单区间
			name: "dense frames single interval",
			ts:   []float64{0.0, 0.1, 0.2},
			gap:  1.0,
			want: []Interval{{0.0, 0.2}},
		},
		{
			// 超出容差拆为两段
			name: "distant detections split",
			ts:   []float64{0.0, 5.0},
			gap:  1.0,
			want: []Interval{{0.0, 0.0}, {5.0, 5.0}},
		},
		{
			name: "single detection",
			ts:   []float64{2.5},
			gap:  1.0,
			want: []Interval{{2.5, 2.5}},
		},
		{
			// 间隔恰好等于容差时合并
			name: "gap equal to tolerance merges",
			ts:   []float64{0.0, 1.0, 2.0},
			gap:  1.0,
			want: []Interval{{0.0, 2.0}},
		},
		{
			// 以区间末端为基准,等距漂移不拆散区间
			name: "steady drift stays merged",
			ts:   []float64{0.0, 0.9, 1.8, 2.7, 3.6},
			gap:  1.0,
			want: []Interval{{0.0, 3.6}},
		},
		{
			name: "zero tolerance splits on any gap",
			ts:   []float64{0.0, 0.0, 0.1},
			gap:  0,
			want: []Interval{{0.0, 0.0}, {0.1, 0.1}},
		},
		{
			name: "mixed",
			ts:   []float64{1.0, 1.5, 2.0, 10.0, 10.2, 30.0},
			gap:  1.0,
			want: []Interval{{1.0, 2.0}, {10.0, 10.2}, {30.0, 30.0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeIntervals(timelineAt(tt.ts...), tt.gap)
			if len(got) != len(tt.want) {
				t.Fatalf("intervals = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i].StartSeconds != tt.want[i].StartSeconds || got[i].EndSeconds != tt.want[i].EndSeconds {
					t.Fatalf("interval %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMergeIntervalsEmpty(t *testing.T) {
	if got := MergeIntervals(nil, 1.0); len(got) != 0 {
		t.Fatalf("empty timeline intervals = %v, want none", got)
	}
}

// 区间性质:数量介于 1..n,互不相交且有序,端点取自真实时间戳,
// 并集覆盖每个输入时间戳
func TestMergeIntervalsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		n := 1 + rng.Intn(40)
		ts := make([]float64, n)
		var cur float64
		for i := range ts {
			cur += rng.Float64() * 3
			ts[i] = round3(cur)
		}
		gap := rng.Float64() * 2

		tl := timelineAt(ts...)
		got := MergeIntervals(tl, gap)

		if len(got) < 1 || len(got) > n {
			t.Fatalf("round %d: %d intervals for %d detections", round, len(got), n)
		}
		seen := make(map[float64]bool, n)
		for _, v := range ts {
			seen[v] = true
		}
		prevEnd := -1.0
		for i, iv := range got {
			if iv.StartSeconds > iv.EndSeconds {
				t.Fatalf("round %d: interval %d inverted: %v", round, i, iv)
			}
			if !seen[iv.StartSeconds] || !seen[iv.EndSeconds] {
				t.Fatalf("round %d: interval %d bounds not from input: %v", round, i, iv)
			}
			if iv.StartSeconds <= prevEnd {
				t.Fatalf("round %d: interval %d overlaps or unordered", round, i)
			}
			prevEnd = iv.EndSeconds
		}
		for _, v := range ts {
			covered := false
			for _, iv := range got {
				if v >= iv.StartSeconds && v <= iv.EndSeconds {
					covered = true
					break
				}
			}
			if !covered {
				t.Fatalf("round %d: timestamp %v not covered", round, v)
			}
		}

		// 幂等
		again := MergeIntervals(tl, gap)
		if len(again) != len(got) {
			t.Fatalf("round %d: merge not deterministic", round)
		}
		for i := range got {
			if again[i] != got[i] {
				t.Fatalf("round %d: merge not deterministic at %d", round, i)
			}
		}
	}
}

func TestResultSetIntervals(t *testing.T) {
	agg := NewAggregator("demo.mp4", VideoProperties{FPS: 10, TotalFrames: 100}, Settings{})
	for _, frame := range []int{0, 1, 2, 50} {
		if err := agg.Ingest(frame, []RawDetection{{ClassName: "car", Confidence: 0.9, Box: carBox()}}); err != nil {
			t.Fatalf("Ingest error = %v", err)
		}
	}
	rs := agg.Finish()

	got := rs.Intervals("car", 1.0)
	want := []Interval{{0.0, 0.2}, {5.0, 5.0}}
	if len(got) != len(want) {
		t.Fatalf("intervals = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("interval %d = %v, want %v", i, got[i], want[i])
		}
	}
	if d := got[0].Duration(); d != 0.2 {
		t.Errorf("duration = %v, want 0.2", d)
	}

	// 未知类别返回空,不报错
	if iv := rs.Intervals("plane", 1.0); len(iv) != 0 {
		t.Fatalf("unknown class intervals = %v, want none", iv)
	}
}
