package passsched

import "testing"

func TestScheduleIsPermutation(t *testing.T) {
	for b := 1; b <= 14; b++ {
		n := 1 << uint(b)
		sched := Schedule(n)
		if len(sched) != n {
			t.Fatalf("n=%d: schedule length %d, want %d", n, len(sched), n)
		}
		seen := make([]bool, n)
		for _, j := range sched {
			if j < 0 || j >= n {
				t.Fatalf("n=%d: index %d out of range", n, j)
			}
			if seen[j] {
				t.Fatalf("n=%d: index %d visited twice", n, j)
			}
			seen[j] = true
		}
	}
}

func TestScheduleFirstPassIsEvenIndices(t *testing.T) {
	sched := Schedule(8)
	firstPass := sched[:4]
	want := map[int]bool{0: true, 2: true, 4: true, 6: true}
	for _, j := range firstPass {
		if !want[j] {
			t.Fatalf("first pass contains %d, want only even indices <8", j)
		}
	}
}

func TestScheduleSingleElement(t *testing.T) {
	sched := Schedule(1)
	if len(sched) != 1 || sched[0] != 0 {
		t.Fatalf("Schedule(1) = %v, want [0]", sched)
	}
}
