package fastid

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a settable time source for driving a worker's tick
// computation deterministically.
type fakeClock struct {
	ns atomic.Int64
}

func (c *fakeClock) now() time.Time {
	return time.Unix(0, c.ns.Load())
}

// setTick positions the clock at the start of the given tick, relative
// to an epoch of 0.
func (c *fakeClock) setTick(tick int64) {
	c.ns.Store(tick << tickShift)
}

func TestMask(t *testing.T) {
	tests := []struct {
		name string
		bits uint64
		want uint64
	}{
		{name: "zero width", bits: 0, want: 0},
		{name: "one bit", bits: 1, want: 1},
		{name: "seven bits", bits: 7, want: 127},
		{name: "sixteen bits", bits: 16, want: 1<<16 - 1},
		{name: "forty bits", bits: 40, want: 1<<40 - 1},
		{name: "sixty-three bits", bits: 63, want: 1<<63 - 1},
		{name: "full width", bits: 64, want: ^uint64(0)},
		{name: "beyond full width", bits: 100, want: ^uint64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mask(tt.bits); got != tt.want {
				t.Errorf("mask(%d) = %#x, want %#x", tt.bits, got, tt.want)
			}
		})
	}
}

func TestGenerate_StrictlyIncreasing(t *testing.T) {
	worker := New(1)

	prev := worker.Generate()
	for i := 0; i < 1000; i++ {
		id := worker.Generate()
		if id <= prev {
			t.Fatalf("call %d: id %d not greater than previous %d", i, id, prev)
		}
		prev = id
	}
}

func TestGenerate_MachineIDField(t *testing.T) {
	tests := []struct {
		name        string
		machineBits uint64
		machineID   uint64
		want        uint64
	}{
		{name: "in range", machineBits: 16, machineID: 12345, want: 12345},
		{name: "zero", machineBits: 16, machineID: 0, want: 0},
		{name: "max for width", machineBits: 16, machineID: 0xffff, want: 0xffff},
		{name: "truncated to width", machineBits: 8, machineID: 0x1ff, want: 0xff},
		{name: "zero width", machineBits: 0, machineID: 42, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			worker := WithBits(40, tt.machineBits, 7, tt.machineID)
			for i := 0; i < 10; i++ {
				id := worker.Generate()
				if got := id.Uint64() & mask(tt.machineBits); got != tt.want {
					t.Fatalf("machine field = %d, want %d", got, tt.want)
				}
			}
		})
	}
}

func TestGenerate_NeverNegative(t *testing.T) {
	worker := New(1)
	for i := 0; i < 5000; i++ {
		if id := worker.Generate(); id < 0 {
			t.Fatalf("call %d: negative id %d", i, id)
		}
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	const (
		goroutines = 8
		perRoutine = 2000
	)

	worker := New(7)

	var mu sync.Mutex
	seen := make(map[ID]bool, goroutines*perRoutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]ID, 0, perRoutine)
			for i := 0; i < perRoutine; i++ {
				ids = append(ids, worker.Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perRoutine {
		t.Errorf("got %d distinct ids, want %d", len(seen), goroutines*perRoutine)
	}
}

func TestGenerate_FrozenClockScenario(t *testing.T) {
	clock := &fakeClock{}
	clock.setTick(5)

	worker := WithBitsAndEpoch(10, 4, 2, 3, 0)
	worker.now = clock.now

	want := []ID{
		5<<6 | 0<<4 | 3,
		5<<6 | 1<<4 | 3,
		5<<6 | 2<<4 | 3,
		5<<6 | 3<<4 | 3,
	}
	for i, w := range want {
		if got := worker.Generate(); got != w {
			t.Fatalf("call %d: id = %d, want %d", i+1, got, w)
		}
	}

	// Sequence space for tick 5 is exhausted; the fifth call must spin
	// until the clock advances.
	done := make(chan ID, 1)
	go func() {
		done <- worker.Generate()
	}()

	select {
	case id := <-done:
		t.Fatalf("fifth call returned %d while clock was frozen", id)
	case <-time.After(50 * time.Millisecond):
	}

	clock.setTick(6)

	select {
	case id := <-done:
		if want := ID(6<<6 | 0<<4 | 3); id != want {
			t.Errorf("fifth call returned %d, want %d", id, want)
		}
	case <-time.After(time.Second):
		t.Fatal("fifth call did not return after clock advanced")
	}
}

func TestGenerate_ClockRegression(t *testing.T) {
	clock := &fakeClock{}
	clock.setTick(10)

	worker := WithBitsAndEpoch(40, 4, 7, 1, 0)
	worker.now = clock.now

	first := worker.Generate()
	if tick, seq, _ := worker.Decompose(first); tick != 10 || seq != 0 {
		t.Fatalf("first id: tick=%d seq=%d, want tick=10 seq=0", tick, seq)
	}

	// Clock runs backwards: IDs keep the stale maximum tick and advance
	// the sequence instead of packing the smaller tick.
	clock.setTick(4)

	second := worker.Generate()
	if tick, seq, _ := worker.Decompose(second); tick != 10 || seq != 1 {
		t.Errorf("post-regression id: tick=%d seq=%d, want tick=10 seq=1", tick, seq)
	}
	if second <= first {
		t.Errorf("id %d not greater than %d across clock regression", second, first)
	}
}

func TestCurrentTick_PreEpochClampsToZero(t *testing.T) {
	clock := &fakeClock{}
	clock.ns.Store(500) // well before the epoch below

	worker := WithBitsAndEpoch(40, 16, 7, 1, 1<<30)
	worker.now = clock.now

	if tick := worker.currentTick(); tick != 0 {
		t.Errorf("currentTick() = %d before epoch, want 0", tick)
	}

	id := worker.Generate()
	if tick, _, _ := worker.Decompose(id); tick != 0 {
		t.Errorf("id tick = %d before epoch, want 0", tick)
	}
}

func TestDecompose(t *testing.T) {
	clock := &fakeClock{}
	clock.setTick(99)

	worker := WithBitsAndEpoch(40, 16, 7, 54321, 0)
	worker.now = clock.now

	id := worker.Generate()
	tick, seq, machine := worker.Decompose(id)
	if tick != 99 {
		t.Errorf("tick = %d, want 99", tick)
	}
	if seq != 0 {
		t.Errorf("seq = %d, want 0", seq)
	}
	if machine != 54321 {
		t.Errorf("machine = %d, want 54321", machine)
	}

	if got := worker.Time(id); !got.Equal(time.Unix(0, 99<<tickShift)) {
		t.Errorf("Time() = %v, want %v", got, time.Unix(0, 99<<tickShift))
	}
}

func TestMachineID(t *testing.T) {
	if got := WithBits(40, 8, 7, 0x1ff).MachineID(); got != 0xff {
		t.Errorf("MachineID() = %d, want %d", got, 0xff)
	}
}
