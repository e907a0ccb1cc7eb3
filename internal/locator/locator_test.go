package locator

import "testing"

func TestCache_ResolvesOnceAndReuses(t *testing.T) {
	calls := 0
	c := NewCache(func() (Devices, error) {
		calls++
		return Devices{BuiltInMicrophone: "0"}, nil
	})

	d1, err := c.Get()
	if err != nil {
		t.Fatal(err)
	}
	d2, err := c.Get()
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("expected resolve to be called once, got %d", calls)
	}
	if d1 != d2 {
		t.Errorf("expected cached result to be stable: %+v vs %+v", d1, d2)
	}
}

func TestCache_InvalidateForcesReresolve(t *testing.T) {
	calls := 0
	c := NewCache(func() (Devices, error) {
		calls++
		return Devices{}, nil
	})

	c.Get()
	c.Invalidate()
	c.Get()

	if calls != 2 {
		t.Errorf("expected resolve to run again after Invalidate, got %d calls", calls)
	}
}

func TestFindEncoder_NoCandidatesAvailable(t *testing.T) {
	old := wellKnownPaths
	wellKnownPaths = nil
	t.Cleanup(func() { wellKnownPaths = old })

	t.Setenv("ENCODER_PATH", "/definitely/does/not/exist/ffmpeg")
	t.Setenv("PATH", "")

	_, err := FindEncoder()
	if err == nil {
		t.Error("expected an error when no encoder binary can be found")
	}
}
