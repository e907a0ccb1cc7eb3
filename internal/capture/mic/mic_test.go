package mic

import (
	"sync"
	"testing"
	"time"
)

func TestFakeSource_DeliversBlocksAndFirstByte(t *testing.T) {
	blocks := [][]byte{{1, 2}, {3, 4}}
	src := NewFakeSource(blocks, 1_000_000)

	var mu sync.Mutex
	var got [][]byte
	done := make(chan struct{})

	if _, ok := src.FirstByteNs(); ok {
		t.Fatal("expected no first-byte timestamp before Start")
	}

	err := src.Start(func(b []byte) {
		mu.Lock()
		got = append(got, b)
		if len(got) == len(blocks) {
			close(done)
		}
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for blocks")
	}
	src.Stop()

	ts, ok := src.FirstByteNs()
	if !ok || ts != 1_000_000 {
		t.Errorf("FirstByteNs() = (%d, %v), want (1000000, true)", ts, ok)
	}
}
