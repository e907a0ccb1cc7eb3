package mic

import "time"

// FakeSource replays fixed PCM blocks without spawning a subprocess.
type FakeSource struct {
	Blocks      [][]byte
	FirstByte   uint64
	haveFirst   bool
	stopCh      chan struct{}
}

func NewFakeSource(blocks [][]byte, firstByteNs uint64) *FakeSource {
	return &FakeSource{Blocks: blocks, FirstByte: firstByteNs}
}

func (f *FakeSource) Start(onBlock func([]byte)) error {
	f.stopCh = make(chan struct{})
	go func() {
		for _, b := range f.Blocks {
			select {
			case <-f.stopCh:
				return
			default:
			}
			f.haveFirst = true
			if onBlock != nil {
				onBlock(b)
			}
			time.Sleep(time.Millisecond)
		}
	}()
	return nil
}

func (f *FakeSource) Stop() error {
	if f.stopCh != nil {
		close(f.stopCh)
	}
	return nil
}

func (f *FakeSource) FirstByteNs() (uint64, bool) {
	return f.FirstByte, f.haveFirst
}
