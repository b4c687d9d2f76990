package assistant

import "sync"

// Feed is the ordered stream of reasoning text observed during calls. It is
// safe for concurrent use. Subscribers are invoked synchronously in publish
// order and must not publish to the same Feed.
type Feed struct {
	publishMu sync.Mutex

	mu      sync.Mutex
	entries []string
	subs    []subscriber
	nextID  int
}

type subscriber struct {
	id int
	fn func(string)
}

func NewFeed() *Feed {
	return &Feed{}
}

// Publish appends entry and delivers it to every subscriber.
func (f *Feed) Publish(entry string) {
	f.publishMu.Lock()
	defer f.publishMu.Unlock()

	f.mu.Lock()
	f.entries = append(f.entries, entry)
	subs := append([]subscriber(nil), f.subs...)
	f.mu.Unlock()

	for _, s := range subs {
		s.fn(entry)
	}
}

// Subscribe registers fn for future entries and returns a function that
// removes it.
func (f *Feed) Subscribe(fn func(string)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs = append(f.subs, subscriber{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subs {
				if s.id == id {
					f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Entries returns a snapshot of everything published so far.
func (f *Feed) Entries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.entries...)
}
