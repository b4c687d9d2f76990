package assistant

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedDeliversInOrder(t *testing.T) {
	f := NewFeed()

	var got []string
	unsubscribe := f.Subscribe(func(s string) { got = append(got, s) })

	f.Publish("one")
	f.Publish("two")
	unsubscribe()
	unsubscribe()
	f.Publish("three")

	assert.Equal(t, []string{"one", "two"}, got)
	assert.Equal(t, []string{"one", "two", "three"}, f.Entries())
}

func TestFeedLateSubscriberSeesOnlyNewEntries(t *testing.T) {
	f := NewFeed()
	f.Publish("early")

	var got []string
	f.Subscribe(func(s string) { got = append(got, s) })
	f.Publish("late")

	assert.Equal(t, []string{"late"}, got)
}

func TestFeedConcurrentPublishers(t *testing.T) {
	f := NewFeed()

	var mu sync.Mutex
	var delivered []string
	f.Subscribe(func(s string) {
		mu.Lock()
		delivered = append(delivered, s)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				f.Publish(fmt.Sprintf("%d-%d", i, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.Entries(), 400)
	assert.Equal(t, f.Entries(), delivered, "subscribers see entries in publish order")
}
