package dashboard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsInPostingOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 1; i <= 3; i++ {
		q.Post(func() { got = append(got, i) })
	}
	q.Post(nil)

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Zero(t, q.Len())
}

func TestQueueDrainRunsNestedPosts(t *testing.T) {
	q := NewQueue()
	var got []string
	q.Post(func() {
		got = append(got, "outer")
		q.Post(func() { got = append(got, "inner") })
	})

	assert.Equal(t, 2, q.Drain())
	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestQueueWaitWakesOnPost(t *testing.T) {
	q := NewQueue()
	q.Post(func() {})

	msg := q.Wait()()
	assert.IsType(t, postedMsg{}, msg)
}

func TestQueueCloseReleasesWait(t *testing.T) {
	q := NewQueue()
	done := make(chan interface{})
	go func() { done <- q.Wait()() }()

	q.Close()
	q.Close()
	assert.Nil(t, <-done)
}

func TestQueuePostIsSafeConcurrently(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Post(func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	require.Equal(t, 50, q.Drain())
	assert.Equal(t, 50, count)
}
