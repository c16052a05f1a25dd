package refresh

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(n int64) time.Time {
	return time.UnixMilli(n)
}

func TestShouldRefreshWithoutEntry(t *testing.T) {
	c := NewCache()
	assert.True(t, c.ShouldRefresh("security", time.Hour, ms(0)))
	assert.True(t, c.ShouldRefresh("security", 0, ms(0)))
}

func TestShouldRefreshAroundTTL(t *testing.T) {
	const ttl = 300000 * time.Millisecond

	c := NewCache()
	c.MarkRefreshed("security", ms(1000))

	tests := []struct {
		name string
		now  int64
		want bool
	}{
		{"right after mark", 1000, false},
		{"within ttl", 200000, false},
		{"one ms before expiry", 300999, false},
		{"exactly at expiry", 301000, true},
		{"past expiry", 301001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ShouldRefresh("security", ttl, ms(tt.now)))
		})
	}
}

func TestMarkRefreshedOverwrites(t *testing.T) {
	c := NewCache()
	c.MarkRefreshed("apps", ms(1000))
	c.MarkRefreshed("apps", ms(500000))

	last, ok := c.LastRefreshed("apps")
	require.True(t, ok)
	assert.Equal(t, ms(500000), last)
	assert.False(t, c.ShouldRefresh("apps", 5*time.Minute, ms(600000)))
}

func TestTagsAreIndependent(t *testing.T) {
	c := NewCache()
	c.MarkRefreshed("security", ms(0))

	assert.False(t, c.ShouldRefresh("security", time.Minute, ms(1000)))
	assert.True(t, c.ShouldRefresh("apps", time.Minute, ms(1000)))
}

func TestTagsSorted(t *testing.T) {
	c := NewCache()
	c.MarkRefreshed("security", ms(0))
	c.MarkRefreshed("apps", ms(0))
	c.MarkRefreshed("disk", ms(0))

	assert.Equal(t, []string{"apps", "disk", "security"}, c.Tags())
}

func TestLastRefreshedUnknown(t *testing.T) {
	_, ok := NewCache().LastRefreshed("nope")
	assert.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag := fmt.Sprintf("tag-%d", i%4)
			for j := 0; j < 200; j++ {
				c.MarkRefreshed(tag, ms(int64(j)))
				c.ShouldRefresh(tag, time.Second, ms(int64(j)))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Tags(), 4)
}

func TestPolicyTTL(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		tag    string
		want   time.Duration
	}{
		{"zero policy", Policy{}, "apps", DefaultTTL},
		{"default set", Policy{Default: time.Minute}, "apps", time.Minute},
		{
			"per tag wins",
			Policy{Default: time.Minute, PerTag: map[string]time.Duration{"security": 30 * time.Second}},
			"security",
			30 * time.Second,
		},
		{
			"non-positive per tag ignored",
			Policy{Default: time.Minute, PerTag: map[string]time.Duration{"security": 0}},
			"security",
			time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.TTL(tt.tag))
		})
	}
}

func TestResetForgetsTags(t *testing.T) {
	c := NewCache()
	now := time.Unix(1000, 0)
	c.MarkRefreshed("security", now)
	c.MarkRefreshed("apps", now)

	c.Reset()

	assert.Empty(t, c.Tags())
	assert.True(t, c.ShouldRefresh("security", DefaultTTL, now))
}
