package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token, err := newToken()
		require.NoError(t, err)
		assert.Len(t, token, 32)
		_, dup := seen[token]
		require.False(t, dup, "duplicate token %s", token)
		seen[token] = struct{}{}
	}
}

func TestDeliverMatchesOnlyItsToken(t *testing.T) {
	tr := newCorrelationTracker()

	t1, reply1, release1, err := tr.register()
	require.NoError(t, err)
	defer release1()
	t2, reply2, release2, err := tr.register()
	require.NoError(t, err)
	defer release2()
	assert.Equal(t, 2, tr.outstanding())

	require.True(t, tr.deliver(t2, []byte("second")))
	assert.Equal(t, []byte("second"), <-reply2)
	assert.Len(t, reply1, 0)

	require.True(t, tr.deliver(t1, []byte("first")))
	assert.Equal(t, []byte("first"), <-reply1)
	assert.Equal(t, 0, tr.outstanding())
}

func TestDeliverDiscardsStaleAndUnknownReplies(t *testing.T) {
	tr := newCorrelationTracker()

	token, reply, release, err := tr.register()
	require.NoError(t, err)

	assert.False(t, tr.deliver("", []byte("x")))
	assert.False(t, tr.deliver("forged", []byte("x")))

	// a duplicate reply for the same token is discarded
	assert.True(t, tr.deliver(token, []byte("x")))
	assert.False(t, tr.deliver(token, []byte("y")))
	assert.Equal(t, []byte("x"), <-reply)

	// after release a late reply matches nothing
	release()
	assert.False(t, tr.deliver(token, []byte("late")))
}

func TestReleaseWithoutReply(t *testing.T) {
	tr := newCorrelationTracker()
	token, _, release, err := tr.register()
	require.NoError(t, err)

	release()
	assert.Equal(t, 0, tr.outstanding())
	assert.False(t, tr.deliver(token, []byte("late")))
}

func TestConcurrentRegisterAndDeliver(t *testing.T) {
	tr := newCorrelationTracker()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, reply, release, err := tr.register()
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			payload := []byte(token)
			go tr.deliver(token, payload)
			assert.Equal(t, payload, <-reply)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, tr.outstanding())
}
