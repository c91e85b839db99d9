// pkg/transformer/unique_test.go
package transformer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgshield/anonymiser/pkg/model"
)

func TestTrackerReserveRejectsRepeats(t *testing.T) {
	tracker := NewTracker()
	key := Key{Table: "public.person", Column: "email"}

	assert.True(t, tracker.Reserve(key, "a@example.com"))
	assert.False(t, tracker.Reserve(key, "a@example.com"))
	assert.True(t, tracker.Reserve(key, "b@example.com"))
	assert.Equal(t, 2, tracker.Issued(key))
}

func TestTrackerKeysAreIndependent(t *testing.T) {
	tracker := NewTracker()
	email := Key{Table: "public.person", Column: "email"}
	username := Key{Table: "public.person", Column: "username"}

	assert.True(t, tracker.Reserve(email, "bob"))
	assert.True(t, tracker.Reserve(username, "bob"))
}

func TestTrackerEnsureSuffixesCollisions(t *testing.T) {
	tracker := NewTracker()
	key := Key{Table: "public.person", Column: "username"}

	assert.Equal(t, "bob", tracker.Ensure(key, "bob"))
	assert.Equal(t, "bob1", tracker.Ensure(key, "bob"))
	assert.Equal(t, "bob2", tracker.Ensure(key, "bob"))
	// A suffixed form issued earlier is never handed out again.
	assert.Equal(t, "bob3", tracker.Ensure(key, "bob3"))
}

func TestUniqueTransformerYieldsDistinctValues(t *testing.T) {
	// The generator always returns the same raw value, so distinctness must
	// come from the tracker alone.
	gen := &stubGenerator{values: []string{"sam"}}
	reg := NewRegistry(gen)
	tr := resolve(t, reg, model.FakeUsername, map[string]string{"unique": "true"})

	const n = 50
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		out := apply(t, tr, "original")
		_, dup := seen[out]
		require.False(t, dup, "duplicate value %q on iteration %d", out, i)
		seen[out] = struct{}{}
	}
}

func TestUniqueTransformerIsSafeUnderConcurrency(t *testing.T) {
	gen := &stubGenerator{values: []string{"sam"}}
	reg := NewRegistry(gen)
	tr := resolve(t, reg, model.FakeEmail, map[string]string{"unique": "true"})

	const workers = 8
	const perWorker = 25

	var mu sync.Mutex
	seen := make(map[string]int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				out, err := tr.Apply("original")
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[out]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	for value, count := range seen {
		assert.Equal(t, 1, count, fmt.Sprintf("value %q issued %d times", value, count))
	}
}

func TestUniquenessIsScopedPerColumn(t *testing.T) {
	gen := &stubGenerator{values: []string{"sam"}}
	reg := NewRegistry(gen)

	spec := model.TransformerSpec{Name: model.FakeUsername, Args: map[string]string{"unique": "true"}}
	first, err := reg.Resolve("public.person", "username", spec)
	require.NoError(t, err)
	second, err := reg.Resolve("public.account", "username", spec)
	require.NoError(t, err)

	// Each column gets "sam" first because trackers are keyed by table and
	// column, not shared globally.
	assert.Equal(t, "sam", apply(t, first, "x"))
	assert.Equal(t, "sam", apply(t, second, "x"))
}
