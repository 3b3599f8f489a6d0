package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineContextParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	secondary := context.Background()

	combined, cancel := CombineContext(parent, secondary)
	defer cancel()

	cancelParent()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context did not observe parent cancellation")
	}
	assert.Error(t, combined.Err())
}

func TestCombineContextSecondaryCancel(t *testing.T) {
	secondary, cancelSecondary := context.WithCancel(context.Background())

	combined, cancel := CombineContext(context.Background(), secondary)
	defer cancel()

	cancelSecondary()

	select {
	case <-combined.Done():
	case <-time.After(time.Second):
		t.Fatal("combined context did not observe secondary cancellation")
	}
}

func TestCombineContextValuesComeFromParent(t *testing.T) {
	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "v")

	combined, cancel := CombineContext(parent, context.Background())
	defer cancel()

	require.Equal(t, "v", combined.Value(key{}))
}
