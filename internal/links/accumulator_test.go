package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorUnion(t *testing.T) {
	acc := NewAccumulator()
	assert.True(t, acc.IsEmpty())

	acc.Add([]string{"https://a.example", "https://b.example"})
	acc.Add([]string{"https://b.example", "https://c.example", ""})

	assert.False(t, acc.IsEmpty())
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, acc.Links())
}

func TestAccumulatorMonotonicGrowth(t *testing.T) {
	acc := NewAccumulator()
	acc.Add([]string{"https://a.example"})

	// Later attempts with no valid links must not lose earlier ones.
	acc.Add(nil)
	acc.Add([]string{})

	assert.Equal(t, []string{"https://a.example"}, acc.Links())
}

func TestAccumulatorSnapshotIsolation(t *testing.T) {
	acc := NewAccumulator()
	acc.Add([]string{"https://a.example"})

	snap := acc.Links()
	snap[0] = "mutated"

	assert.Equal(t, []string{"https://a.example"}, acc.Links())
}
