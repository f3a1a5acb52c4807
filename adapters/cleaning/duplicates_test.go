package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gocleanse/internal/logging"
)

func TestRemoveDuplicates(t *testing.T) {
	table := newTable(t,
		withMissing(nums("a", 1, 1, 2, 0, 0, 1), 3, 4),
		strs("b", "x", "x", "y", "", "", "z"),
	)
	manager := NewDuplicateManager(logging.Discard())

	flagged := 0
	for _, dup := range table.DuplicateMask() {
		if dup {
			flagged++
		}
	}
	assert.Equal(t, flagged, manager.Count(table))
	assert.Equal(t, 2, flagged)

	removed := manager.RemoveDuplicates(table)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 4, table.RowCount())
	assert.Equal(t, 0, manager.Count(table))

	// missing equals missing, so the second all-missing row went
	b, _ := table.Column("b")
	assert.Equal(t, "x", b.Values[0].AsString())
	assert.True(t, b.Values[2].IsMissing())
}

func TestRemoveDuplicatesIdempotent(t *testing.T) {
	once := newTable(t, nums("a", 1, 2, 1, 3, 2), strs("b", "p", "q", "p", "r", "q"))
	twice := once.Clone()
	manager := NewDuplicateManager(logging.Discard())

	manager.RemoveDuplicates(once)
	manager.RemoveDuplicates(twice)
	assert.Equal(t, 0, manager.RemoveDuplicates(twice))

	assert.Equal(t, once.RowCount(), twice.RowCount())
	for i := 0; i < once.RowCount(); i++ {
		assert.Equal(t, once.RowKey(i), twice.RowKey(i))
	}
}
