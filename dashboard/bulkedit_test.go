package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStagingBufferSelectsEverything(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b", "c"})

	assert.Equal(t, []string{"a", "b", "c"}, b.Selected())
	assert.True(t, b.IsSelected("b"))
}

func TestToggleSelectionReselectMovesToEnd(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b", "c"})

	b.ToggleSelection("a")
	assert.Equal(t, []string{"b", "c"}, b.Selected())

	b.ToggleSelection("a")
	assert.Equal(t, []string{"b", "c", "a"}, b.Selected())
}

func TestToggleSelectionUnknownIDIgnored(t *testing.T) {
	b := NewStagingBuffer([]string{"a"})

	b.ToggleSelection("ghost")
	assert.Equal(t, []string{"a"}, b.Selected())
}

func TestToggleAll(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b"})

	b.ToggleAll()
	assert.Empty(t, b.Selected())

	b.ToggleAll()
	assert.Equal(t, []string{"a", "b"}, b.Selected())
}

func TestApplyToAllSkipsBlankFieldOrValue(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b"})

	b.ApplyToAll("", "Assigned")
	b.ApplyToAll("status", "")
	assert.False(t, b.HasEdits())

	b.ApplyToAll("status", "Assigned")
	assert.Equal(t, map[string]string{"status": "Assigned"}, b.Edits("a"))
	assert.Equal(t, map[string]string{"status": "Assigned"}, b.Edits("b"))
}

func TestApplyToAllOnlyTouchesSelected(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b"})
	b.ToggleSelection("b")

	b.ApplyToAll("status", "Assigned")

	assert.NotEmpty(t, b.Edits("a"))
	assert.Empty(t, b.Edits("b"))
}

func TestApplyToAllPreservesOtherStagedFields(t *testing.T) {
	b := NewStagingBuffer([]string{"a"})
	b.SetField("a", "driver_name", "Budi")

	b.ApplyToAll("status", "Assigned")

	assert.Equal(t, map[string]string{
		"driver_name": "Budi",
		"status":      "Assigned",
	}, b.Edits("a"))
}

func TestCopyFirstToAll(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b", "c"})
	b.SetField("a", "status", "Assigned")
	b.SetField("a", "lorry_no", "B 9001 XY")
	b.SetField("b", "driver_name", "Budi")

	b.CopyFirstToAll()

	assert.Equal(t, map[string]string{
		"status":      "Assigned",
		"lorry_no":    "B 9001 XY",
		"driver_name": "Budi",
	}, b.Edits("b"))
	assert.Equal(t, map[string]string{
		"status":   "Assigned",
		"lorry_no": "B 9001 XY",
	}, b.Edits("c"))
	// source row untouched
	assert.Equal(t, map[string]string{
		"status":   "Assigned",
		"lorry_no": "B 9001 XY",
	}, b.Edits("a"))
}

func TestCopyFirstToAllUsesSelectionOrder(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b"})
	b.SetField("a", "status", "Assigned")
	b.SetField("b", "status", "PickedUp")

	// deselect and reselect "a" so "b" becomes the first selected row
	b.ToggleSelection("a")
	b.ToggleSelection("a")

	b.CopyFirstToAll()

	assert.Equal(t, "PickedUp", b.Edits("a")["status"])
}

func TestCopyFirstToAllNoEditsIsNoOp(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b"})
	b.CopyFirstToAll()
	assert.False(t, b.HasEdits())
}

func TestBuildSubmissionOnlySelectedWithEdits(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b", "c"})
	b.SetField("a", "status", "Assigned")
	b.SetField("c", "status", "PickedUp")
	b.ToggleSelection("c") // deselect after staging

	sub := b.BuildSubmission()

	require.Len(t, sub, 1)
	assert.Equal(t, map[string]string{"status": "Assigned"}, sub["a"])
}

func TestClearEditsAllowsPartialRetry(t *testing.T) {
	b := NewStagingBuffer([]string{"a", "b"})
	b.SetField("a", "status", "Assigned")
	b.SetField("b", "status", "Assigned")

	b.ClearEdits("a")

	sub := b.BuildSubmission()
	require.Len(t, sub, 1)
	_, stillStaged := sub["b"]
	assert.True(t, stillStaged)
}
