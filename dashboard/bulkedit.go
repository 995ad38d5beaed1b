package dashboard

// StagingBuffer holds the state of the bulk-edit dialog: which shipments are
// selected and, per shipment, the sparse set of field overrides typed so far.
// Nothing here touches the network; BuildSubmission emits the minimal patch
// set and the caller submits it. Selection keeps insertion order because
// CopyFirstToAll is defined in terms of the first selected row.
type StagingBuffer struct {
	ids      []string // every row shown in the dialog, in table order
	selected []string // selected ids, insertion order
	isSel    map[string]bool
	edits    map[string]map[string]string
}

// NewStagingBuffer opens a buffer over the given shipment ids with everything
// selected, matching how the dialog opens.
func NewStagingBuffer(ids []string) *StagingBuffer {
	b := &StagingBuffer{
		isSel: make(map[string]bool, len(ids)),
		edits: make(map[string]map[string]string),
	}
	for _, id := range ids {
		if b.isSel[id] {
			continue
		}
		b.ids = append(b.ids, id)
		b.selected = append(b.selected, id)
		b.isSel[id] = true
	}
	return b
}

// ToggleSelection flips one row in or out of the selection. A re-selected row
// goes to the end of the selection order.
func (b *StagingBuffer) ToggleSelection(id string) {
	if b.isSel[id] {
		b.isSel[id] = false
		for i, sel := range b.selected {
			if sel == id {
				b.selected = append(b.selected[:i], b.selected[i+1:]...)
				break
			}
		}
		return
	}
	if !b.knows(id) {
		return
	}
	b.isSel[id] = true
	b.selected = append(b.selected, id)
}

// ToggleAll selects every row unless everything is already selected, in which
// case it clears the selection.
func (b *StagingBuffer) ToggleAll() {
	if len(b.selected) == len(b.ids) {
		b.selected = nil
		for id := range b.isSel {
			b.isSel[id] = false
		}
		return
	}
	b.selected = append([]string(nil), b.ids...)
	for _, id := range b.ids {
		b.isSel[id] = true
	}
}

// Selected returns the selected ids in selection order.
func (b *StagingBuffer) Selected() []string {
	return append([]string(nil), b.selected...)
}

// IsSelected reports whether the row is part of the selection.
func (b *StagingBuffer) IsSelected(id string) bool {
	return b.isSel[id]
}

// SetField stages one field override for one shipment, leaving its other
// staged fields alone.
func (b *StagingBuffer) SetField(id, field, value string) {
	if !b.knows(id) {
		return
	}
	if b.edits[id] == nil {
		b.edits[id] = make(map[string]string)
	}
	b.edits[id][field] = value
}

// Edits returns the staged overrides for one shipment.
func (b *StagingBuffer) Edits(id string) map[string]string {
	out := make(map[string]string, len(b.edits[id]))
	for k, v := range b.edits[id] {
		out[k] = v
	}
	return out
}

// ApplyToAll stages field = value on every selected row, preserving any
// other fields already staged there. A blank field or value is a no-op.
func (b *StagingBuffer) ApplyToAll(field, value string) {
	if field == "" || value == "" {
		return
	}
	for _, id := range b.selected {
		b.SetField(id, field, value)
	}
}

// CopyFirstToAll takes the staged edits of the first selected row and merges
// them into every other selected row. Staged fields that don't conflict are
// kept. Nothing happens when the first row has no edits.
func (b *StagingBuffer) CopyFirstToAll() {
	if len(b.selected) == 0 {
		return
	}
	first := b.selected[0]
	source := b.edits[first]
	if len(source) == 0 {
		return
	}
	for _, id := range b.selected[1:] {
		for field, value := range source {
			b.SetField(id, field, value)
		}
	}
}

// BuildSubmission returns the per-shipment patch set: every selected row with
// at least one staged field, and nothing else. An empty map means there is
// nothing to submit.
func (b *StagingBuffer) BuildSubmission() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, id := range b.selected {
		if len(b.edits[id]) == 0 {
			continue
		}
		patch := make(map[string]string, len(b.edits[id]))
		for field, value := range b.edits[id] {
			patch[field] = value
		}
		out[id] = patch
	}
	return out
}

// HasEdits reports whether any selected row has staged changes.
func (b *StagingBuffer) HasEdits() bool {
	for _, id := range b.selected {
		if len(b.edits[id]) > 0 {
			return true
		}
	}
	return false
}

// ClearEdits drops the staged edits for one shipment, used after that row's
// patch is accepted so a partial bulk failure can be retried without
// resubmitting the rows that already went through.
func (b *StagingBuffer) ClearEdits(id string) {
	delete(b.edits, id)
}

func (b *StagingBuffer) knows(id string) bool {
	_, ok := b.isSel[id]
	return ok
}
