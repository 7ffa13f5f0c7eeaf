package session

import "canvasbot/internal/domain"

// SlotKind tags a fill-queue entry as a photo or text slot.
type SlotKind string

const (
	SlotPhoto SlotKind = "photo"
	SlotText  SlotKind = "text"
)

// Entry is one unfilled slot awaiting user input. Entries are transient:
// the queue is recomputed from the settings document after every mutation and
// never persisted, so it cannot drift from the schema.
type Entry struct {
	Kind     SlotKind
	SlotName string
	Index    int
}

// ComputeQueue scans the settings for placements without a value. Photo slots
// come first in placement order, then text slots, matching the priority a
// mixed message is consumed with.
func ComputeQueue(settings *domain.CanvasSettings) []Entry {
	var queue []Entry
	for i, p := range settings.PhotoPlacements {
		if !p.Filled() {
			queue = append(queue, Entry{Kind: SlotPhoto, SlotName: p.SlotName, Index: i})
		}
	}
	for i, p := range settings.TextPlacements {
		if !p.Filled() {
			queue = append(queue, Entry{Kind: SlotText, SlotName: p.SlotName, Index: i})
		}
	}
	return queue
}

// firstOfKind returns the first queue entry of the given kind, or nil.
func firstOfKind(queue []Entry, kind SlotKind) *Entry {
	for i := range queue {
		if queue[i].Kind == kind {
			return &queue[i]
		}
	}
	return nil
}
