package model

// SlotGrid is the availability answer for one date. Labels are "HH:mm"
// strings and are compared as strings, never as parsed times.
type SlotGrid struct {
	AvailableSlots   []string `json:"availableSlots"`
	UnavailableSlots []string `json:"unavailableSlots,omitempty"`
}

type SlotRequest struct {
	Date     string `json:"date"`
	Duration int    `json:"duration"`
}

func (g SlotGrid) IsEmpty() bool {
	return len(g.AvailableSlots) == 0
}

// Index returns the position of slot in AvailableSlots or -1.
func (g SlotGrid) Index(slot string) int {
	for i, label := range g.AvailableSlots {
		if label == slot {
			return i
		}
	}
	return -1
}

func (g SlotGrid) IsAvailable(slot string) bool {
	return g.Index(slot) >= 0
}

func (g SlotGrid) IsUnavailable(slot string) bool {
	for _, label := range g.UnavailableSlots {
		if label == slot {
			return true
		}
	}
	return false
}
