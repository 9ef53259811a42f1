package models

import "time"

// MilestoneStatus is the persisted status of a single journey milestone.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneAvailable  MilestoneStatus = "available"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

// Valid reports whether s is one of the known milestone statuses.
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneAvailable, MilestoneInProgress, MilestoneCompleted:
		return true
	}
	return false
}

// MilestoneEntry is one milestone's stored state inside a UserProgress document.
type MilestoneEntry struct {
	Status      MilestoneStatus        `bson:"status" json:"status"`
	Data        map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	CompletedAt *time.Time             `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	UpdatedAt   time.Time              `bson:"updated_at" json:"updatedAt"`
}

// UserProgress tracks a client's journey. The ID is the user or session id.
type UserProgress struct {
	ID              string                    `bson:"_id" json:"id"`
	Milestones      map[string]MilestoneEntry `bson:"milestones" json:"milestones"`
	OverallProgress float64                   `bson:"overall_progress" json:"overallProgress"`
	CreatedAt       time.Time                 `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time                 `bson:"updated_at" json:"updatedAt"`
}

// StoredStatus returns the stored status for a milestone and whether an entry exists.
func (p *UserProgress) StoredStatus(milestoneID string) (MilestoneStatus, bool) {
	if p == nil || p.Milestones == nil {
		return "", false
	}
	entry, ok := p.Milestones[milestoneID]
	if !ok {
		return "", false
	}
	return entry.Status, true
}

// CompletedCount returns how many milestones are marked completed.
func (p *UserProgress) CompletedCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, m := range p.Milestones {
		if m.Status == MilestoneCompleted {
			n++
		}
	}
	return n
}
