// Package journey holds the home-buying journey rules: milestone gating and the
// financial figures shown on milestone screens. Everything here is pure.
package journey

import "homepath/api/internal/models"

// Canonical milestone ids, in journey order.
const (
	StepQuiz           = "step1_quiz"
	StepBudget         = "step2_budget"
	StepRates          = "step3_rates"
	StepIncentives     = "step4_incentives"
	StepPropertySearch = "step5_propertySearch"
	StepViewing        = "step6_viewing"
	StepPreApproval    = "step7_preApproval"
	StepMakeOffer      = "step8_makeOffer"
)

// Milestones is the ordered list of the 8 journey milestones.
var Milestones = []string{
	StepQuiz,
	StepBudget,
	StepRates,
	StepIncentives,
	StepPropertySearch,
	StepViewing,
	StepPreApproval,
	StepMakeOffer,
}

// TotalMilestones is the denominator of overall progress.
const TotalMilestones = 8

// IsMilestone reports whether id is one of the canonical milestones.
func IsMilestone(id string) bool {
	return indexOf(Milestones, id) >= 0
}

// MilestoneState is what a client sees for a milestone.
type MilestoneState string

const (
	StateLocked     MilestoneState = "locked"
	StateAvailable  MilestoneState = "available"
	StateInProgress MilestoneState = "in_progress"
	StateCompleted  MilestoneState = "completed"
)

// Source tells whether a resolved state came from the stored record or from
// the lock chain.
type Source int

const (
	Derived Source = iota
	Stored
)

func (s Source) String() string {
	if s == Stored {
		return "stored"
	}
	return "derived"
}

// Resolution is a resolved milestone state tagged with where it came from.
type Resolution struct {
	Source Source
	State  MilestoneState
}

// Resolve evaluates a milestone against the progress record. Stored
// completed/in_progress statuses are authoritative; everything else is
// derived from the previous milestone in ordered.
func Resolve(progress *models.UserProgress, milestoneID string, ordered []string) Resolution {
	idx := indexOf(ordered, milestoneID)

	if progress == nil {
		if idx == 0 {
			return Resolution{Source: Derived, State: StateAvailable}
		}
		return Resolution{Source: Derived, State: StateLocked}
	}

	if status, ok := progress.StoredStatus(milestoneID); ok {
		switch status {
		case models.MilestoneCompleted:
			return Resolution{Source: Stored, State: StateCompleted}
		case models.MilestoneInProgress:
			return Resolution{Source: Stored, State: StateInProgress}
		}
	}

	switch {
	case idx < 0:
		return Resolution{Source: Derived, State: StateLocked}
	case idx == 0:
		return Resolution{Source: Derived, State: StateAvailable}
	}

	if prev, ok := progress.StoredStatus(ordered[idx-1]); ok && prev == models.MilestoneCompleted {
		return Resolution{Source: Derived, State: StateAvailable}
	}
	return Resolution{Source: Derived, State: StateLocked}
}

// ResolveMilestoneStatus returns the state a client sees for milestoneID.
// A nil progress means the client has no record yet.
func ResolveMilestoneStatus(progress *models.UserProgress, milestoneID string, ordered []string) MilestoneState {
	return Resolve(progress, milestoneID, ordered).State
}

// ResolveAll resolves every milestone in ordered.
func ResolveAll(progress *models.UserProgress, ordered []string) map[string]MilestoneState {
	out := make(map[string]MilestoneState, len(ordered))
	for _, id := range ordered {
		out[id] = ResolveMilestoneStatus(progress, id, ordered)
	}
	return out
}

// NextMilestone returns the first milestone that is available and not yet
// completed, or "" when the journey is finished.
func NextMilestone(progress *models.UserProgress, ordered []string) string {
	for _, id := range ordered {
		switch ResolveMilestoneStatus(progress, id, ordered) {
		case StateAvailable, StateInProgress:
			return id
		}
	}
	return ""
}

// OverallProgress is the completed share of the journey as a percentage.
func OverallProgress(progress *models.UserProgress) float64 {
	if progress == nil {
		return 0
	}
	n := 0
	for _, id := range Milestones {
		if s, ok := progress.StoredStatus(id); ok && s == models.MilestoneCompleted {
			n++
		}
	}
	return float64(n) / TotalMilestones * 100
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
