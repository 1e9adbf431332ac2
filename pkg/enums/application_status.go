package enums

import (
	"fmt"
	"strings"
)

// ApplicationStatus is the review state shared by registrations, permits and products.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "Pending"
	ApplicationStatusApproved ApplicationStatus = "Approved"
	ApplicationStatusRejected ApplicationStatus = "Rejected"
)

var validApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusApproved,
	ApplicationStatusRejected,
}

// String implements fmt.Stringer.
func (s ApplicationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the closed status set.
func (s ApplicationStatus) IsValid() bool {
	for _, candidate := range validApplicationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsFinal reports whether the status is a review outcome.
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

// ParseApplicationStatus converts raw input into ApplicationStatus. Matching is exact.
func ParseApplicationStatus(value string) (ApplicationStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validApplicationStatuses {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", value)
}

// ReviewDecision is the reviewer vocabulary accepted by the registration status endpoint.
type ReviewDecision string

const (
	ReviewDecisionAccepted ReviewDecision = "accepted"
	ReviewDecisionRejected ReviewDecision = "rejected"
)

// ParseReviewDecision converts raw input into a ReviewDecision.
func ParseReviewDecision(value string) (ReviewDecision, error) {
	switch ReviewDecision(strings.TrimSpace(value)) {
	case ReviewDecisionAccepted:
		return ReviewDecisionAccepted, nil
	case ReviewDecisionRejected:
		return ReviewDecisionRejected, nil
	}
	return "", fmt.Errorf("invalid decision %q", value)
}

// Status maps the decision onto the stored status.
func (d ReviewDecision) Status() ApplicationStatus {
	if d == ReviewDecisionAccepted {
		return ApplicationStatusApproved
	}
	return ApplicationStatusRejected
}

// statusTransitions lists every permitted source→target pair. Reviewers can
// currently move a record between any two states, including reverting an
// approval; tighten this table once product confirms the intended policy.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusApproved: {ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusRejected: {ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected},
}

// CanTransition reports whether a record may move from one status to another.
func CanTransition(from, to ApplicationStatus) bool {
	for _, candidate := range statusTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
