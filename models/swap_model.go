package models

import (
	"fmt"
	"time"
)

type SwapStatus string

const (
	StatusPending   SwapStatus = "PENDING"
	StatusAccepted  SwapStatus = "ACCEPTED"
	StatusRejected  SwapStatus = "REJECTED"
	StatusCompleted SwapStatus = "COMPLETED"
	// StatusCancelled is accepted in stored data but no operation moves a request into it.
	StatusCancelled SwapStatus = "CANCELLED"
)

var swapStatuses = []SwapStatus{StatusPending, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled}

// transitions is the directed graph of allowed status changes.
var transitions = map[SwapStatus][]SwapStatus{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusCompleted},
}

// ParseSwapStatus converts the wire form of a status. Matching is exact.
func ParseSwapStatus(s string) (SwapStatus, error) {
	for _, st := range swapStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown swap status %q", s)
}

// CanTransitionTo reports whether a request in status s may move to next.
func (s SwapStatus) CanTransitionTo(next SwapStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is possible.
func (s SwapStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// SwapRequest is a proposal from one user to exchange a skill with another.
type SwapRequest struct {
	ID           string     `json:"id" bson:"_id"`
	FromUserID   string     `json:"fromUserId" bson:"from_user_id"`
	ToUserID     string     `json:"toUserId" bson:"to_user_id"`
	SkillOffered string     `json:"skillOffered" bson:"skill_offered"`
	SkillWanted  string     `json:"skillWanted" bson:"skill_wanted"`
	Message      string     `json:"message,omitempty" bson:"message,omitempty"`
	Status       SwapStatus `json:"status" bson:"status"`
	Rating       *float64   `json:"rating" bson:"rating"`
	Feedback     *string    `json:"feedback" bson:"feedback"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updated_at"`
}

// Clone returns a copy that shares no pointers with r.
func (r SwapRequest) Clone() SwapRequest {
	if r.Rating != nil {
		v := *r.Rating
		r.Rating = &v
	}
	if r.Feedback != nil {
		v := *r.Feedback
		r.Feedback = &v
	}
	return r
}
