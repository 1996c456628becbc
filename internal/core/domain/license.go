package domain

import (
	"strings"
	"time"
)

// LicenseStatus represents the lifecycle state of a license.
type LicenseStatus string

const (
	StatusAvailable LicenseStatus = "available"
	StatusGenerated LicenseStatus = "generated"
	StatusUsed      LicenseStatus = "used"
)

// validTransitions defines the allowed state machine transitions.
// The lifecycle only ever moves forward.
var validTransitions = map[LicenseStatus][]LicenseStatus{
	StatusAvailable: {StatusGenerated},
	StatusGenerated: {StatusUsed},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s LicenseStatus) CanTransitionTo(next LicenseStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s LicenseStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusGenerated, StatusUsed:
		return true
	}
	return false
}

// NodeType is the license category. It fixes the stake amount and is used as
// an allocation filter.
type NodeType string

const (
	NodeTypeSwitch     NodeType = "switch"
	NodeTypeValidation NodeType = "validation"
)

// NodeTypeAny labels an unfiltered allocation in responses and metrics.
const NodeTypeAny = "any"

var stakeByNodeType = map[NodeType]float64{
	NodeTypeSwitch:     50000,
	NodeTypeValidation: 10000,
}

// Valid reports whether t is a known category.
func (t NodeType) Valid() bool {
	_, ok := stakeByNodeType[t]
	return ok
}

// Stake returns the MNT stake attached to licenses of this category.
func (t NodeType) Stake() float64 {
	return stakeByNodeType[t]
}

// Label returns the category, or "any" when t is empty.
func (t NodeType) Label() string {
	if t == "" {
		return NodeTypeAny
	}
	return string(t)
}

// NodeTypes lists the known categories in display order.
func NodeTypes() []NodeType {
	return []NodeType{NodeTypeSwitch, NodeTypeValidation}
}

// RequesterID identifies whoever asks for a license. It is accepted as a bare
// client-supplied string; an authentication layer can produce it instead
// without the allocator noticing.
type RequesterID string

// NewRequesterID trims raw and rejects empty identities.
func NewRequesterID(raw string) (RequesterID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", ErrInvalidRequest
	}
	return RequesterID(id), nil
}

func (r RequesterID) String() string { return string(r) }

// License is one assignable unit of network-participation right.
type License struct {
	ID          string        `json:"id"`
	LicenseKey  string        `json:"licenseKey"`
	Status      LicenseStatus `json:"status"`
	NodeType    NodeType      `json:"nodeType"`
	StakeAmount float64       `json:"stakeAmount"`
	UserID      *string       `json:"userId"`
	CreatedAt   time.Time     `json:"createdAt"`
	GeneratedAt *time.Time    `json:"generatedAt"`
	UsedAt      *time.Time    `json:"usedAt"`
}

// Owner returns the holder of the license, or "" when unclaimed.
func (l *License) Owner() string {
	if l == nil || l.UserID == nil {
		return ""
	}
	return *l.UserID
}
