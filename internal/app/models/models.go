package models

// Role defines the caller role type. Values are stable wire identifiers.
type Role string

const (
	RoleCandidate      Role = "candidate"
	RoleSupervisor     Role = "supervisor"
	RoleInstituteAdmin Role = "instituteAdmin"
	RoleSuperAdmin     Role = "superAdmin"
	RoleClerk          Role = "clerk"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleCandidate, RoleSupervisor, RoleInstituteAdmin, RoleSuperAdmin, RoleClerk:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries institute-level administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleInstituteAdmin || r == RoleSuperAdmin
}

// SubStatus is the review status shared by Submission and ClinicalSub.
type SubStatus string

const (
	SubStatusPending  SubStatus = "pending"
	SubStatusApproved SubStatus = "approved"
	SubStatusRejected SubStatus = "rejected"
)

// IsValid reports whether the status is one of the known statuses.
func (s SubStatus) IsValid() bool {
	switch s {
	case SubStatusPending, SubStatusApproved, SubStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status is a review decision. Terminal
// statuses never revert to pending.
func (s SubStatus) IsTerminal() bool {
	return s == SubStatusApproved || s == SubStatusRejected
}

// IsDecision reports whether the status is a valid review decision value.
func (s SubStatus) IsDecision() bool {
	return s == SubStatusApproved || s == SubStatusRejected
}
