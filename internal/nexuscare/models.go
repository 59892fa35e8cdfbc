// Package nexuscare provides typed wrappers over the NexusCare backend REST
// endpoints together with the domain models they exchange.
package nexuscare

import "strings"

// Role identifiers used by the backend. Comparison is case-insensitive
// everywhere; these are the canonical lowercase forms.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
	RoleNurse   = "nurse"
)

// UserProfile is the account record returned by the backend. The role lives
// in user_type on newer responses and role on older ones; use Role() rather
// than reading either field directly.
type UserProfile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	UserType    string `json:"user_type,omitempty"`
	RoleField   string `json:"role,omitempty"`
}

// Role returns the normalized (lowercase) role, preferring user_type over
// the legacy role field. Empty when neither is set.
func (u *UserProfile) Role() string {
	if u == nil {
		return ""
	}
	role := u.UserType
	if role == "" {
		role = u.RoleField
	}
	return strings.ToLower(role)
}

// DisplayName renders a human-readable name, falling back to email.
func (u *UserProfile) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Email
	}
	return name
}

// PersonRef is the abbreviated user reference embedded in consultations.
type PersonRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Consultation statuses as reported by the backend.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Consultation is one booking, from request through completion. Timestamps
// are kept as the backend's string representation; the client never does
// date arithmetic on them.
type Consultation struct {
	ID            int64      `json:"id"`
	Patient       *PersonRef `json:"patient,omitempty"`
	Doctor        *PersonRef `json:"doctor,omitempty"`
	Symptoms      string     `json:"symptoms"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status"`
	RequestedAt   string     `json:"requested_at,omitempty"`
	ScheduledTime string     `json:"scheduled_time,omitempty"`
	CompletedAt   string     `json:"completed_at,omitempty"`
	MeetingLink   string     `json:"meeting_link,omitempty"`
}

// Doctor is a medical professional as listed by /auth/professionals/.
type Doctor struct {
	User           PersonRef `json:"user"`
	Specialization string    `json:"specialization"`
}

// ConsultationRequestResponse is returned when a patient requests a
// consultation. A non-empty PaymentLink means the booking is not complete
// until the patient follows the link and pays.
type ConsultationRequestResponse struct {
	Consultation Consultation `json:"consultation"`
	PaymentLink  string       `json:"payment_link"`
}

// LoginResponse is the payload of a successful /auth/login/ call. Refresh is
// present on backends that issue one; the client stores no refresh flow and
// only clears the artifact on logout.
type LoginResponse struct {
	User    UserProfile `json:"user"`
	Access  string      `json:"access"`
	Refresh string      `json:"refresh,omitempty"`
}
