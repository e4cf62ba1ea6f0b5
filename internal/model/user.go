package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient    Role = "patient"
	RoleDoctor     Role = "doctor"
	RoleManagement Role = "management"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type CaseType string

const (
	CaseTypeCardiology  CaseType = "cardiology"
	CaseTypeOrthopedics CaseType = "orthopedics"
	CaseTypeGeneral     CaseType = "general"
	CaseTypeNeurology   CaseType = "neurology"
)

// User covers all three portal roles. Role-specific fields are populated
// only for the matching role and zero otherwise.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         Role      `json:"role"`

	// Patient fields.
	Age              int       `json:"age,omitempty"`
	Gender           Gender    `json:"gender,omitempty"`
	CaseType         CaseType  `json:"case_type,omitempty"`
	AssignedDoctorID uuid.UUID `json:"assigned_doctor_id,omitempty"`

	// Doctor fields.
	Specialization string      `json:"specialization,omitempty"`
	Contact        string      `json:"contact,omitempty"`
	PatientIDs     []uuid.UUID `json:"patient_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand back to clients.
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	return &out
}

type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Password string   `json:"password" validate:"required,min=8"`
	Age      int      `json:"age" validate:"required,gt=0,lt=130"`
	Gender   Gender   `json:"gender" validate:"required,oneof=male female other"`
	CaseType CaseType `json:"case_type" validate:"required,oneof=cardiology orthopedics general neurology"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}
