package library

import (
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// startingPoints is every new member's opening balance.
const startingPoints = 100

// MemberSpec is the input for registering a member.
type MemberSpec struct {
	FullName     string     `validate:"required"`
	Email        string     `validate:"required,email"`
	MemberType   MemberType `validate:"required"`
	AdmissionID  string
	EmployeeID   string
	MobileNumber string `validate:"required"`
	Age          int    `validate:"omitempty,gte=0"`
	Gender       string
	DOB          string
	Address      string
	Password     string `validate:"required,min=6"`
	IsAdmin      bool
}

// Membership owns member records, credentials, and point balances.
type Membership struct {
	db     *Database
	clock  Clock
	logger *slog.Logger
}

// NewMembership creates the membership service.
func NewMembership(db *Database, clock Clock, logger *slog.Logger) *Membership {
	return &Membership{db: db, clock: clock, logger: logger}
}

// Register creates a member with the opening points balance. Students
// must carry an admission id, staff and admins an employee id.
func (m *Membership) Register(spec MemberSpec) (*Member, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, validationError(err)
	}
	if !spec.MemberType.Valid() {
		return nil, Validationf("unknown member type %q", spec.MemberType)
	}
	switch spec.MemberType {
	case MemberStudent:
		if strings.TrimSpace(spec.AdmissionID) == "" {
			return nil, Validation("admission id is required for students")
		}
	default:
		if strings.TrimSpace(spec.EmployeeID) == "" {
			return nil, Validation("employee id is required for staff and admins")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := newID(idPrefixMember)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	member := &Member{
		ID:           id,
		FullName:     spec.FullName,
		Email:        strings.ToLower(strings.TrimSpace(spec.Email)),
		MemberType:   spec.MemberType,
		AdmissionID:  spec.AdmissionID,
		EmployeeID:   spec.EmployeeID,
		MobileNumber: spec.MobileNumber,
		Age:          spec.Age,
		Gender:       spec.Gender,
		DOB:          spec.DOB,
		Address:      spec.Address,
		Points:       startingPoints,
		IsAdmin:      spec.IsAdmin || spec.MemberType == MemberAdmin,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.db.CreateMember(member); err != nil {
		return nil, err
	}

	m.logger.Info("member registered", "member_id", member.ID, "type", member.MemberType)
	return member, nil
}

// GetMember returns a member by id.
func (m *Membership) GetMember(id string) (*Member, error) { return m.db.GetMember(id) }

// ListMembers returns all members ordered by name.
func (m *Membership) ListMembers() ([]*Member, error) { return m.db.ListMembers() }

// Authenticate verifies a member's credentials by email. An unknown
// email and a wrong password both come back as the same authentication
// error so callers cannot probe which emails exist.
func (m *Membership) Authenticate(email, password string) (*Member, error) {
	member, err := m.db.GetMemberByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, Authentication("invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
		return nil, Authentication("invalid email or password")
	}
	return member, nil
}

// ProfileSpec is the editable subset of a member's record. Email, type,
// and points are not editable here.
type ProfileSpec struct {
	FullName     string `validate:"required"`
	MobileNumber string `validate:"required"`
	Age          int    `validate:"omitempty,gte=0"`
	Gender       string
	DOB          string
	Address      string
}

// UpdateProfile rewrites a member's contact details.
func (m *Membership) UpdateProfile(memberID string, spec ProfileSpec) (*Member, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, validationError(err)
	}
	member, err := m.db.GetMember(memberID)
	if err != nil {
		return nil, err
	}
	member.FullName = spec.FullName
	member.MobileNumber = spec.MobileNumber
	member.Age = spec.Age
	member.Gender = spec.Gender
	member.DOB = spec.DOB
	member.Address = spec.Address
	member.UpdatedAt = m.clock.Now()
	if err := m.db.UpdateMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

// ResetPassword replaces a member's password hash.
func (m *Membership) ResetPassword(memberID, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return Validation("password cannot be empty")
	}
	member, err := m.db.GetMember(memberID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	member.PasswordHash = string(hash)
	member.UpdatedAt = m.clock.Now()
	return m.db.UpdateMember(member)
}

// AdjustPoints moves a member's balance by delta, floored at zero.
func (m *Membership) AdjustPoints(memberID string, delta int) error {
	return m.db.AdjustPoints(memberID, delta)
}
