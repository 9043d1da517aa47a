package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/users"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLen = 6
	// bcrypt ignores input past 72 bytes; refuse it instead of truncating.
	maxPasswordBytes = 72
	maxNameLen       = 200
	// AdminListLimit caps the admin user listing.
	AdminListLimit = 100
)

// TokenIssuer signs session tokens (auth.Manager).
type TokenIssuer interface {
	Issue(now time.Time, subjectID string, role identity.Role) (string, error)
}

// PasswordHasher is satisfied by auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// Service covers signup, login and the caller's own account, plus the
// admin user directory.
type Service struct {
	users      users.Store
	hasher     PasswordHasher
	tokens     TokenIssuer
	audit      *audit.Service
	inviteCode string
	validate   *validator.Validate
	clock      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewService(store users.Store, hasher PasswordHasher, tokens TokenIssuer, auditSvc *audit.Service, inviteCode string) *Service {
	return &Service{
		users:      store,
		hasher:     hasher,
		tokens:     tokens,
		audit:      auditSvc,
		inviteCode: inviteCode,
		validate:   validator.New(),
		clock:      time.Now,
	}
}

// errBadCredentials is shared by every login failure so responses cannot
// reveal whether the email exists.
func errBadCredentials() error {
	return &apperr.Error{Kind: apperr.KindUnauthenticated, Msg: "Invalid email or password"}
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Role defaults to EMPLOYER. Staff roles require AdminCode.
	Role      string `json:"role"`
	AdminCode string `json:"adminCode"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) checkEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return "", apperr.Validation("email", "must be a valid email address")
	}
	return email, nil
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name", "Name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", apperr.Validation("name", "must be at most 200 characters")
	}
	return name, nil
}

func checkPassword(field, pw string) error {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return apperr.Validation(field, "must be at least 6 characters")
	}
	if len(pw) > maxPasswordBytes {
		return apperr.Validation(field, "must be at most 72 bytes")
	}
	return nil
}

// Signup creates a user and returns a session token for it.
func (s *Service) Signup(ctx context.Context, in SignupInput) (string, users.User, error) {
	name, err := checkName(in.Name)
	if err != nil {
		return "", users.User{}, err
	}
	email, err := s.checkEmail(in.Email)
	if err != nil {
		return "", users.User{}, err
	}
	if err := checkPassword("password", in.Password); err != nil {
		return "", users.User{}, err
	}

	role := identity.RoleEmployer
	if in.Role != "" {
		if role, err = identity.ParseRole(in.Role); err != nil {
			return "", users.User{}, apperr.Validation("role", "Invalid role")
		}
	}
	if role != identity.RoleEmployer && !s.inviteMatches(in.AdminCode) {
		return "", users.User{}, apperr.Forbidden("Invalid invite code")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", users.User{}, apperr.Internal("hash password", err)
	}
	u, err := s.users.Create(ctx, users.User{Email: email, Name: name, Role: role, PasswordHash: hash})
	if errors.Is(err, users.ErrEmailTaken) {
		return "", users.User{}, apperr.Conflict("Email already in use")
	}
	if err != nil {
		return "", users.User{}, apperr.Internal("create user", err)
	}

	token, err := s.tokens.Issue(s.clock(), u.ID, u.Role)
	if err != nil {
		return "", users.User{}, apperr.Internal("issue session", err)
	}
	s.audit.Record(ctx, audit.Subject{Type: audit.ObjUser, ID: u.ID}, "SIGNUP", audit.Actor{ID: u.ID, Role: string(u.Role)}, nil)
	return token, u, nil
}

func (s *Service) inviteMatches(code string) bool {
	if s.inviteCode == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.inviteCode)) == 1
}

// Login checks credentials and returns a session token. Unknown email and
// wrong password fail identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return "", apperr.Validation("credentials", "email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		// Spend the same hashing time as a real comparison.
		_ = s.hasher.Verify(s.dummy(), in.Password)
		return "", errBadCredentials()
	}
	if err != nil {
		return "", apperr.Internal("load user", err)
	}
	if err := s.hasher.Verify(u.PasswordHash, in.Password); err != nil {
		return "", errBadCredentials()
	}

	token, err := s.tokens.Issue(s.clock(), u.ID, u.Role)
	if err != nil {
		return "", apperr.Internal("issue session", err)
	}
	return token, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Profile returns the caller's user row.
func (s *Service) Profile(ctx context.Context, p identity.Principal) (users.User, error) {
	u, err := s.users.GetByID(ctx, p.SubjectID)
	if errors.Is(err, users.ErrNotFound) {
		return users.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return users.User{}, apperr.Internal("load user", err)
	}
	return u, nil
}

func (s *Service) Rename(ctx context.Context, p identity.Principal, name string) (users.User, error) {
	name, err := checkName(name)
	if err != nil {
		return users.User{}, err
	}
	u, err := s.users.UpdateName(ctx, p.SubjectID, name)
	if errors.Is(err, users.ErrNotFound) {
		return users.User{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return users.User{}, apperr.Internal("update name", err)
	}
	return u, nil
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the caller's password. A wrong current password
// is a Validation error, not Unauthenticated: the session itself is fine.
func (s *Service) ChangePassword(ctx context.Context, p identity.Principal, in PasswordChange) error {
	if in.CurrentPassword == "" {
		return apperr.Validation("currentPassword", "is required")
	}
	if err := checkPassword("newPassword", in.NewPassword); err != nil {
		return err
	}
	u, err := s.Profile(ctx, p)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(u.PasswordHash, in.CurrentPassword); err != nil {
		return apperr.Validation("currentPassword", "Current password is incorrect")
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return apperr.Internal("update password", err)
	}
	s.audit.Record(ctx, audit.Subject{Type: audit.ObjUser, ID: u.ID}, "PASSWORD_CHANGE", audit.Actor{ID: p.SubjectID, Role: string(p.Role)}, nil)
	return nil
}

// ListUsers returns the newest users first.
func (s *Service) ListUsers(ctx context.Context) ([]users.User, error) {
	out, err := s.users.List(ctx, AdminListLimit)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return out, nil
}

// ChangeRole sets another user's role. Existing sessions keep their old
// role until they expire.
func (s *Service) ChangeRole(ctx context.Context, actor identity.Principal, userID, role string) error {
	if actor.Role != identity.RoleAdmin {
		return apperr.Forbidden("")
	}
	r, err := identity.ParseRole(role)
	if err != nil {
		return apperr.Validation("role", "Invalid role")
	}
	if err := s.users.SetRole(ctx, userID, r); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("set role", err)
	}
	s.audit.Record(ctx, audit.Subject{Type: audit.ObjUser, ID: userID}, "ROLE_CHANGE", audit.Actor{ID: actor.SubjectID, Role: string(actor.Role)}, map[string]any{"role": string(r)})
	return nil
}
