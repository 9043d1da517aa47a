package employers

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/identity"
	"workforce-lodging/internal/users"

	"github.com/google/uuid"
)

const (
	maxNameLen  = 200
	maxNotesLen = 1000
)

// Input is the create/update payload of an employer account.
type Input struct {
	Name  string  `json:"name"`
	Notes *string `json:"notes"`
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Input{}, apperr.Validation("name", "Company name is required")
	}
	if utf8.RuneCountInString(in.Name) > maxNameLen {
		return Input{}, apperr.Validation("name", "must be at most 200 characters")
	}
	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > maxNotesLen {
		return Input{}, apperr.Validation("notes", "must be at most 1000 characters")
	}
	return in, nil
}

// Service manages the employer account of the calling user.
type Service struct {
	repo     Repository
	resolver *Resolver
	audit    *audit.Service
}

func NewService(repo Repository, resolver *Resolver, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, resolver: resolver, audit: auditSvc}
}

// Get returns the caller's employer, or nil when unlinked.
func (s *Service) Get(ctx context.Context, p identity.Principal) (*Employer, error) {
	id, err := s.resolver.EmployerIDFor(ctx, p)
	if err != nil {
		return nil, apperr.Internal("resolve employer", err)
	}
	if id == "" {
		return nil, nil
	}
	e, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("load employer", err)
	}
	return &e, nil
}

// Create makes a new employer and links the caller to it. The link is
// write-once: a linked caller gets a Conflict.
func (s *Service) Create(ctx context.Context, p identity.Principal, in Input) (Employer, error) {
	in, err := in.normalize()
	if err != nil {
		return Employer{}, err
	}
	existing, err := s.resolver.EmployerIDFor(ctx, p)
	if err != nil {
		return Employer{}, apperr.Internal("resolve employer", err)
	}
	if existing != "" {
		return Employer{}, apperr.Conflict("Employer already exists for this user")
	}

	e, err := s.repo.CreateAndLink(ctx, p.SubjectID, Employer{ID: uuid.NewString(), Name: in.Name, Notes: in.Notes})
	if errors.Is(err, users.ErrAlreadyLinked) {
		return Employer{}, apperr.Conflict("Employer already exists for this user")
	}
	if errors.Is(err, users.ErrNotFound) {
		return Employer{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return Employer{}, apperr.Internal("create employer", err)
	}

	s.audit.Record(ctx, audit.Subject{Type: audit.ObjEmployer, ID: e.ID}, "CREATE", audit.Actor{ID: p.SubjectID, Role: string(p.Role)}, nil)
	return e, nil
}

// Update renames the caller's employer. An unlinked caller gets a Validation error.
func (s *Service) Update(ctx context.Context, p identity.Principal, in Input) (Employer, error) {
	in, err := in.normalize()
	if err != nil {
		return Employer{}, err
	}
	id, err := s.resolver.EmployerIDFor(ctx, p)
	if err != nil {
		return Employer{}, apperr.Internal("resolve employer", err)
	}
	if id == "" {
		return Employer{}, apperr.Validation("employer", "No employer linked to this user")
	}

	e, err := s.repo.Update(ctx, Employer{ID: id, Name: in.Name, Notes: in.Notes})
	if errors.Is(err, ErrNotFound) {
		return Employer{}, apperr.NotFound("Employer not found")
	}
	if err != nil {
		return Employer{}, apperr.Internal("update employer", err)
	}
	s.audit.Record(ctx, audit.Subject{Type: audit.ObjEmployer, ID: e.ID}, "UPDATE", audit.Actor{ID: p.SubjectID, Role: string(p.Role)}, nil)
	return e, nil
}
