package contact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ignite/massmail/internal/domain"
	"github.com/ignite/massmail/internal/pkg/logger"
)

// Service implements contact management.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a contact service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns every contact.
func (s *Service) List(ctx context.Context) ([]domain.Contact, error) {
	return s.repo.List(ctx)
}

// Get returns a single contact.
func (s *Service) Get(ctx context.Context, id string) (*domain.Contact, error) {
	return s.repo.Get(ctx, id)
}

// Exists reports whether a contact with this exact username is stored.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create adds a contact unless the username is already stored.
func (s *Service) Create(ctx context.Context, username string) (*domain.Contact, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	exists, err := s.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup contact: %w", err)
	}
	if exists {
		return nil, ErrExists
	}

	c := &domain.Contact{Username: username, AddedAt: s.now().UTC()}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

// Update renames a contact and refreshes its added_at.
func (s *Service) Update(ctx context.Context, id, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrUsernameRequired
	}
	return s.repo.Update(ctx, id, username, s.now().UTC())
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Import reads a CSV with a username column and adds every value not yet
// stored. Each row is counted exactly once: the first occurrence of a value
// is either added or already-existing, later occurrences are duplicates.
func (s *Service) Import(ctx context.Context, r io.Reader) (*domain.ImportReport, error) {
	names, err := ReadUsernames(r)
	if err != nil {
		return nil, err
	}

	report := &domain.ImportReport{}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			report.Skipped++
			continue
		}
		if _, dup := seen[name]; dup {
			report.DuplicateInFile++
			report.DuplicateUsernames = append(report.DuplicateUsernames, name)
			continue
		}
		seen[name] = struct{}{}

		_, err := s.Create(ctx, name)
		switch {
		case err == nil:
			report.Added++
			report.AddedUsernames = append(report.AddedUsernames, name)
		case errors.Is(err, ErrExists):
			report.AlreadyExists++
			report.ExistingUsernames = append(report.ExistingUsernames, name)
		default:
			return report, fmt.Errorf("import %q: %w", name, err)
		}
	}

	logger.Info("contact: import finished",
		"added", report.Added, "duplicates", report.DuplicateInFile,
		"existing", report.AlreadyExists, "skipped", report.Skipped)
	return report, nil
}
