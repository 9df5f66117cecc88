package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/repository"
	"github.com/tsystem/tracker/pkg/errorutil"
)

// wantCode asserts err is a DomainError carrying the given code.
func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *errorutil.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, domainErr.Code, err)
	}
}

// memStore backs the in-memory repository fakes. All fakes share one
// store so the transaction fake can snapshot and restore every table at
// once. Deletes mirror the schema cascades.
type memStore struct {
	users    []domain.User
	projects []domain.Project
	tickets  []domain.Ticket
	history  []domain.TicketHistory
	comments []domain.TicketComment

	nextID     int
	failAppend error
}

var memEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func (s *memStore) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%04d", prefix, s.nextID)
}

// now yields strictly increasing timestamps so newest-first ordering is
// deterministic even within one test.
func (s *memStore) now() time.Time {
	s.nextID++
	return memEpoch.Add(time.Duration(s.nextID) * time.Second)
}

func (s *memStore) clone() *memStore {
	c := &memStore{nextID: s.nextID, failAppend: s.failAppend}
	c.users = append(c.users, s.users...)
	c.projects = append(c.projects, s.projects...)
	c.tickets = append(c.tickets, s.tickets...)
	c.history = append(c.history, s.history...)
	c.comments = append(c.comments, s.comments...)
	return c
}

func (s *memStore) deleteTicketCascade(ticketID string) {
	kept := s.history[:0]
	for _, h := range s.history {
		if h.TicketID != ticketID {
			kept = append(kept, h)
		}
	}
	s.history = kept

	keptComments := s.comments[:0]
	for _, c := range s.comments {
		if c.TicketID != ticketID {
			keptComments = append(keptComments, c)
		}
	}
	s.comments = keptComments
}

// memTxManager snapshots the store before fn and restores it when fn
// fails, matching real transaction semantics closely enough for the
// atomicity tests.
type memTxManager struct {
	store *memStore
}

func (m *memTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := m.store.clone()
	if err := fn(ctx); err != nil {
		*m.store = *snapshot
		return err
	}
	return nil
}

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.store.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errors.New("duplicate user")
		}
	}
	user.ID = r.store.newID("user")
	user.CreatedAt = r.store.now()
	r.store.users = append(r.store.users, *user)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.store.users {
		if u.ID == id {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.store.users {
		if u.Username == username {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	for i := range r.store.users {
		if r.store.users[i].ID == id {
			r.store.users[i].PasswordHash = passwordHash
			r.store.users[i].PasswordChangedAt = &changedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), r.store.users...), nil
}

type memProjectRepo struct{ store *memStore }

func (r *memProjectRepo) Create(_ context.Context, project *domain.Project) error {
	project.ID = r.store.newID("proj")
	project.CreatedAt = r.store.now()
	r.store.projects = append(r.store.projects, *project)
	return nil
}

func (r *memProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	for _, p := range r.store.projects {
		if p.ID == id {
			copied := p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memProjectRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Project, error) {
	var out []domain.Project
	for i := len(r.store.projects) - 1; i >= 0; i-- {
		if r.store.projects[i].OwnerID == ownerID {
			out = append(out, r.store.projects[i])
		}
	}
	return out, nil
}

func (r *memProjectRepo) Update(_ context.Context, project *domain.Project) error {
	for i := range r.store.projects {
		if r.store.projects[i].ID == project.ID {
			r.store.projects[i] = *project
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memProjectRepo) Delete(_ context.Context, id string) error {
	for i := range r.store.projects {
		if r.store.projects[i].ID == id {
			r.store.projects = append(r.store.projects[:i], r.store.projects[i+1:]...)
			kept := r.store.tickets[:0]
			for _, t := range r.store.tickets {
				if t.ProjectID == id {
					r.store.deleteTicketCascade(t.ID)
				} else {
					kept = append(kept, t)
				}
			}
			r.store.tickets = kept
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memProjectRepo) ListAll(_ context.Context) ([]domain.Project, error) {
	return append([]domain.Project(nil), r.store.projects...), nil
}

type memTicketRepo struct{ store *memStore }

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.store.newID("ticket")
	ticket.CreatedAt = r.store.now()
	r.store.tickets = append(r.store.tickets, *ticket)
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	for i := range r.store.tickets {
		if r.store.tickets[i].ID == ticket.ID {
			r.store.tickets[i] = *ticket
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memTicketRepo) GetByProject(_ context.Context, ticketID, projectID string) (*domain.Ticket, error) {
	for _, t := range r.store.tickets {
		if t.ID == ticketID && t.ProjectID == projectID {
			copied := t
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTicketRepo) ListByProject(_ context.Context, projectID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for i := len(r.store.tickets) - 1; i >= 0; i-- {
		if r.store.tickets[i].ProjectID == projectID {
			out = append(out, r.store.tickets[i])
		}
	}
	return out, nil
}

func (r *memTicketRepo) ListByAssignee(_ context.Context, assigneeID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for i := len(r.store.tickets) - 1; i >= 0; i-- {
		t := r.store.tickets[i]
		if t.AssigneeID != nil && *t.AssigneeID == assigneeID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	for i := range r.store.tickets {
		if r.store.tickets[i].ID == id {
			r.store.tickets = append(r.store.tickets[:i], r.store.tickets[i+1:]...)
			r.store.deleteTicketCascade(id)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	return append([]domain.Ticket(nil), r.store.tickets...), nil
}

type memHistoryRepo struct{ store *memStore }

func (r *memHistoryRepo) Append(_ context.Context, entry *domain.TicketHistory) error {
	if r.store.failAppend != nil {
		return r.store.failAppend
	}
	entry.ID = r.store.newID("hist")
	r.store.history = append(r.store.history, *entry)
	return nil
}

func (r *memHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	var out []domain.TicketHistory
	for _, h := range r.store.history {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memHistoryRepo) ListAll(_ context.Context) ([]domain.TicketHistory, error) {
	return append([]domain.TicketHistory(nil), r.store.history...), nil
}

type memCommentRepo struct{ store *memStore }

func (r *memCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	comment.ID = r.store.newID("comment")
	comment.CreatedAt = r.store.now()
	r.store.comments = append(r.store.comments, *comment)
	return nil
}

func (r *memCommentRepo) GetByID(_ context.Context, id string) (*domain.TicketComment, error) {
	for _, c := range r.store.comments {
		if c.ID == id {
			copied := c
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCommentRepo) Update(_ context.Context, comment *domain.TicketComment) error {
	for i := range r.store.comments {
		if r.store.comments[i].ID == comment.ID {
			r.store.comments[i] = *comment
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memCommentRepo) Delete(_ context.Context, id string) error {
	for i := range r.store.comments {
		if r.store.comments[i].ID == id {
			r.store.comments = append(r.store.comments[:i], r.store.comments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	var out []domain.TicketComment
	for _, c := range r.store.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCommentRepo) ListAll(_ context.Context) ([]domain.TicketComment, error) {
	return append([]domain.TicketComment(nil), r.store.comments...), nil
}

// fixture wires the full service graph over a fresh in-memory store.
type fixture struct {
	store    *memStore
	users    *memUserRepo
	projects *memProjectRepo
	tickets  *memTicketRepo
	history  *memHistoryRepo
	comments *memCommentRepo

	guard          *OwnershipGuard
	ticketService  *TicketService
	commentService *CommentService
	projectService *ProjectService

	owner    domain.Principal
	stranger domain.Principal
	assignee domain.User
}

func newFixture() *fixture {
	store := &memStore{}
	f := &fixture{
		store:    store,
		users:    &memUserRepo{store: store},
		projects: &memProjectRepo{store: store},
		tickets:  &memTicketRepo{store: store},
		history:  &memHistoryRepo{store: store},
		comments: &memCommentRepo{store: store},
	}
	f.guard = NewOwnershipGuard(f.projects)
	f.ticketService = NewTicketService(TicketDependencies{
		Guard:       f.guard,
		TicketRepo:  f.tickets,
		UserRepo:    f.users,
		HistoryRepo: f.history,
		Tx:          &memTxManager{store: store},
	})
	f.commentService = NewCommentService(CommentDependencies{
		Guard:       f.guard,
		TicketRepo:  f.tickets,
		CommentRepo: f.comments,
	})
	f.projectService = NewProjectService(f.guard, f.projects)

	owner := f.seedUser("owner", domain.RoleUser)
	stranger := f.seedUser("stranger", domain.RoleUser)
	f.assignee = f.seedUser("assignee", domain.RoleUser)

	f.owner = domain.Principal{UserID: owner.ID, Username: owner.Username, Role: owner.Role}
	f.stranger = domain.Principal{UserID: stranger.ID, Username: stranger.Username, Role: stranger.Role}
	return f
}

func (f *fixture) seedUser(username string, role domain.Role) domain.User {
	user := domain.User{
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		Surname:      "Test",
		PasswordHash: "x",
		Role:         role,
	}
	_ = f.users.Create(context.Background(), &user)
	return user
}

func (f *fixture) seedProject(owner domain.Principal) *domain.Project {
	project, err := f.projectService.Create(context.Background(), ProjectCreateInput{Name: "Workspace"}, owner)
	if err != nil {
		panic(err)
	}
	return project
}

func (f *fixture) seedTicket(projectID string, input TicketCreateInput) *domain.Ticket {
	ticket, err := f.ticketService.Create(context.Background(), projectID, input, f.owner)
	if err != nil {
		panic(err)
	}
	return ticket
}
