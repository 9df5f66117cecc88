package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/tsystem/tracker/internal/domain"
	"github.com/tsystem/tracker/internal/repository"
)

// Cache is the narrow caching interface the export service needs. A miss
// is a nil value with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const exportCacheKey = "export:snapshot"

// ExportData is the full database snapshot returned to administrators.
type ExportData struct {
	Users     []domain.User          `json:"users"`
	Projects  []domain.Project       `json:"projects"`
	Tickets   []domain.Ticket        `json:"tickets"`
	Comments  []domain.TicketComment `json:"ticket_comments"`
	Histories []domain.TicketHistory `json:"ticket_histories"`
}

// ExportService assembles the snapshot, caching it briefly since the
// payload is expensive to build and purely read-only.
type ExportService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	tickets  repository.TicketRepository
	comments repository.TicketCommentRepository
	history  repository.TicketHistoryRepository
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// ExportDependencies bundles collaborators for the export service.
type ExportDependencies struct {
	UserRepo    repository.UserRepository
	ProjectRepo repository.ProjectRepository
	TicketRepo  repository.TicketRepository
	CommentRepo repository.TicketCommentRepository
	HistoryRepo repository.TicketHistoryRepository
	Cache       Cache
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(deps ExportDependencies) *ExportService {
	return &ExportService{
		users:    deps.UserRepo,
		projects: deps.ProjectRepo,
		tickets:  deps.TicketRepo,
		comments: deps.CommentRepo,
		history:  deps.HistoryRepo,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		logger:   deps.Logger,
	}
}

// Export returns the snapshot, served from cache when fresh.
func (s *ExportService) Export(ctx context.Context) (*ExportData, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, exportCacheKey); err == nil && raw != nil {
			var cached ExportData
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
			s.logger.Warn("discarding malformed export cache entry")
		}
	}

	data := &ExportData{}
	var err error
	if data.Users, err = s.users.ListAll(ctx); err != nil {
		return nil, err
	}
	if data.Projects, err = s.projects.ListAll(ctx); err != nil {
		return nil, err
	}
	if data.Tickets, err = s.tickets.ListAll(ctx); err != nil {
		return nil, err
	}
	if data.Comments, err = s.comments.ListAll(ctx); err != nil {
		return nil, err
	}
	if data.Histories, err = s.history.ListAll(ctx); err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if raw, err := json.Marshal(data); err == nil {
			if err := s.cache.Set(ctx, exportCacheKey, raw, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache export snapshot", zap.Error(err))
			}
		}
	}
	return data, nil
}
