package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"strconv"
	"time"

	"github.com/campuscore/campuscore/internal/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Service coordinates audit recording and timeline reads.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger

	now func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record appends an audit entry for an admin mutation. Recording never
// fails the caller: a write error is logged and swallowed so the mutation
// it describes still succeeds.
func (s *Service) Record(ctx context.Context, identity *shared.Identity, action, entity, entityID, detail string) {
	entry := &Entry{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
		At:       s.now(),
	}
	if identity != nil {
		entry.Actor = identity.Email
		entry.ActorID = identity.UserID
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("record audit entry",
			slog.String("action", action), slog.String("entity", entity), slog.Any("error", err))
	}
}

// Timeline returns a page of entries plus paging metadata.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	// One extra row tells us whether a next page exists.
	rows, err := s.repo.Window(ctx, filters, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	return Result{
		Rows:   rows,
		Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}

// ExportCSV renders every matching entry as CSV.
func (s *Service) ExportCSV(ctx context.Context, filters TimelineFilters) ([]byte, error) {
	rows, err := s.repo.All(ctx, filters)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{"at", "actor", "action", "entity", "entity_id", "detail"}); err != nil {
		return nil, err
	}
	for _, entry := range rows {
		record := []string{
			entry.At.Format(time.RFC3339),
			entry.Actor,
			entry.Action,
			entry.Entity,
			entry.EntityID,
			entry.Detail,
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EntityID formats a numeric ID for Record calls.
func EntityID(id int64) string {
	return strconv.FormatInt(id, 10)
}
