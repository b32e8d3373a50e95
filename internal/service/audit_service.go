package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tirs/dashboard/internal/models"
	appErrors "github.com/tirs/dashboard/pkg/errors"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type auditFailureCounter interface {
	IncAuditWriteFailure()
}

// AuditService owns the audit trail write path. Writes are best-effort:
// a failed write never blocks or rolls back the mutation it accompanies,
// but it is surfaced through a warning log and a metrics counter.
type AuditService struct {
	repo    auditRepository
	logger  *zap.Logger
	metrics auditFailureCounter

	defaultListLimit int
	retentionHorizon time.Duration
}

// AuditConfig tunes retrieval caps and the retention sweep.
type AuditConfig struct {
	ListLimit        int
	RetentionHorizon time.Duration
}

// NewAuditService constructs an AuditService instance.
func NewAuditService(repo auditRepository, logger *zap.Logger, metrics auditFailureCounter, cfg AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if cfg.RetentionHorizon <= 0 {
		cfg.RetentionHorizon = 30 * 24 * time.Hour
	}
	return &AuditService{
		repo:             repo,
		logger:           logger,
		metrics:          metrics,
		defaultListLimit: cfg.ListLimit,
		retentionHorizon: cfg.RetentionHorizon,
	}
}

// Record writes one audit entry for a privileged mutation. Old and new are
// opaque serialized snapshots of the row state before and after.
func (s *AuditService) Record(ctx context.Context, actorID int64, action, table string, recordID *int64, oldValues, newValues string) {
	entry := &models.AuditLog{
		ActorUserID: actorID,
		Action:      action,
		TableName:   table,
		RecordID:    recordID,
		OldValues:   oldValues,
		NewValues:   newValues,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if s.metrics != nil {
			s.metrics.IncAuditWriteFailure()
		}
		s.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.String("table", table),
			zap.Int64("actor_id", actorID),
			zap.Error(appErrors.Wrap(err, appErrors.ErrAuditWrite.Code, appErrors.ErrAuditWrite.Status, appErrors.ErrAuditWrite.Message)),
		)
	}
}

// List returns entries newest-first. A non-positive limit falls back to the
// configured default cap.
func (s *AuditService) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = s.defaultListLimit
	}
	entries, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list audit logs")
	}
	return entries, nil
}

// Sweep irreversibly purges entries older than the retention horizon and
// returns the purged count.
func (s *AuditService) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retentionHorizon)
	purged, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to sweep audit logs")
	}
	s.logger.Info("audit retention sweep completed",
		zap.Int64("purged", purged),
		zap.Time("cutoff", cutoff),
	)
	return purged, nil
}
