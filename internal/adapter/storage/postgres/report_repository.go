package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/appinventor-skill/internal/domain"
)

type ReportRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReportRepository(db *gorm.DB, log *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:  db,
		log: log,
	}
}

func (r *ReportRepository) Save(ctx context.Context, report *domain.AppReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) FindRecent(ctx context.Context, limit int) ([]domain.AppReport, error) {
	var reports []domain.AppReport
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepository) FindBySession(ctx context.Context, sessionID string) ([]domain.AppReport, error) {
	var reports []domain.AppReport
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
