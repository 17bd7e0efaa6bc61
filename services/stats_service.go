package services

import (
	"context"
	"time"

	"quizsite/models"

	"gorm.io/gorm"
)

const DefaultRecentAttempts = 10

type StatsService struct {
	db       *gorm.DB
	attempts *AttemptService
	cache    *StatsCache
}

func NewStatsService(db *gorm.DB, attempts *AttemptService, cache *StatsCache) *StatsService {
	return &StatsService{db: db, attempts: attempts, cache: cache}
}

type UserStats struct {
	TotalAttempts int64   `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
}

type UserStatsRow struct {
	User models.User `json:"user"`
	UserStats
}

type Dashboard struct {
	TotalUsers     int64            `json:"total_users"`
	TotalQuizzes   int64            `json:"total_quizzes"`
	TotalAttempts  int64            `json:"total_attempts"`
	RecentAttempts []AttemptSummary `json:"recent_attempts"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

type scoreAggregate struct {
	UserID   uint
	Attempts int64
	AvgScore *float64
}

// UserStats counts the user's attempts and averages their scores. No attempts gives zeros.
func (s *StatsService) UserStats(ctx context.Context, userID uint) (*UserStats, error) {
	var agg scoreAggregate
	err := s.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Select("COUNT(*) AS attempts, AVG(score) AS avg_score").
		Where("user_id = ?", userID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats := &UserStats{TotalAttempts: agg.Attempts}
	if agg.AvgScore != nil {
		stats.AverageScore = *agg.AvgScore
	}
	return stats, nil
}

// UserStatsTable lists every user, newest first, with attempt count and average score.
func (s *StatsService) UserStatsTable(ctx context.Context) ([]UserStatsRow, error) {
	db := s.db.WithContext(ctx)

	var users []models.User
	if err := db.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	var aggs []scoreAggregate
	err := db.Model(&models.Attempt{}).
		Select("user_id, COUNT(*) AS attempts, AVG(score) AS avg_score").
		Group("user_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}

	byUser := make(map[uint]scoreAggregate, len(aggs))
	for _, agg := range aggs {
		byUser[agg.UserID] = agg
	}

	rows := make([]UserStatsRow, len(users))
	for i, user := range users {
		rows[i].User = user
		if agg, ok := byUser[user.ID]; ok {
			rows[i].TotalAttempts = agg.Attempts
			if agg.AvgScore != nil {
				rows[i].AverageScore = *agg.AvgScore
			}
		}
	}
	return rows, nil
}

// Dashboard returns site totals and the most recent attempts.
func (s *StatsService) Dashboard(ctx context.Context, recent int) (*Dashboard, error) {
	if recent <= 0 {
		recent = DefaultRecentAttempts
	}
	if cached := s.cache.loadDashboard(ctx, recent); cached != nil {
		return cached, nil
	}
	gen, cacheable := s.cache.generation(ctx)

	db := s.db.WithContext(ctx)
	dashboard := &Dashboard{GeneratedAt: time.Now().UTC()}
	if err := db.Model(&models.User{}).Count(&dashboard.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Quiz{}).Count(&dashboard.TotalQuizzes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Attempt{}).Count(&dashboard.TotalAttempts).Error; err != nil {
		return nil, err
	}

	latest, err := s.attempts.ListAttempts(ctx, AttemptFilter{Limit: recent})
	if err != nil {
		return nil, err
	}
	dashboard.RecentAttempts = latest

	if cacheable {
		s.cache.storeDashboard(ctx, gen, recent, dashboard)
	}
	return dashboard, nil
}
