package services

import (
	"context"
	"fmt"

	"quizsite/models"

	"gorm.io/gorm"
)

type UserService struct {
	db    *gorm.DB
	cache *StatsCache
}

func NewUserService(db *gorm.DB, cache *StatsCache) *UserService {
	return &UserService{db: db, cache: cache}
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// DeleteUser removes an account together with its profile, its attempts and the
// quizzes it authored. Superusers can never be deleted, and nobody deletes themselves here.
func (s *UserService) DeleteUser(ctx context.Context, actingUserID, userID uint) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuperuser {
		return nil, fmt.Errorf("%w: cannot delete superuser accounts", ErrForbidden)
	}
	if user.ID == actingUserID {
		return nil, fmt.Errorf("%w: cannot delete your own account", ErrForbidden)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&models.Quiz{}).Where("created_by_id = ?", user.ID).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}
		if err := deleteQuizChildren(tx, quizIDs); err != nil {
			return err
		}
		if len(quizIDs) > 0 {
			if err := tx.Where("id IN ?", quizIDs).Delete(&models.Quiz{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Attempt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserProfile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, user.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return user, nil
}
