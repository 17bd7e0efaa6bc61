package seeds

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"quizsite/models"
	"quizsite/services"

	"gorm.io/gorm"
)

//go:embed data_quizzes.json
var quizzesJSON []byte

type Admin struct {
	Username string
	Email    string
	Password string
}

// Run creates the superuser and the sample quizzes. Existing rows are left alone,
// so running it twice is harmless.
func Run(ctx context.Context, db *gorm.DB, quizzes *services.QuizService, admin Admin) error {
	user, err := ensureSuperuser(ctx, db, admin)
	if err != nil {
		return err
	}
	return seedQuizzes(ctx, db, quizzes, user.ID)
}

func ensureSuperuser(ctx context.Context, db *gorm.DB, admin Admin) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", admin.Email).First(&user).Error
	if err == nil {
		log.Printf("Superuser %s already exists.", user.Username)
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if admin.Password == "" {
		return nil, errors.New("ADMIN_PASSWORD must be set to create the superuser")
	}
	hash, err := services.HashPassword(admin.Password)
	if err != nil {
		return nil, err
	}

	user = models.User{
		Username:     admin.Username,
		Email:        admin.Email,
		FirstName:    admin.Username,
		LastName:     "Admin",
		PasswordHash: hash,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserProfile{UserID: user.ID}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create superuser: %w", err)
	}

	log.Printf("Superuser %s created successfully!", user.Username)
	return &user, nil
}

func seedQuizzes(ctx context.Context, db *gorm.DB, quizzes *services.QuizService, creatorID uint) error {
	var requests []services.QuizRequest
	if err := json.Unmarshal(quizzesJSON, &requests); err != nil {
		return fmt.Errorf("failed to parse seed quizzes: %w", err)
	}

	for i := range requests {
		req := &requests[i]

		var count int64
		if err := db.WithContext(ctx).Model(&models.Quiz{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if _, err := quizzes.CreateQuiz(ctx, creatorID, req); err != nil {
			return fmt.Errorf("failed to seed quiz %q: %w", req.Name, err)
		}
		log.Printf("Quiz %q created!", req.Name)
	}

	log.Printf("Initial data setup completed successfully!")
	return nil
}
