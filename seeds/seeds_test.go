package seeds

import (
	"context"
	"path/filepath"
	"testing"

	"quizsite/models"
	"quizsite/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")+"?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	quizzes := services.NewQuizService(db, nil)
	admin := Admin{Username: "admin", Email: "admin@example.com", Password: "admin-pass"}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Run(ctx, db, quizzes, admin); err != nil {
			t.Fatalf("Run #%d returned error: %v", i+1, err)
		}
	}

	var users, quizCount, questions int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Quiz{}).Count(&quizCount)
	db.Model(&models.Question{}).Count(&questions)
	if users != 1 || quizCount != 2 || questions != 12 {
		t.Fatalf("seeded = (%d users, %d quizzes, %d questions), want (1, 2, 12)", users, quizCount, questions)
	}

	var root models.User
	db.First(&root)
	if !root.IsSuperuser || !root.IsStaff {
		t.Fatalf("seeded admin flags = (staff %t, superuser %t), want both", root.IsStaff, root.IsSuperuser)
	}

	var random models.Quiz
	if err := db.Where("name = ?", "Python Programming Fundamentals").First(&random).Error; err != nil {
		t.Fatalf("random quiz missing: %v", err)
	}
	if random.QuizType != models.QuizTypeRandom || random.NumQuestions != 5 || random.TotalQuestions != 7 {
		t.Fatalf("random quiz = (%q, %d/%d)", random.QuizType, random.NumQuestions, random.TotalQuestions)
	}
}

func TestRunNeedsPasswordForNewAdmin(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "seed.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := Run(context.Background(), db, services.NewQuizService(db, nil), Admin{Username: "admin", Email: "admin@example.com"}); err == nil {
		t.Fatalf("expected error without ADMIN_PASSWORD")
	}
}
