package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"quizsite/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, staff, superuser bool) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsStaff:      staff,
		IsSuperuser:  superuser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func questionInputs(n int, correct string) []QuestionInput {
	inputs := make([]QuestionInput, n)
	for i := range inputs {
		explanation := fmt.Sprintf("because %d", i+1)
		inputs[i] = QuestionInput{
			Text:          fmt.Sprintf("Question %d", i+1),
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectOption: correct,
			Explanation:   &explanation,
		}
	}
	return inputs
}

func createQuiz(t *testing.T, svc *QuizService, creatorID uint, quizType models.QuizType, numQuestions, bank int) *models.Quiz {
	t.Helper()

	quiz, err := svc.CreateQuiz(context.Background(), creatorID, &QuizRequest{
		Name:         fmt.Sprintf("%s quiz", quizType),
		TimeLimit:    10,
		NumQuestions: numQuestions,
		QuizType:     quizType,
		Questions:    questionInputs(bank, "A"),
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return quiz
}

func strPtr(s string) *string {
	return &s
}
