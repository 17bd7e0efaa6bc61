package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"quizsite/models"

	"gorm.io/gorm"
)

func TestScorePercent(t *testing.T) {
	cases := []struct {
		correct, total int
		want           float64
	}{
		{3, 5, 60},
		{0, 5, 0},
		{5, 5, 100},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 0, 0},
		{1, 32, 3.12},
		{5, 32, 15.62},
		{3, 32, 9.38},
		{7, 8, 87.5},
	}
	for _, tc := range cases {
		if got := ScorePercent(tc.correct, tc.total); got != tc.want {
			t.Fatalf("ScorePercent(%d, %d) = (%v), want (%v)", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestParseQuestionIDs(t *testing.T) {
	got := ParseQuestionIDs(" 4,2,,abc,0,-1,2, 9 ")
	want := []uint{4, 2, 9}
	if len(got) != len(want) {
		t.Fatalf("ParseQuestionIDs = (%v), want (%v)", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ParseQuestionIDs = (%v), want (%v)", got, want)
		}
	}

	if got := ParseQuestionIDs(""); len(got) != 0 {
		t.Fatalf("ParseQuestionIDs empty = (%v), want empty", got)
	}
}

func TestBuildAttemptScoresAndSnapshots(t *testing.T) {
	presented := bankOf(5)
	answers := map[string]string{
		"1": "A",
		"2": "A",
		"3": " A ",
		"4": "B",
		"5": "",
	}

	attempt, err := BuildAttempt(1, 1, presented, answers, time.Now())
	if err != nil {
		t.Fatalf("BuildAttempt returned error: %v", err)
	}
	if attempt.Score != 60 {
		t.Fatalf("Score = (%v), want (60)", attempt.Score)
	}
	if attempt.CorrectCount() != 3 || attempt.TotalQuestions() != 5 {
		t.Fatalf("counts = (%d/%d), want (3/5)", attempt.CorrectCount(), attempt.TotalQuestions())
	}

	userAnswers := attempt.UserAnswers.Data()
	if answer, ok := userAnswers["5"]; !ok || answer != nil {
		t.Fatalf("blank answer = (%v, %t), want (nil, true)", answer, ok)
	}
	if answer := userAnswers["3"]; answer == nil || *answer != "A" {
		t.Fatalf("trimmed answer = (%v), want (A)", answer)
	}

	snapshots := attempt.QuestionsData.Data()
	for _, q := range presented {
		qid := strconv.FormatUint(uint64(q.ID), 10)
		if _, ok := snapshots[qid]; !ok {
			t.Fatalf("snapshot missing question %s", qid)
		}
		if attempt.CorrectAnswers.Data()[qid] != "A" {
			t.Fatalf("correct answer for %s = (%q), want (A)", qid, attempt.CorrectAnswers.Data()[qid])
		}
	}
}

func TestBuildAttemptRejectsInvalidCorrectOption(t *testing.T) {
	presented := []models.Question{{ID: 1, CorrectOption: "E"}}
	if _, err := BuildAttempt(1, 1, presented, nil, time.Now()); err == nil {
		t.Fatalf("expected error for correct option outside A-D")
	}
}

func TestRecordAttempt(t *testing.T) {
	db := newTestDB(t)
	quizzes := NewQuizService(db, nil)
	attempts := NewAttemptService(db, quizzes, nil, nil)
	ctx := context.Background()

	admin := createUser(t, db, "admin", true, false)
	alice := createUser(t, db, "alice", false, false)
	quiz := createQuiz(t, quizzes, admin.ID, models.QuizTypeFixed, 5, 5)
	other := createQuiz(t, quizzes, admin.ID, models.QuizTypeFixed, 1, 1)

	var idList string
	answers := map[string]string{}
	for i, q := range quiz.Questions {
		qid := strconv.FormatUint(uint64(q.ID), 10)
		idList += qid + ","
		if i < 3 {
			answers[qid] = "A"
		} else {
			answers[qid] = "C"
		}
	}
	foreign := strconv.FormatUint(uint64(other.Questions[0].ID), 10)
	idList += foreign
	answers[foreign] = "A"

	attempt, err := attempts.RecordAttempt(ctx, alice.ID, quiz.ID, &SubmitAttemptRequest{
		QuestionIDs: idList,
		Answers:     answers,
	})
	if err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if attempt.Score != 60 {
		t.Fatalf("Score = (%v), want (60)", attempt.Score)
	}
	if attempt.TotalQuestions() != 5 {
		t.Fatalf("TotalQuestions = (%d), want (5)", attempt.TotalQuestions())
	}
	if _, ok := attempt.QuestionsData.Data()[foreign]; ok {
		t.Fatalf("snapshot contains question %s from another quiz", foreign)
	}

	var stored int64
	db.Model(&models.Attempt{}).Count(&stored)
	if stored != 1 {
		t.Fatalf("stored attempts = (%d), want (1)", stored)
	}
}

func TestRecordAttemptWithNoValidQuestions(t *testing.T) {
	db := newTestDB(t)
	quizzes := NewQuizService(db, nil)
	attempts := NewAttemptService(db, quizzes, nil, nil)

	admin := createUser(t, db, "admin", true, false)
	quiz := createQuiz(t, quizzes, admin.ID, models.QuizTypeFixed, 2, 2)

	attempt, err := attempts.RecordAttempt(context.Background(), admin.ID, quiz.ID, &SubmitAttemptRequest{QuestionIDs: "999,abc"})
	if err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if attempt.Score != 0 || attempt.TotalQuestions() != 0 {
		t.Fatalf("attempt = (score %v, total %d), want (0, 0)", attempt.Score, attempt.TotalQuestions())
	}
}

func TestRecordAttemptErrors(t *testing.T) {
	db := newTestDB(t)
	quizzes := NewQuizService(db, nil)
	attempts := NewAttemptService(db, quizzes, nil, nil)
	ctx := context.Background()

	admin := createUser(t, db, "admin", true, false)
	inactive := false
	quiz, err := quizzes.CreateQuiz(ctx, admin.ID, &QuizRequest{
		Name:         "Hidden",
		TimeLimit:    5,
		NumQuestions: 1,
		QuizType:     models.QuizTypeFixed,
		IsActive:     &inactive,
		Questions:    questionInputs(1, "B"),
	})
	if err != nil {
		t.Fatalf("CreateQuiz returned error: %v", err)
	}

	if _, err := attempts.RecordAttempt(ctx, admin.ID, quiz.ID, &SubmitAttemptRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive quiz err = (%v), want (%v)", err, ErrNotFound)
	}
	if _, err := attempts.RecordAttempt(ctx, admin.ID, 12345, &SubmitAttemptRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quiz err = (%v), want (%v)", err, ErrNotFound)
	}

	active := createQuiz(t, quizzes, admin.ID, models.QuizTypeFixed, 1, 1)
	if _, err := attempts.RecordAttempt(ctx, 999, active.ID, &SubmitAttemptRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = (%v), want (%v)", err, ErrNotFound)
	}

	var stored int64
	db.Model(&models.Attempt{}).Count(&stored)
	if stored != 0 {
		t.Fatalf("stored attempts = (%d), want (0)", stored)
	}
}

func TestRecordAttemptRollsBackFailedInsert(t *testing.T) {
	db := newTestDB(t)
	quizzes := NewQuizService(db, nil)
	attempts := NewAttemptService(db, quizzes, nil, nil)

	admin := createUser(t, db, "admin", true, false)
	quiz := createQuiz(t, quizzes, admin.ID, models.QuizTypeFixed, 2, 2)

	// Fail after the row is written so only the rollback keeps it out.
	errInsert := errors.New("attempt insert failed")
	err := db.Callback().Create().After("gorm:create").Register("test:fail_attempt_insert", func(tx *gorm.DB) {
		if tx.Statement.Table == "user_quiz_attempts" {
			tx.AddError(errInsert)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = attempts.RecordAttempt(context.Background(), admin.ID, quiz.ID, &SubmitAttemptRequest{
		QuestionIDs: JoinQuestionIDs(quiz.Questions),
		Answers:     map[string]string{"1": "A"},
	})
	if !errors.Is(err, errInsert) {
		t.Fatalf("RecordAttempt err = (%v), want (%v)", err, errInsert)
	}

	var stored int64
	if err := db.Model(&models.Attempt{}).Count(&stored).Error; err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if stored != 0 {
		t.Fatalf("stored attempts = (%d), want (0)", stored)
	}
}

func TestGetUserAttemptIsScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	quizzes := NewQuizService(db, nil)
	attempts := NewAttemptService(db, quizzes, nil, nil)
	ctx := context.Background()

	admin := createUser(t, db, "admin", true, false)
	alice := createUser(t, db, "alice", false, false)
	bob := createUser(t, db, "bob", false, false)
	quiz := createQuiz(t, quizzes, admin.ID, models.QuizTypeFixed, 1, 1)

	attempt, err := attempts.RecordAttempt(ctx, alice.ID, quiz.ID, &SubmitAttemptRequest{QuestionIDs: JoinQuestionIDs(quiz.Questions)})
	if err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	got, err := attempts.GetUserAttempt(ctx, alice.ID, attempt.ID)
	if err != nil {
		t.Fatalf("GetUserAttempt owner returned error: %v", err)
	}
	if got.Quiz == nil || got.Quiz.Name != quiz.Name || got.User == nil || got.User.Username != "alice" {
		t.Fatalf("GetUserAttempt did not preload quiz and user")
	}

	if _, err := attempts.GetUserAttempt(ctx, bob.ID, attempt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUserAttempt other user err = (%v), want (%v)", err, ErrNotFound)
	}
	if _, err := attempts.GetAttempt(ctx, attempt.ID); err != nil {
		t.Fatalf("GetAttempt returned error: %v", err)
	}
}

func TestListAttemptsFiltersAndOrder(t *testing.T) {
	db := newTestDB(t)
	quizzes := NewQuizService(db, nil)
	attempts := NewAttemptService(db, quizzes, nil, nil)
	ctx := context.Background()

	admin := createUser(t, db, "admin", true, false)
	alice := createUser(t, db, "alice", false, false)
	quizA := createQuiz(t, quizzes, admin.ID, models.QuizTypeFixed, 1, 1)
	quizB := createQuiz(t, quizzes, admin.ID, models.QuizTypeRandom, 1, 1)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	attempts.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	submit := func(userID uint, quiz *models.Quiz) {
		t.Helper()
		if _, err := attempts.RecordAttempt(ctx, userID, quiz.ID, &SubmitAttemptRequest{QuestionIDs: JoinQuestionIDs(quiz.Questions)}); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}
	submit(alice.ID, quizA)
	submit(admin.ID, quizA)
	submit(alice.ID, quizB)

	all, err := attempts.ListAttempts(ctx, AttemptFilter{})
	if err != nil {
		t.Fatalf("ListAttempts returned error: %v", err)
	}
	if len(all) != 3 || all[0].QuizID != quizB.ID || all[0].Username != "alice" {
		t.Fatalf("ListAttempts newest first = (%+v)", all)
	}

	mine, _ := attempts.ListAttempts(ctx, AttemptFilter{UserID: alice.ID})
	if len(mine) != 2 {
		t.Fatalf("ListAttempts by user len = (%d), want (2)", len(mine))
	}
	onQuizA, _ := attempts.ListAttempts(ctx, AttemptFilter{QuizID: quizA.ID, UserID: alice.ID})
	if len(onQuizA) != 1 {
		t.Fatalf("ListAttempts by user and quiz len = (%d), want (1)", len(onQuizA))
	}
	limited, _ := attempts.ListAttempts(ctx, AttemptFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("ListAttempts limited len = (%d), want (2)", len(limited))
	}
}
