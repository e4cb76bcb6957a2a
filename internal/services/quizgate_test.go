package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/siplanskills/backend/internal/types"
)

func question(quizID uuid.UUID, correct string) *types.QuizQuestion {
	return &types.QuizQuestion{
		ID:            uuid.New(),
		QuizID:        quizID,
		Prompt:        "q",
		CorrectAnswer: datatypes.JSON(correct),
	}
}

func TestGrade_ThreeOfFiveCorrectPasses(t *testing.T) {
	quizID := uuid.New()
	var questions []*types.QuizQuestion
	for i := 0; i < 5; i++ {
		questions = append(questions, question(quizID, `"a"`))
	}

	answers := []SubmittedAnswer{
		{QuestionID: questions[0].ID, Answer: json.RawMessage(`"a"`)},
		{QuestionID: questions[1].ID, Answer: json.RawMessage(`"a"`)},
		{QuestionID: questions[2].ID, Answer: json.RawMessage(`"a"`)},
		{QuestionID: questions[3].ID, Answer: json.RawMessage(`"b"`)},
		{QuestionID: questions[4].ID, Answer: json.RawMessage(`"c"`)},
	}

	got := Grade(3, questions, answers)
	if got.CorrectCount != 3 {
		t.Fatalf("expected 3 correct, got %d", got.CorrectCount)
	}
	if got.Score != 60 {
		t.Fatalf("expected score=60, got %d", got.Score)
	}
	if !got.Passed {
		t.Fatalf("expected passed=true")
	}
}

func TestGrade_UnansweredQuestionsCountIncorrect(t *testing.T) {
	quizID := uuid.New()
	questions := []*types.QuizQuestion{
		question(quizID, `"a"`),
		question(quizID, `"a"`),
	}
	answers := []SubmittedAnswer{
		{QuestionID: questions[0].ID, Answer: json.RawMessage(`"a"`)},
	}

	got := Grade(2, questions, answers)
	if got.CorrectCount != 1 {
		t.Fatalf("expected 1 correct, got %d", got.CorrectCount)
	}
	if got.Passed {
		t.Fatalf("expected passed=false with an unanswered question")
	}
}

func TestGrade_UnknownSubmittedAnswersIgnored(t *testing.T) {
	quizID := uuid.New()
	questions := []*types.QuizQuestion{question(quizID, `"a"`)}
	answers := []SubmittedAnswer{
		{QuestionID: questions[0].ID, Answer: json.RawMessage(`"a"`)},
		{QuestionID: uuid.New(), Answer: json.RawMessage(`"a"`)},
	}

	got := Grade(1, questions, answers)
	if got.Score != 100 {
		t.Fatalf("expected stray answers ignored, score=100, got %d", got.Score)
	}
	if len(got.Answers) != 1 {
		t.Fatalf("expected 1 graded answer, got %d", len(got.Answers))
	}
}

func TestGrade_StructuralComparisonIgnoresKeyOrder(t *testing.T) {
	quizID := uuid.New()
	q := question(quizID, `{"option":"b","reason":"x"}`)

	got := Grade(1, []*types.QuizQuestion{q}, []SubmittedAnswer{
		{QuestionID: q.ID, Answer: json.RawMessage(`{"reason":"x","option":"b"}`)},
	})
	if got.CorrectCount != 1 {
		t.Fatalf("expected structural match regardless of key order")
	}
}

func TestGrade_EmptyQuizScoresZero(t *testing.T) {
	got := Grade(0, nil, nil)
	if got.Score != 0 || got.CorrectCount != 0 {
		t.Fatalf("expected zero score for empty quiz, got %+v", got)
	}
}

func TestSelectQuestions_PrefixTakeAfterShuffle(t *testing.T) {
	quizID := uuid.New()
	var all []*types.QuizQuestion
	for i := 0; i < 10; i++ {
		all = append(all, question(quizID, `"a"`))
	}

	reverse := func(n int, swap func(i, j int)) {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			swap(i, j)
		}
	}

	picked := SelectQuestions(all, 3, reverse)
	if len(picked) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(picked))
	}
	if picked[0].ID != all[9].ID {
		t.Fatalf("expected shuffle to apply before the prefix take")
	}
	if len(all) != 10 {
		t.Fatalf("input slice must not shrink")
	}
}

func TestSelectQuestions_CountUnsetOrOversizedServesAll(t *testing.T) {
	quizID := uuid.New()
	all := []*types.QuizQuestion{question(quizID, `"a"`), question(quizID, `"b"`)}

	if got := SelectQuestions(all, 0, nil); len(got) != 2 {
		t.Fatalf("expected all questions for count=0, got %d", len(got))
	}
	if got := SelectQuestions(all, 99, nil); len(got) != 2 {
		t.Fatalf("expected all questions for oversized count, got %d", len(got))
	}
}

func TestGetLessonQuiz_StripsCorrectAnswers(t *testing.T) {
	productID := uuid.New()
	lessonID := uuid.New()
	accountID := uuid.New()

	quizRepo := newFakeQuizRepo()
	questionRepo := newFakeQuestionRepo()
	quiz := &types.Quiz{ID: uuid.New(), ProductID: productID, LessonID: &lessonID, Tier: types.QuizTierAula, PassingCorrectCount: 1}
	quizRepo.add(quiz)
	questionRepo.add(question(quiz.ID, `"secret"`))

	svc := &quizService{
		log:          testLogger(t),
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
	}

	_, served, err := svc.GetLessonQuiz(context.Background(), accountID, lessonID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := json.Marshal(served)
	if err != nil {
		t.Fatalf("marshal served questions: %v", err)
	}
	if string(raw) == "" || jsonContains(raw, "secret") {
		t.Fatalf("served payload must not leak correct answers: %s", raw)
	}
}

func jsonContains(raw []byte, needle string) bool {
	return json.Valid(raw) && containsString(string(raw), needle)
}

func containsString(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestRecheckTrackCompletion_AllLessonQuizzesPassed(t *testing.T) {
	productID := uuid.New()
	accountID := uuid.New()
	lessonA := uuid.New()
	lessonB := uuid.New()

	quizRepo := newFakeQuizRepo()
	attemptRepo := newFakeAttemptRepo()
	trackRepo := newFakeTrackRepo()

	quizA := &types.Quiz{ID: uuid.New(), ProductID: productID, LessonID: &lessonA, Tier: types.QuizTierAula}
	quizB := &types.Quiz{ID: uuid.New(), ProductID: productID, LessonID: &lessonB, Tier: types.QuizTierAula}
	quizRepo.add(quizA)
	quizRepo.add(quizB)

	attemptRepo.attempts = append(attemptRepo.attempts,
		&types.QuizAttempt{AccountID: accountID, QuizID: quizA.ID, ProductID: productID, Passed: true},
	)

	svc := &quizService{log: testLogger(t), quizRepo: quizRepo, attemptRepo: attemptRepo, trackRepo: trackRepo}

	// Only one of two lesson quizzes passed: no completion yet.
	if err := svc.recheckTrackCompletion(context.Background(), nil, accountID, productID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row, _ := trackRepo.GetByAccountAndProductID(context.Background(), nil, accountID, productID); row != nil {
		t.Fatalf("track must not complete while a lesson quiz is unpassed")
	}

	attemptRepo.attempts = append(attemptRepo.attempts,
		&types.QuizAttempt{AccountID: accountID, QuizID: quizB.ID, ProductID: productID, Passed: true},
	)
	if err := svc.recheckTrackCompletion(context.Background(), nil, accountID, productID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row, _ := trackRepo.GetByAccountAndProductID(context.Background(), nil, accountID, productID); row == nil {
		t.Fatalf("expected track completion once every lesson quiz passed")
	}
}

func TestGradedSet_SubsetQuizGradesSubmittedQuestions(t *testing.T) {
	quizID := uuid.New()
	quiz := &types.Quiz{ID: quizID, Tier: types.QuizTierAula, QuestionsToShow: 2, PassingCorrectCount: 2}
	var questions []*types.QuizQuestion
	for i := 0; i < 5; i++ {
		questions = append(questions, question(quizID, `"a"`))
	}
	answers := []SubmittedAnswer{
		{QuestionID: questions[1].ID, Answer: json.RawMessage(`"a"`)},
		{QuestionID: questions[3].ID, Answer: json.RawMessage(`"a"`)},
	}

	graded := gradedSet(quiz, questions, answers)
	if len(graded) != 2 {
		t.Fatalf("expected grading over the 2 served questions, got %d", len(graded))
	}

	got := Grade(quiz.PassingCorrectCount, graded, answers)
	if got.Score != 100 {
		t.Fatalf("expected score over the served subset, got %d", got.Score)
	}
	if !got.Passed {
		t.Fatalf("expected a pass with every served question correct")
	}
}

func TestGradedSet_EmptySubmissionFallsBackToAllQuestions(t *testing.T) {
	quizID := uuid.New()
	quiz := &types.Quiz{ID: quizID, Tier: types.QuizTierAula, QuestionsToShow: 2, PassingCorrectCount: 1}
	var questions []*types.QuizQuestion
	for i := 0; i < 5; i++ {
		questions = append(questions, question(quizID, `"a"`))
	}

	graded := gradedSet(quiz, questions, nil)
	if len(graded) != 5 {
		t.Fatalf("expected fallback to the full question set, got %d", len(graded))
	}

	got := Grade(quiz.PassingCorrectCount, graded, nil)
	if got.Score != 0 || got.Passed {
		t.Fatalf("expected a zero, failing grade for an empty submission, got %+v", got)
	}
}

func TestGradedSet_FullQuizGradesEverything(t *testing.T) {
	quizID := uuid.New()
	quiz := &types.Quiz{ID: quizID, Tier: types.QuizTierAula, PassingCorrectCount: 3}
	var questions []*types.QuizQuestion
	for i := 0; i < 5; i++ {
		questions = append(questions, question(quizID, `"a"`))
	}
	// Answering only two of five must not shrink the denominator when
	// the quiz serves its full question set.
	answers := []SubmittedAnswer{
		{QuestionID: questions[0].ID, Answer: json.RawMessage(`"a"`)},
		{QuestionID: questions[1].ID, Answer: json.RawMessage(`"a"`)},
	}

	graded := gradedSet(quiz, questions, answers)
	if len(graded) != 5 {
		t.Fatalf("expected all questions graded, got %d", len(graded))
	}

	got := Grade(quiz.PassingCorrectCount, graded, answers)
	if got.Score != 40 {
		t.Fatalf("expected score=40 over the full set, got %d", got.Score)
	}
	if got.Passed {
		t.Fatalf("expected 2 of 5 not to pass")
	}
}
