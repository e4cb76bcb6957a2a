package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/apierr"
	redisclient "github.com/siplanskills/backend/internal/clients/redis"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/types"
)

// ServedQuestion is the question payload sent to clients. It never
// carries the correct answer.
type ServedQuestion struct {
	ID      uuid.UUID       `json:"id"`
	Prompt  string          `json:"prompt"`
	Options json.RawMessage `json:"options,omitempty"`
}

type SubmittedAnswer struct {
	QuestionID uuid.UUID       `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

type AttemptAnswer struct {
	QuestionID  uuid.UUID       `json:"question_id"`
	AnswerGiven json.RawMessage `json:"answer_given"`
	IsCorrect   bool            `json:"is_correct"`
}

type GradeResult struct {
	Score        int
	CorrectCount int
	Passed       bool
	Answers      []AttemptAnswer
}

type QuizService interface {
	GetLessonQuiz(ctx context.Context, accountID, lessonID uuid.UUID) (*types.Quiz, []ServedQuestion, error)
	SubmitAttempt(ctx context.Context, accountID, quizID uuid.UUID, answers []SubmittedAnswer) (*types.QuizAttempt, error)
}

type quizService struct {
	db              *gorm.DB
	log             *logger.Logger
	quizRepo        repos.QuizRepo
	questionRepo    repos.QuizQuestionRepo
	attemptRepo     repos.QuizAttemptRepo
	trackRepo       repos.TrackCompletionRepo
	refreshBus      redisclient.RefreshBus
	shuffleQuestion func(n int, swap func(i, j int))
}

func NewQuizService(
	db *gorm.DB,
	log *logger.Logger,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuizQuestionRepo,
	attemptRepo repos.QuizAttemptRepo,
	trackRepo repos.TrackCompletionRepo,
	refreshBus redisclient.RefreshBus,
) QuizService {
	serviceLog := log.With("service", "QuizService")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &quizService{
		db:              db,
		log:             serviceLog,
		quizRepo:        quizRepo,
		questionRepo:    questionRepo,
		attemptRepo:     attemptRepo,
		trackRepo:       trackRepo,
		refreshBus:      refreshBus,
		shuffleQuestion: rng.Shuffle,
	}
}

// SelectQuestions draws a uniform-random subset: shuffle, take the
// first count. A zero or oversized count serves everything.
func SelectQuestions(allQuestions []*types.QuizQuestion, count int, shuffle func(n int, swap func(i, j int))) []*types.QuizQuestion {
	picked := make([]*types.QuizQuestion, len(allQuestions))
	copy(picked, allQuestions)
	if shuffle != nil {
		shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
	}
	if count <= 0 || count > len(picked) {
		return picked
	}
	return picked[:count]
}

// Grade scores a submission against the graded question set. Each
// answer is compared structurally against the stored correct answer;
// questions with no submitted answer count as incorrect, submitted
// answers that match no graded question are ignored.
func Grade(passingCorrectCount int, questions []*types.QuizQuestion, answers []SubmittedAnswer) GradeResult {
	byQuestion := make(map[uuid.UUID]json.RawMessage, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Answer
	}

	result := GradeResult{Answers: make([]AttemptAnswer, 0, len(questions))}
	for _, q := range questions {
		if q == nil {
			continue
		}
		given, answered := byQuestion[q.ID]
		correct := answered && answersMatch(json.RawMessage(q.CorrectAnswer), given)
		if correct {
			result.CorrectCount++
		}
		result.Answers = append(result.Answers, AttemptAnswer{
			QuestionID:  q.ID,
			AnswerGiven: given,
			IsCorrect:   correct,
		})
	}

	graded := len(result.Answers)
	if graded > 0 {
		result.Score = int(math.Floor(float64(result.CorrectCount)/float64(graded)*100 + 0.5))
	}
	result.Passed = result.CorrectCount >= passingCorrectCount
	return result
}

// answersMatch deep-compares the decoded JSON values, so formatting
// and key order never affect grading.
func answersMatch(expected, given json.RawMessage) bool {
	if len(expected) == 0 || len(given) == 0 {
		return false
	}
	var expectedVal, givenVal interface{}
	if err := json.Unmarshal(expected, &expectedVal); err != nil {
		return false
	}
	if err := json.Unmarshal(given, &givenVal); err != nil {
		return false
	}
	return reflect.DeepEqual(expectedVal, givenVal)
}

func (s *quizService) GetLessonQuiz(ctx context.Context, accountID, lessonID uuid.UUID) (*types.Quiz, []ServedQuestion, error) {
	if accountID == uuid.Nil {
		return nil, nil, apierr.NotAuthenticated(fmt.Errorf("account id is required"))
	}
	if lessonID == uuid.Nil {
		return nil, nil, apierr.InvalidArgument(fmt.Errorf("lesson id is required"))
	}

	quiz, err := s.quizRepo.GetByLessonID(ctx, nil, lessonID)
	if err != nil {
		return nil, nil, apierr.DataUnavailable(fmt.Errorf("fetch quiz: %w", err))
	}
	if quiz == nil {
		return nil, nil, apierr.NotFound(fmt.Errorf("no quiz configured for lesson"))
	}

	questions, err := s.questionRepo.GetByQuizIDs(ctx, nil, []uuid.UUID{quiz.ID})
	if err != nil {
		return nil, nil, apierr.DataUnavailable(fmt.Errorf("fetch quiz questions: %w", err))
	}

	picked := SelectQuestions(questions, quiz.QuestionsToShow, s.shuffleQuestion)
	served := make([]ServedQuestion, 0, len(picked))
	for _, q := range picked {
		served = append(served, ServedQuestion{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: json.RawMessage(q.Options),
		})
	}
	return quiz, served, nil
}

// SubmitAttempt grades and appends an attempt row. When a lesson-tier
// quiz passes it rechecks whether every lesson quiz of the product now
// has a passed attempt, and marks the track completed if so.
func (s *quizService) SubmitAttempt(ctx context.Context, accountID, quizID uuid.UUID, answers []SubmittedAnswer) (*types.QuizAttempt, error) {
	if accountID == uuid.Nil {
		return nil, apierr.NotAuthenticated(fmt.Errorf("account id is required"))
	}
	if quizID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("quiz id is required"))
	}

	quizzes, err := s.quizRepo.GetByIDs(ctx, nil, []uuid.UUID{quizID})
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch quiz: %w", err))
	}
	if len(quizzes) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("quiz not found"))
	}
	quiz := quizzes[0]

	questions, err := s.questionRepo.GetByQuizIDs(ctx, nil, []uuid.UUID{quiz.ID})
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch quiz questions: %w", err))
	}

	result := Grade(quiz.PassingCorrectCount, gradedSet(quiz, questions, answers), answers)

	answersJSON, err := json.Marshal(result.Answers)
	if err != nil {
		return nil, apierr.PersistenceFailure(fmt.Errorf("encode attempt answers: %w", err))
	}

	attempt := &types.QuizAttempt{
		ID:           uuid.New(),
		AccountID:    accountID,
		QuizID:       quiz.ID,
		ProductID:    quiz.ProductID,
		Score:        result.Score,
		CorrectCount: result.CorrectCount,
		Passed:       result.Passed,
		Answers:      datatypes.JSON(answersJSON),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, cErr := s.attemptRepo.Create(ctx, tx, []*types.QuizAttempt{attempt}); cErr != nil {
			return fmt.Errorf("create quiz attempt: %w", cErr)
		}
		if quiz.Tier == types.QuizTierAula && result.Passed {
			if tErr := s.recheckTrackCompletion(ctx, tx, accountID, quiz.ProductID); tErr != nil {
				return tErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, apierr.PersistenceFailure(err)
	}

	if s.refreshBus != nil {
		if _, bErr := s.refreshBus.Bump(ctx, accountID.String()); bErr != nil {
			s.log.Warn("Progress refresh bump failed", "error", bErr, "account_id", accountID.String())
		}
	}
	return attempt, nil
}

// gradedSet picks the question set the submission is scored against.
// Quizzes serving a random subset are graded over the questions the
// client was actually served (echoed back by id); full quizzes are
// graded over everything.
func gradedSet(quiz *types.Quiz, questions []*types.QuizQuestion, answers []SubmittedAnswer) []*types.QuizQuestion {
	if quiz.QuestionsToShow <= 0 || quiz.QuestionsToShow >= len(questions) {
		return questions
	}
	submitted := make(map[uuid.UUID]bool, len(answers))
	for _, a := range answers {
		submitted[a.QuestionID] = true
	}
	subset := make([]*types.QuizQuestion, 0, len(answers))
	for _, q := range questions {
		if submitted[q.ID] {
			subset = append(subset, q)
		}
	}
	if len(subset) == 0 {
		return questions
	}
	return subset
}

// Track completion: every lesson quiz of the product needs at least
// one passed attempt by this account.
func (s *quizService) recheckTrackCompletion(ctx context.Context, tx *gorm.DB, accountID, productID uuid.UUID) error {
	lessonQuizzes, err := s.quizRepo.ListLessonQuizzesByProductID(ctx, tx, productID)
	if err != nil {
		return fmt.Errorf("list lesson quizzes: %w", err)
	}
	if len(lessonQuizzes) == 0 {
		return nil
	}
	quizIDs := make([]uuid.UUID, 0, len(lessonQuizzes))
	for _, q := range lessonQuizzes {
		quizIDs = append(quizIDs, q.ID)
	}
	passedIDs, err := s.attemptRepo.PassedQuizIDs(ctx, tx, accountID, quizIDs)
	if err != nil {
		return fmt.Errorf("fetch passed quiz ids: %w", err)
	}
	if len(passedIDs) < len(quizIDs) {
		return nil
	}
	completion := &types.TrackCompletion{
		ID:          uuid.New(),
		AccountID:   accountID,
		ProductID:   productID,
		CompletedAt: time.Now(),
	}
	if err := s.trackRepo.Upsert(ctx, tx, completion); err != nil {
		return fmt.Errorf("upsert track completion: %w", err)
	}
	return nil
}
