package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/types"
)

// In-memory repo fakes for exercising the services without a database.

type fakeLessonRepo struct {
	lessons map[uuid.UUID]*types.Lesson
	byProd  map[uuid.UUID][]uuid.UUID
	err     error
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{
		lessons: map[uuid.UUID]*types.Lesson{},
		byProd:  map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeLessonRepo) add(l *types.Lesson) {
	f.lessons[l.ID] = l
	f.byProd[l.ProductID] = append(f.byProd[l.ProductID], l.ID)
}

func (f *fakeLessonRepo) ListByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Lesson
	for _, id := range f.byProd[productID] {
		out = append(out, f.lessons[id])
	}
	return out, nil
}

func (f *fakeLessonRepo) IDsByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byProd[productID], nil
}

func (f *fakeLessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Lesson
	for _, id := range ids {
		if l, ok := f.lessons[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

type completionKey struct {
	account uuid.UUID
	lesson  uuid.UUID
}

type fakeCompletionRepo struct {
	records  map[completionKey]*types.CompletionRecord
	upserts  int
	writeErr error
	readErr  error
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{records: map[completionKey]*types.CompletionRecord{}}
}

func (f *fakeCompletionRepo) GetByAccountAndLessonIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.CompletionRecord, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []*types.CompletionRecord
	for _, id := range lessonIDs {
		if r, ok := f.records[completionKey{accountID, id}]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCompletionRepo) GetByAccountAndLessonID(ctx context.Context, tx *gorm.DB, accountID, lessonID uuid.UUID) (*types.CompletionRecord, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.records[completionKey{accountID, lessonID}], nil
}

func (f *fakeCompletionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CompletionRecord) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.upserts++
	cp := *row
	f.records[completionKey{row.AccountID, row.LessonID}] = &cp
	return nil
}

type fakeQuizRepo struct {
	quizzes map[uuid.UUID]*types.Quiz
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: map[uuid.UUID]*types.Quiz{}}
}

func (f *fakeQuizRepo) add(q *types.Quiz) { f.quizzes[q.ID] = q }

func (f *fakeQuizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error) {
	var out []*types.Quiz
	for _, id := range ids {
		if q, ok := f.quizzes[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuizRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Quiz, error) {
	for _, q := range f.quizzes {
		if q.LessonID != nil && *q.LessonID == lessonID && q.Tier == types.QuizTierAula {
			return q, nil
		}
	}
	return nil, nil
}

func (f *fakeQuizRepo) GetByProductAndTier(ctx context.Context, tx *gorm.DB, productID uuid.UUID, tier string) (*types.Quiz, error) {
	for _, q := range f.quizzes {
		if q.ProductID == productID && q.Tier == tier {
			return q, nil
		}
	}
	return nil, nil
}

func (f *fakeQuizRepo) ListLessonQuizzesByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Quiz, error) {
	var out []*types.Quiz
	for _, q := range f.quizzes {
		if q.ProductID == productID && q.Tier == types.QuizTierAula {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeQuestionRepo struct {
	byQuiz map[uuid.UUID][]*types.QuizQuestion
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{byQuiz: map[uuid.UUID][]*types.QuizQuestion{}}
}

func (f *fakeQuestionRepo) add(q *types.QuizQuestion) {
	f.byQuiz[q.QuizID] = append(f.byQuiz[q.QuizID], q)
}

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error) {
	for _, q := range questions {
		f.add(q)
	}
	return questions, nil
}

func (f *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.QuizQuestion, error) {
	var out []*types.QuizQuestion
	for _, qs := range f.byQuiz {
		for _, q := range qs {
			for _, id := range questionIDs {
				if q.ID == id {
					out = append(out, q)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) GetByQuizIDs(ctx context.Context, tx *gorm.DB, quizIDs []uuid.UUID) ([]*types.QuizQuestion, error) {
	var out []*types.QuizQuestion
	for _, id := range quizIDs {
		out = append(out, f.byQuiz[id]...)
	}
	return out, nil
}

type fakeAttemptRepo struct {
	attempts []*types.QuizAttempt
}

func newFakeAttemptRepo() *fakeAttemptRepo { return &fakeAttemptRepo{} }

func (f *fakeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.QuizAttempt) ([]*types.QuizAttempt, error) {
	f.attempts = append(f.attempts, rows...)
	return rows, nil
}

func (f *fakeAttemptRepo) GetByAccountAndQuizIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, quizIDs []uuid.UUID) ([]*types.QuizAttempt, error) {
	var out []*types.QuizAttempt
	for _, a := range f.attempts {
		if a.AccountID != accountID {
			continue
		}
		for _, id := range quizIDs {
			if a.QuizID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (f *fakeAttemptRepo) HasPassed(ctx context.Context, tx *gorm.DB, accountID, quizID uuid.UUID) (bool, error) {
	for _, a := range f.attempts {
		if a.AccountID == accountID && a.QuizID == quizID && a.Passed {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttemptRepo) PassedQuizIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, quizIDs []uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, a := range f.attempts {
		if a.AccountID != accountID || !a.Passed || seen[a.QuizID] {
			continue
		}
		for _, id := range quizIDs {
			if a.QuizID == id {
				seen[a.QuizID] = true
				out = append(out, a.QuizID)
			}
		}
	}
	return out, nil
}

type trackKey struct {
	account uuid.UUID
	product uuid.UUID
}

type fakeTrackRepo struct {
	rows map[trackKey]*types.TrackCompletion
}

func newFakeTrackRepo() *fakeTrackRepo {
	return &fakeTrackRepo{rows: map[trackKey]*types.TrackCompletion{}}
}

func (f *fakeTrackRepo) GetByAccountAndProductID(ctx context.Context, tx *gorm.DB, accountID, productID uuid.UUID) (*types.TrackCompletion, error) {
	return f.rows[trackKey{accountID, productID}], nil
}

func (f *fakeTrackRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.TrackCompletion) error {
	key := trackKey{row.AccountID, row.ProductID}
	if _, ok := f.rows[key]; !ok {
		f.rows[key] = row
	}
	return nil
}

type fakeRefreshBus struct {
	bumps map[string]int64
}

func newFakeRefreshBus() *fakeRefreshBus { return &fakeRefreshBus{bumps: map[string]int64{}} }

func (f *fakeRefreshBus) Bump(ctx context.Context, accountID string) (int64, error) {
	f.bumps[accountID]++
	return f.bumps[accountID], nil
}

func (f *fakeRefreshBus) Generation(ctx context.Context, accountID string) (int64, error) {
	return f.bumps[accountID], nil
}

func (f *fakeRefreshBus) StartForwarder(ctx context.Context, onBump func(accountID string, generation int64)) error {
	return nil
}

func (f *fakeRefreshBus) Close() error { return nil }

func lessonRow(productID uuid.UUID, order, requiredSeconds int) *types.Lesson {
	return &types.Lesson{
		ID:                   uuid.New(),
		ProductID:            productID,
		Title:                "lesson",
		OrderIndex:           order,
		RequiredWatchSeconds: requiredSeconds,
	}
}

func completedRow(accountID, lessonID uuid.UUID) *types.CompletionRecord {
	now := time.Now()
	return &types.CompletionRecord{
		ID:          uuid.New(),
		AccountID:   accountID,
		LessonID:    lessonID,
		IsComplete:  true,
		CompletedAt: &now,
	}
}
