package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/siplanskills/backend/internal/apierr"
	"github.com/siplanskills/backend/internal/types"
)

func TestComputeProgress_ThreeOfFourComplete(t *testing.T) {
	accountID := uuid.New()
	lessonIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	var completions []*types.CompletionRecord
	for _, id := range lessonIDs[:3] {
		completions = append(completions, completedRow(accountID, id))
	}

	got := ComputeProgress(lessonIDs, completions)
	if got.Total != 4 || got.Completed != 3 {
		t.Fatalf("expected 3/4 completed, got %d/%d", got.Completed, got.Total)
	}
	if got.Percent != 75 {
		t.Fatalf("expected percent=75, got %d", got.Percent)
	}
	if got.Remaining != 1 {
		t.Fatalf("expected remaining=1, got %d", got.Remaining)
	}
}

func TestComputeProgress_EmptyProduct(t *testing.T) {
	got := ComputeProgress(nil, nil)
	if got.Total != 0 || got.Completed != 0 || got.Percent != 0 || got.Remaining != 0 {
		t.Fatalf("expected all-zero progress for empty product, got %+v", got)
	}
}

func TestComputeProgress_DuplicateRowsCountOnce(t *testing.T) {
	accountID := uuid.New()
	lessonID := uuid.New()
	lessonIDs := []uuid.UUID{lessonID, uuid.New()}

	// Simulated store anomaly: two rows for the same lesson.
	completions := []*types.CompletionRecord{
		completedRow(accountID, lessonID),
		completedRow(accountID, lessonID),
	}

	got := ComputeProgress(lessonIDs, completions)
	if got.Completed != 1 {
		t.Fatalf("expected duplicate lesson rows to count once, got completed=%d", got.Completed)
	}
	if got.Percent != 50 {
		t.Fatalf("expected percent=50, got %d", got.Percent)
	}
}

func TestComputeProgress_ForeignLessonsExcluded(t *testing.T) {
	accountID := uuid.New()
	lessonIDs := []uuid.UUID{uuid.New()}

	completions := []*types.CompletionRecord{
		completedRow(accountID, lessonIDs[0]),
		completedRow(accountID, uuid.New()),
		completedRow(accountID, uuid.New()),
	}

	got := ComputeProgress(lessonIDs, completions)
	if got.Completed > got.Total {
		t.Fatalf("completed (%d) must never exceed total (%d)", got.Completed, got.Total)
	}
	if got.Completed != 1 {
		t.Fatalf("expected foreign lessons excluded, got completed=%d", got.Completed)
	}
}

func TestComputeProgress_IncompleteRowsDoNotCount(t *testing.T) {
	accountID := uuid.New()
	lessonID := uuid.New()
	record := &types.CompletionRecord{AccountID: accountID, LessonID: lessonID, WatchedSeconds: 45}

	got := ComputeProgress([]uuid.UUID{lessonID}, []*types.CompletionRecord{record})
	if got.Completed != 0 {
		t.Fatalf("expected in-progress rows not to count, got completed=%d", got.Completed)
	}
	if got.Remaining != 1 {
		t.Fatalf("expected remaining=1, got %d", got.Remaining)
	}
}

func TestComputeProgress_Idempotent(t *testing.T) {
	accountID := uuid.New()
	lessonIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	completions := []*types.CompletionRecord{completedRow(accountID, lessonIDs[1])}

	first := ComputeProgress(lessonIDs, completions)
	second := ComputeProgress(lessonIDs, completions)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output on identical input: %+v vs %+v", first, second)
	}
}

func TestComputeProgress_PercentBounds(t *testing.T) {
	accountID := uuid.New()
	for n := 0; n < 7; n++ {
		var lessonIDs []uuid.UUID
		var completions []*types.CompletionRecord
		for i := 0; i < n; i++ {
			id := uuid.New()
			lessonIDs = append(lessonIDs, id)
			if i%2 == 0 {
				completions = append(completions, completedRow(accountID, id))
			}
		}
		got := ComputeProgress(lessonIDs, completions)
		if got.Percent < 0 || got.Percent > 100 {
			t.Fatalf("percent out of range for n=%d: %d", n, got.Percent)
		}
	}
}

func TestComputeProgress_RoundsHalfUp(t *testing.T) {
	accountID := uuid.New()
	// 1 of 8 complete = 12.5% which rounds up to 13.
	var lessonIDs []uuid.UUID
	for i := 0; i < 8; i++ {
		lessonIDs = append(lessonIDs, uuid.New())
	}
	completions := []*types.CompletionRecord{completedRow(accountID, lessonIDs[0])}

	got := ComputeProgress(lessonIDs, completions)
	if got.Percent != 13 {
		t.Fatalf("expected round-half-up 13, got %d", got.Percent)
	}
}

func TestProductProgress_AggregatesAcrossRepos(t *testing.T) {
	productID := uuid.New()
	accountID := uuid.New()

	lessonRepo := newFakeLessonRepo()
	completionRepo := newFakeCompletionRepo()
	for i := 0; i < 4; i++ {
		lessonRepo.add(lessonRow(productID, i, 120))
	}
	for _, id := range lessonRepo.byProd[productID][:3] {
		completionRepo.records[completionKey{accountID, id}] = completedRow(accountID, id)
	}

	svc := NewProgressService(nil, testLogger(t), lessonRepo, completionRepo)
	got, err := svc.ProductProgress(context.Background(), accountID, productID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Percent != 75 || got.Remaining != 1 {
		t.Fatalf("expected percent=75 remaining=1, got %+v", got)
	}
}

func TestProductProgress_RequiresAccount(t *testing.T) {
	svc := NewProgressService(nil, testLogger(t), newFakeLessonRepo(), newFakeCompletionRepo())
	_, err := svc.ProductProgress(context.Background(), uuid.Nil, uuid.New())
	if !apierr.HasCode(err, apierr.CodeNotAuthenticated) {
		t.Fatalf("expected NOT_AUTHENTICATED, got %v", err)
	}
}

func TestFetchLessonIDs_UnknownProductYieldsEmpty(t *testing.T) {
	svc := NewProgressService(nil, testLogger(t), newFakeLessonRepo(), newFakeCompletionRepo())
	ids, err := svc.FetchLessonIDs(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty lesson list for unknown product, got %d", len(ids))
	}
}
