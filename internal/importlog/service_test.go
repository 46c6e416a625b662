package importlog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/gencon-schedule-backend/database"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ImportRun{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(NewRepository(db))
}

func TestRecordAndFetch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	okID, failedID := uuid.NewString(), uuid.NewString()
	if err := svc.Record(ctx, Entry{
		RunID: okID, Source: "json", Status: StatusSuccess,
		EventCount: 3, Created: 2, Updated: 1, Duration: 1500 * time.Millisecond,
		Details: map[string]interface{}{"years": []int{2024}},
	}); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := svc.Record(ctx, Entry{
		RunID: failedID, Source: "xlsx", Status: StatusFailed, Err: errors.New("writing events: boom"),
	}); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	run, err := svc.GetByID(ctx, okID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if run.Created != 2 || run.Updated != 1 || run.DurationMS != 1500 || run.Error != nil {
		t.Errorf("unexpected run: %+v", run)
	}

	failed, err := svc.GetByID(ctx, failedID)
	if err != nil {
		t.Fatalf("GetByID failed run: %v", err)
	}
	if failed.Error == nil || *failed.Error != "writing events: boom" {
		t.Errorf("failed run error = %v", failed.Error)
	}

	page, err := svc.List(ctx, RunFilter{Status: StatusFailed})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || len(page.Data) != 1 || page.Data[0].ID != failedID {
		t.Errorf("status filter returned %+v", page)
	}
	if page.Page != 1 || page.Limit != 20 || page.TotalPages != 1 {
		t.Errorf("pagination defaults not applied: %+v", page)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.GetByID(context.Background(), uuid.NewString()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
