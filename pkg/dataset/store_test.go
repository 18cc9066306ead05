package dataset

import (
	"context"
	"testing"
)

func TestSaveAndLoadRecords(t *testing.T) {
	rs := setupTestRecordStore(t)
	if rs == nil {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	defer rs.Close()

	ctx := context.Background()

	records, err := NewSyntheticGenerator(42).Records(ctx, 25)
	if err != nil {
		t.Fatalf("failed to generate records: %v", err)
	}

	if err := rs.SaveRecords(ctx, records); err != nil {
		t.Fatalf("SaveRecords failed: %v", err)
	}

	count, err := rs.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 25 {
		t.Fatalf("count = %d, want 25", count)
	}

	loaded, err := rs.LoadRecords(ctx, 100)
	if err != nil {
		t.Fatalf("LoadRecords failed: %v", err)
	}
	if len(loaded) != 25 {
		t.Fatalf("loaded %d records, want 25", len(loaded))
	}
	for _, r := range loaded {
		if r.Crop == "" || r.Yield < 0 {
			t.Fatalf("loaded record is malformed: %+v", r)
		}
	}
}

func TestSaveRecordsEmptyIsNoop(t *testing.T) {
	rs := setupTestRecordStore(t)
	if rs == nil {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	defer rs.Close()

	if err := rs.SaveRecords(context.Background(), nil); err != nil {
		t.Fatalf("SaveRecords with no records failed: %v", err)
	}
}

func TestDeleteRecords(t *testing.T) {
	rs := setupTestRecordStore(t)
	if rs == nil {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	defer rs.Close()

	ctx := context.Background()

	records, err := NewSyntheticGenerator(1).Records(ctx, 10)
	if err != nil {
		t.Fatalf("failed to generate records: %v", err)
	}
	if err := rs.SaveRecords(ctx, records); err != nil {
		t.Fatalf("SaveRecords failed: %v", err)
	}

	if err := rs.DeleteRecords(ctx); err != nil {
		t.Fatalf("DeleteRecords failed: %v", err)
	}

	count, err := rs.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after delete = %d, want 0", count)
	}
}
