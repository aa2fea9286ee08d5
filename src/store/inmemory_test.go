package store

import (
	"context"
	"errors"
	"testing"

	"hygieia-reporter/src/contracts"
)

func TestInMemoryStore(t *testing.T) {
	st := NewInMemoryStore()
	ctx := context.Background()

	recs := []*contracts.PublishRecord{
		{JobName: "app", BuildNumber: 7, Kind: "build", ResponseCode: 201, Succeeded: true},
		{JobName: "app", BuildNumber: 7, Kind: "artifact", ResponseCode: 500},
		{JobName: "app", BuildNumber: 8, Kind: "build", ResponseCode: 201, Succeeded: true},
	}
	for _, r := range recs {
		if err := st.Record(ctx, r); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if r.ID == "" {
			t.Error("Record() did not assign an ID")
		}
	}

	found, err := st.Records(ctx, "app", 7)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Records() returned %d records, want 2", len(found))
	}
	if found[0].Kind != "build" || found[1].Kind != "artifact" {
		t.Errorf("Records() order = %s, %s", found[0].Kind, found[1].Kind)
	}

	_, err = st.Records(ctx, "app", 99)
	var notFound ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("Records() for missing build should return ErrNotFound, got %v", err)
	}
	if notFound.BuildNumber != 99 {
		t.Errorf("ErrNotFound.BuildNumber = %d", notFound.BuildNumber)
	}
}

func TestInMemoryStore_KeepsExplicitID(t *testing.T) {
	st := NewInMemoryStore()
	rec := &contracts.PublishRecord{ID: "fixed", JobName: "app", BuildNumber: 1}

	if err := st.Record(context.Background(), rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.ID != "fixed" {
		t.Errorf("ID = %q, want fixed", rec.ID)
	}
}
