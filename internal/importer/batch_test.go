package importer

import (
	"reflect"
	"testing"
)

func TestSplitBatches(t *testing.T) {
	got, err := SplitBatches(0, 5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Batch{
		{From: 0, To: 1},
		{From: 2, To: 3},
		{From: 4, To: 5},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesUneven(t *testing.T) {
	got, err := SplitBatches(3, 9, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Batch{{From: 3, To: 6}, {From: 7, To: 9}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesSingle(t *testing.T) {
	got, err := SplitBatches(5, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Batch{{From: 5, To: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesInvalid(t *testing.T) {
	if _, err := SplitBatches(10, 9, 1); err == nil {
		t.Fatalf("expected error for invalid range")
	}
	if _, err := SplitBatches(-1, 9, 1); err == nil {
		t.Fatalf("expected error for negative index")
	}
	if _, err := SplitBatches(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}
