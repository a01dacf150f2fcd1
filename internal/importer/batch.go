package importer

import "fmt"

// Batch is an inclusive range of file indexes.
type Batch struct {
	From int
	To   int
}

// SplitBatches splits file indexes [from, to] into batches of batchSize.
func SplitBatches(from, to, batchSize int) ([]Batch, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if from < 0 || to < from {
		return nil, fmt.Errorf("to index must be >= from index")
	}

	batches := make([]Batch, 0, (to-from)/batchSize+1)
	for start := from; start <= to; start += batchSize {
		end := min(start+batchSize-1, to)
		batches = append(batches, Batch{From: start, To: end})
	}
	return batches, nil
}
