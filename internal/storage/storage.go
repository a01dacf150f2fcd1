package storage

import "pnlcorr/internal/model"

// Storage receives one audit record per handled request.
type Storage interface {
	PutRequestRecord(record model.RequestRecord) error
}

// Nop discards every record.
type Nop struct{}

func (Nop) PutRequestRecord(model.RequestRecord) error { return nil }
