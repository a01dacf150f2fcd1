// Package service answers correlation requests against a resident pool.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pnlcorr/internal/correlation"
	"pnlcorr/internal/metrics"
	"pnlcorr/internal/model"
	"pnlcorr/internal/pnl"
	"pnlcorr/internal/storage"
	"pnlcorr/internal/wire"
)

// Outcomes reported by Status.
const (
	// StatusOK is a request answered with a result.
	StatusOK = "ok"
	// StatusDecodeError is a malformed or incomplete request body.
	StatusDecodeError = "decode_error"
	// StatusInvalidInput is a well-formed request that cannot be computed.
	StatusInvalidInput = "invalid_input"
	// StatusError is any other failure.
	StatusError = "error"
)

// Correlator owns the resident pool and handles one request at a time.
type Correlator struct {
	resident *pnl.Pool
	audit    storage.Storage
	logger   *zap.Logger

	mu sync.Mutex
}

// NewCorrelator builds a Correlator around a resident pool loaded at startup.
// The pool is never modified afterwards.
func NewCorrelator(resident *pnl.Pool, audit storage.Storage, logger *zap.Logger) (*Correlator, error) {
	if resident == nil {
		return nil, fmt.Errorf("resident pool is nil")
	}
	if audit == nil {
		audit = storage.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.ResidentSeries.Set(float64(resident.Len()))
	metrics.ResidentDates.Set(float64(resident.NumDates()))
	return &Correlator{resident: resident, audit: audit, logger: logger}, nil
}

// Resident returns the resident pool.
func (c *Correlator) Resident() *pnl.Pool { return c.resident }

// Handle decodes a request body, correlates its pool against the resident
// pool and returns the encoded top-K result.
func (c *Correlator) Handle(ctx context.Context, requestID string, body []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	received := time.Now()
	record := model.RequestRecord{
		RequestID:  requestID,
		ReceivedAt: received.UTC().Format(time.RFC3339Nano),
	}

	out, err := c.handle(ctx, body, &record)

	record.Status = Status(err)
	record.DurationMs = time.Since(received).Milliseconds()
	if err != nil {
		record.Error = err.Error()
	}
	metrics.RequestsTotal.WithLabelValues(record.Status).Inc()
	if auditErr := c.audit.PutRequestRecord(record); auditErr != nil {
		c.logger.Warn("write audit record", zap.Error(auditErr), zap.String("request_id", requestID))
	}
	return out, err
}

func (c *Correlator) handle(ctx context.Context, body []byte, record *model.RequestRecord) ([]byte, error) {
	logger := c.logger.With(zap.String("request_id", record.RequestID))
	logger.Info("received correlation request", zap.Int("bytes", len(body)))

	start := time.Now()
	req, pool, err := wire.DecodeRequest(body)
	if err != nil {
		logger.Warn("could not decode request", zap.Error(err))
		return nil, err
	}
	observe("decode", start)
	record.Top, record.StartDate, record.EndDate = req.Top, req.StartDate, req.EndDate
	record.Series, record.Dates = pool.Len(), pool.NumDates()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	matrix, err := correlation.Correlate(c.resident, pool, req.Window())
	if err != nil {
		logger.Warn("could not calculate correlation", zap.Error(err))
		return nil, err
	}
	observe("correlate", start)
	logger.Info("calculated correlations",
		zap.Int("rows", matrix.Rows()),
		zap.Int("cols", matrix.Cols()),
		zap.Duration("elapsed", time.Since(start)),
	)

	start = time.Now()
	top, err := correlation.TopKPerColumn(matrix, req.Top)
	if err != nil {
		return nil, err
	}
	observe("topk", start)
	logger.Info("selected top correlations", zap.Int("top", req.Top), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	out, err := wire.EncodeResult(top)
	if err != nil {
		return nil, err
	}
	observe("encode", start)
	return out, nil
}

func observe(stage string, start time.Time) {
	metrics.RequestDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Status classifies a Handle error for logs, metrics and audit records.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, wire.ErrDecode):
		return StatusDecodeError
	case errors.Is(err, pnl.ErrInvalidInput):
		return StatusInvalidInput
	default:
		return StatusError
	}
}
