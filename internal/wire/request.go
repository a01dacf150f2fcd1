package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"pnlcorr/internal/pnl"
)

// DateLayout is the YYYYMMDD layout used for dates on the wire.
const DateLayout = "20060102"

// Request is a correlation request as sent by the client.
type Request struct {
	Top       int             `json:"top" validate:"min=1"`
	StartDate int             `json:"start_date,omitempty" validate:"omitempty,yyyymmdd"`
	EndDate   int             `json:"end_date,omitempty" validate:"omitempty,yyyymmdd"`
	PnlData   json.RawMessage `json:"pnl_data" validate:"required"`
}

// Window returns the date window requested.
func (r Request) Window() pnl.Window {
	return pnl.Window{Start: r.StartDate, End: r.EndDate}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("yyyymmdd", func(fl validator.FieldLevel) bool {
			return IsDate(int(fl.Field().Int()))
		})
	})
	return validate
}

// IsDate reports whether v is a calendar date written as YYYYMMDD.
func IsDate(v int) bool {
	if v < 10000101 || v > 99991231 {
		return false
	}
	s := strconv.Itoa(v)
	t, err := time.Parse(DateLayout, s)
	return err == nil && t.Format(DateLayout) == s
}

// NewRequest encodes pool into a request.
func NewRequest(pool *pnl.Pool, top int, w pnl.Window) (*Request, error) {
	data, err := EncodePool(pool)
	if err != nil {
		return nil, err
	}
	req := &Request{Top: top, StartDate: w.Start, EndDate: w.End, PnlData: data}
	if err := getValidator().Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}

// DecodeRequest parses and validates a request body and decodes its pool.
func DecodeRequest(b []byte) (*Request, *pnl.Pool, error) {
	var req Request
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, nil, fmt.Errorf("%w: request: %w", ErrDecode, err)
	}
	if err := getValidator().Struct(&req); err != nil {
		return nil, nil, fmt.Errorf("%w: request: %w", ErrDecode, err)
	}
	pool, err := DecodePool(req.PnlData)
	if err != nil {
		return nil, nil, err
	}
	return &req, pool, nil
}
