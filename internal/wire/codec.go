// Package wire encodes pools, requests and top-K results as JSON for the
// trip between client and server.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"pnlcorr/internal/correlation"
	"pnlcorr/internal/pnl"
)

// ErrDecode marks malformed or incomplete payloads.
var ErrDecode = errors.New("decode error")

type poolPayload struct {
	Data   *[][]Float `json:"data"`
	Header *[]string  `json:"header"`
	Dates  *[]int     `json:"dates"`
}

type resultPayload struct {
	Correlations *[][]Float  `json:"correlations"`
	FileNames    *[][]string `json:"file_names"`
	ColNames     *[]string   `json:"col_names"`
}

// EncodePool returns the JSON form of p.
func EncodePool(p *pnl.Pool) ([]byte, error) {
	data := toFloats(p.Values())
	header := p.Labels()
	dates := p.Dates()
	b, err := json.Marshal(poolPayload{Data: &data, Header: &header, Dates: &dates})
	if err != nil {
		return nil, fmt.Errorf("encode pool: %w", err)
	}
	return b, nil
}

// DecodePool rebuilds a pool from EncodePool output.
func DecodePool(b []byte) (*pnl.Pool, error) {
	var payload poolPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("%w: pool: %w", ErrDecode, err)
	}
	switch {
	case payload.Data == nil:
		return nil, fmt.Errorf("%w: pool: missing field \"data\"", ErrDecode)
	case payload.Header == nil:
		return nil, fmt.Errorf("%w: pool: missing field \"header\"", ErrDecode)
	case payload.Dates == nil:
		return nil, fmt.Errorf("%w: pool: missing field \"dates\"", ErrDecode)
	}

	p, err := pnl.NewPool(fromFloats(*payload.Data), *payload.Header, *payload.Dates)
	if err != nil {
		return nil, fmt.Errorf("%w: pool: %w", ErrDecode, err)
	}
	return p, nil
}

// EncodeResult returns the JSON form of t.
func EncodeResult(t *correlation.TopK) ([]byte, error) {
	corrs := toFloats(t.Correlations)
	names := t.RowLabels
	cols := t.ColLabels
	b, err := json.Marshal(resultPayload{Correlations: &corrs, FileNames: &names, ColNames: &cols})
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return b, nil
}

// DecodeResult rebuilds a top-K result from EncodeResult output.
func DecodeResult(b []byte) (*correlation.TopK, error) {
	var payload resultPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("%w: result: %w", ErrDecode, err)
	}
	switch {
	case payload.Correlations == nil:
		return nil, fmt.Errorf("%w: result: missing field \"correlations\"", ErrDecode)
	case payload.FileNames == nil:
		return nil, fmt.Errorf("%w: result: missing field \"file_names\"", ErrDecode)
	case payload.ColNames == nil:
		return nil, fmt.Errorf("%w: result: missing field \"col_names\"", ErrDecode)
	}

	corrs, names, cols := *payload.Correlations, *payload.FileNames, *payload.ColNames
	if len(corrs) != len(names) {
		return nil, fmt.Errorf("%w: result: %d correlation rows but %d name rows", ErrDecode, len(corrs), len(names))
	}
	for r := range corrs {
		if len(corrs[r]) != len(cols) || len(names[r]) != len(cols) {
			return nil, fmt.Errorf("%w: result: row %d does not have %d columns", ErrDecode, r, len(cols))
		}
	}

	return &correlation.TopK{
		Correlations: fromFloats(corrs),
		RowLabels:    names,
		ColLabels:    cols,
	}, nil
}
