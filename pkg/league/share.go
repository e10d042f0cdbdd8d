package league

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// ShareState is the payload of the shareable "?state=" link
type ShareState struct {
	Results   TempResults `json:"results"`
	Timestamp time.Time   `json:"timestamp"`
}

// EncodeShareState returns the query-escaped value for the state parameter
func EncodeShareState(s ShareState) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode share state: %w", err)
	}
	return url.QueryEscape(string(data)), nil
}

// DecodeShareState parses a state parameter. It accepts both escaped and
// already unescaped values.
func DecodeShareState(param string) (ShareState, error) {
	raw, err := url.QueryUnescape(param)
	if err != nil {
		raw = param
	}

	var probe struct {
		Results *TempResults `json:"results"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return ShareState{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	if probe.Results == nil {
		return ShareState{}, fmt.Errorf("%w: missing results", ErrInvalidShare)
	}

	var s ShareState
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return ShareState{}, fmt.Errorf("%w: %v", ErrInvalidShare, err)
	}
	return s, nil
}
