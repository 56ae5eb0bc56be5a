package connector

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// MatchWindowMeta is the JSON part of a framed match window body
type MatchWindowMeta struct {
	Tag            string        `json:"tag,omitempty"`
	IgnoreMismatch bool          `json:"ignoreMismatch"`
	UserInputs     []any         `json:"userInputs"`
	AppOutput      AppOutput     `json:"appOutput"`
	Options        *MatchOptions `json:"options,omitempty"`
}

// AppOutput describes the captured window
type AppOutput struct {
	Title string `json:"title"`
}

// MatchOptions are per-call match settings
type MatchOptions struct {
	Name           string `json:"name,omitempty"`
	IgnoreMismatch bool   `json:"ignoreMismatch"`
	MatchLevel     string `json:"matchLevel,omitempty"`
}

// ErrEmptyImage is returned when no screenshot bytes are given
var ErrEmptyImage = errors.New("empty image")

// EncodeMatchWindowData frames the metadata and screenshot as the server
// expects: a 4-byte big-endian length of the JSON metadata, the metadata,
// then the image bytes.
func EncodeMatchWindowData(meta MatchWindowMeta, image []byte) (MatchWindowData, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	if meta.UserInputs == nil {
		meta.UserInputs = []any{}
	}

	js, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal match window meta: %w", err)
	}

	buf := make([]byte, 4, 4+len(js)+len(image))
	binary.BigEndian.PutUint32(buf, uint32(len(js)))
	buf = append(buf, js...)
	buf = append(buf, image...)
	return MatchWindowData(buf), nil
}

// DecodeMatchWindowData splits a framed body into its metadata and image
func DecodeMatchWindowData(data MatchWindowData) (*MatchWindowMeta, []byte, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("match window data too short: %d bytes", len(data))
	}
	n := binary.BigEndian.Uint32(data[:4])
	if uint64(n) > uint64(len(data)-4) {
		return nil, nil, fmt.Errorf("match window meta length %d exceeds body", n)
	}

	var meta MatchWindowMeta
	if err := json.Unmarshal(data[4:4+n], &meta); err != nil {
		return nil, nil, fmt.Errorf("unmarshal match window meta: %w", err)
	}
	return &meta, []byte(data[4+n:]), nil
}
