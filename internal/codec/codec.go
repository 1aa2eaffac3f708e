// Package codec reads and writes the funscript JSON format.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/bethropolis/funscripter/internal/types"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	DefaultVersion = "1.0"
	DefaultRange   = 90
)

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed funscript")

// ParseError reports why a document could not be decoded.
type ParseError struct {
	Field  string // gjson path of the offending value, empty for the document itself
	Reason string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("funscript: %s", e.Reason)
	}
	return fmt.Sprintf("funscript: %s: %s", e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformed }

// Metadata is the free-form author information stored under "metadata".
type Metadata struct {
	Title       string   `json:"title" yaml:"title,omitempty"`
	Creator     string   `json:"creator" yaml:"creator,omitempty"`
	Description string   `json:"description" yaml:"description,omitempty"`
	Duration    int64    `json:"duration" yaml:"duration,omitempty"` // seconds
	License     string   `json:"license" yaml:"license,omitempty"`
	Notes       string   `json:"notes" yaml:"notes,omitempty"`
	Performers  []string `json:"performers" yaml:"performers,omitempty"`
	ScriptURL   string   `json:"script_url" yaml:"script_url,omitempty"`
	Tags        []string `json:"tags" yaml:"tags,omitempty"`
	Type        string   `json:"type" yaml:"type,omitempty"`
	VideoURL    string   `json:"video_url" yaml:"video_url,omitempty"`
}

// File is a decoded funscript document.
type File struct {
	Version    string
	Inverted   bool
	Range      int32
	Metadata   Metadata
	Actions    []types.Action
	RawActions []types.Action

	// source is the document File was decoded from. Encode writes on top of
	// it so fields this package does not know about survive a save.
	source []byte
}

// NewFile returns an empty document with default header values.
func NewFile() *File {
	return &File{
		Version: DefaultVersion,
		Range:   DefaultRange,
	}
}

// Decode parses and validates a funscript document. Actions with a negative
// time are dropped and both tracks are returned sorted by time.
func Decode(data []byte) (*File, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Reason: "document is not an object"}
	}

	actionsField := root.Get("actions")
	if !actionsField.IsArray() {
		return nil, &ParseError{Field: "actions", Reason: "missing or not an array"}
	}

	f := NewFile()
	var err error
	if f.Actions, err = decodeActions("actions", actionsField); err != nil {
		return nil, err
	}
	if raw := root.Get("rawActions"); raw.Exists() {
		if !raw.IsArray() {
			return nil, &ParseError{Field: "rawActions", Reason: "not an array"}
		}
		if f.RawActions, err = decodeActions("rawActions", raw); err != nil {
			return nil, err
		}
	}

	if v := root.Get("version"); v.Type == gjson.String {
		f.Version = v.String()
	}
	if v := root.Get("inverted"); v.IsBool() {
		f.Inverted = v.Bool()
	}
	if v := root.Get("range"); v.Type == gjson.Number {
		if f.Range, err = integral("range", v); err != nil {
			return nil, err
		}
	}
	if md := root.Get("metadata"); md.IsObject() {
		f.Metadata = decodeMetadata(md)
	}

	f.source = append([]byte(nil), data...)
	return f, nil
}

func decodeActions(field string, arr gjson.Result) ([]types.Action, error) {
	entries := arr.Array()
	actions := make([]types.Action, 0, len(entries))
	for i, entry := range entries {
		path := fmt.Sprintf("%s.%d", field, i)
		if !entry.IsObject() {
			return nil, &ParseError{Field: path, Reason: "not an object"}
		}
		at, err := integral(path+".at", entry.Get("at"))
		if err != nil {
			return nil, err
		}
		pos, err := integral(path+".pos", entry.Get("pos"))
		if err != nil {
			return nil, err
		}
		if at < 0 {
			continue
		}
		actions = append(actions, types.NewAction(at, pos))
	}
	types.SortByTime(actions)
	return actions, nil
}

// integral accepts JSON numbers without a fractional part that fit in int32.
func integral(path string, v gjson.Result) (int32, error) {
	if v.Type != gjson.Number {
		return 0, &ParseError{Field: path, Reason: "missing or not a number"}
	}
	if v.Num != math.Trunc(v.Num) {
		return 0, &ParseError{Field: path, Reason: fmt.Sprintf("%s is not an integer", v.Raw)}
	}
	if v.Num < math.MinInt32 || v.Num > math.MaxInt32 {
		return 0, &ParseError{Field: path, Reason: fmt.Sprintf("%s is out of range", v.Raw)}
	}
	return int32(v.Num), nil
}

func decodeMetadata(md gjson.Result) Metadata {
	strs := func(key string) []string {
		var out []string
		for _, v := range md.Get(key).Array() {
			if v.Type == gjson.String {
				out = append(out, v.String())
			}
		}
		return out
	}
	return Metadata{
		Title:       md.Get("title").String(),
		Creator:     md.Get("creator").String(),
		Description: md.Get("description").String(),
		Duration:    md.Get("duration").Int(),
		License:     md.Get("license").String(),
		Notes:       md.Get("notes").String(),
		Performers:  strs("performers"),
		ScriptURL:   md.Get("script_url").String(),
		Tags:        strs("tags"),
		Type:        md.Get("type").String(),
		VideoURL:    md.Get("video_url").String(),
	}
}

// Encode writes the document. Positions are clamped into [0,100], actions
// with a negative time are skipped and both tracks are sorted by time.
// Top-level fields of the decoded source that File does not model are kept.
func Encode(f *File) ([]byte, error) {
	doc := f.source
	if len(doc) == 0 {
		doc = []byte("{}")
	}

	actions, err := marshalActions(f.Actions)
	if err != nil {
		return nil, err
	}
	rawActions, err := marshalActions(f.RawActions)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(normalizedMetadata(f.Metadata))
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}

	version := f.Version
	if version == "" {
		version = DefaultVersion
	}

	steps := []struct {
		path  string
		raw   []byte
		value interface{}
	}{
		{path: "version", value: version},
		{path: "inverted", value: f.Inverted},
		{path: "range", value: f.Range},
		{path: "metadata", raw: metadata},
		{path: "actions", raw: actions},
		{path: "rawActions", raw: rawActions},
	}
	for _, s := range steps {
		if s.raw != nil {
			doc, err = sjson.SetRawBytes(doc, s.path, s.raw)
		} else {
			doc, err = sjson.SetBytes(doc, s.path, s.value)
		}
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", s.path, err)
		}
	}
	return doc, nil
}

// EncodeMinimal writes only {"actions":[...]}.
func EncodeMinimal(actions []types.Action) ([]byte, error) {
	raw, err := marshalActions(actions)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes([]byte("{}"), "actions", raw)
}

func marshalActions(actions []types.Action) ([]byte, error) {
	out := make([]types.Action, 0, len(actions))
	for _, a := range actions {
		if a.At < 0 {
			continue
		}
		out = append(out, a.Clamped())
	}
	types.SortByTime(out)
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding actions: %w", err)
	}
	return data, nil
}

// normalizedMetadata replaces nil lists with empty ones so they encode as [].
func normalizedMetadata(md Metadata) Metadata {
	if md.Performers == nil {
		md.Performers = []string{}
	}
	if md.Tags == nil {
		md.Tags = []string{}
	}
	return md
}
