package store

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"gitlab.com/tozd/go/errors"
)

// Type is the kind of payload a Record carries.
type Type string

const (
	TypeText  Type = "text"
	TypeImage Type = "image"
)

// JSON keys of the fields the store understands. Any other key is carried
// through untouched in Record.Extra.
const (
	keyID        = "id"
	keyType      = "type"
	keyContent   = "content"
	keyImagePath = "imagePath"
	keyTimestamp = "timestamp"
)

// Record is one persisted clipboard or pin entry.
type Record struct {
	// ID is assigned at creation and never changes.
	ID string

	// Type selects which of Content or ImagePath is meaningful.
	Type Type

	// Content holds the text of a text record.
	Content string

	// ImagePath is the absolute path of the blob backing an image record.
	ImagePath string

	// Timestamp is the creation time in fractional Unix seconds.
	// Records without one never expire.
	Timestamp *float64

	// Extra holds fields written by other tools or newer versions.
	Extra map[string]json.RawMessage
}

// NewText creates a text record stamped at now.
func NewText(content string, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		Type:      TypeText,
		Content:   content,
		Timestamp: Stamp(now),
	}
}

// NewImage creates an image record referencing the blob at path.
func NewImage(path string, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		Type:      TypeImage,
		ImagePath: path,
		Timestamp: Stamp(now),
	}
}

// Stamp converts t into the on-disk timestamp representation.
func Stamp(t time.Time) *float64 {
	ts := float64(t.UnixNano()) / float64(time.Second)
	return &ts
}

// Time returns the creation time, if the record has one.
func (r Record) Time() (time.Time, bool) {
	if r.Timestamp == nil || math.IsNaN(*r.Timestamp) || math.IsInf(*r.Timestamp, 0) {
		return time.Time{}, false
	}
	sec, frac := math.Modf(*r.Timestamp)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))), true
}

// IsImage reports whether the record references a blob.
func (r Record) IsImage() bool {
	return r.Type == TypeImage
}

// Validate checks the invariants a record must satisfy before it is stored.
func (r Record) Validate() error {
	if r.ID == "" {
		return errors.New("record has no id")
	}
	switch r.Type {
	case TypeText:
		if r.ImagePath != "" {
			return errors.Errorf("text record %s must not reference an image", r.ID)
		}
	case TypeImage:
		if r.ImagePath == "" {
			return errors.Errorf("image record %s has no image path", r.ID)
		}
		if r.Content != "" {
			return errors.Errorf("image record %s must not carry text content", r.ID)
		}
	default:
		return errors.Errorf("record %s has unknown type %q", r.ID, r.Type)
	}
	return nil
}

// MarshalJSON writes the known fields over any preserved extra fields. A
// known field that is unset leaves a preserved value of the same key alone.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+5)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.ID != "" {
		out[keyID] = r.ID
	}
	if r.Type != "" {
		out[keyType] = r.Type
	}
	if _, kept := r.Extra[keyContent]; r.Content != "" || (r.Type == TypeText && !kept) {
		out[keyContent] = r.Content
	}
	if r.ImagePath != "" {
		out[keyImagePath] = r.ImagePath
	}
	if r.Timestamp != nil {
		out[keyTimestamp] = *r.Timestamp
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object. Known keys with an unexpected JSON
// type are kept verbatim in Extra instead of failing the whole file, as is an
// empty content string so it is written back even without a text type.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("record is not a JSON object")
	}

	*r = Record{}
	decode := func(key string, dst any) bool {
		value, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return false
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return false
		}
		delete(raw, key)
		return true
	}

	decode(keyID, &r.ID)
	decode(keyType, &r.Type)
	if decode(keyContent, &r.Content) && r.Content == "" {
		raw[keyContent] = json.RawMessage(`""`)
	}
	decode(keyImagePath, &r.ImagePath)

	var ts float64
	if decode(keyTimestamp, &ts) {
		r.Timestamp = &ts
	}

	if len(raw) > 0 {
		r.Extra = make(map[string]json.RawMessage, len(raw))
		for k, v := range raw {
			var compact bytes.Buffer
			if err := json.Compact(&compact, v); err != nil {
				return err
			}
			r.Extra[k] = json.RawMessage(compact.Bytes())
		}
	}
	return nil
}
