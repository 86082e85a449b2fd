// Package event decodes Firestore document change CloudEvents into before/after snapshots.
package event

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	cloudevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const documentsSegment = "documents"

var (
	ErrEmptyPayload = errors.New("event carries no data")
	ErrPathMismatch = errors.New("document path does not match trigger pattern")
)

// Snapshot is the state of a document on one side of a change.
type Snapshot struct {
	Name   string
	Exists bool
	Data   map[string]any
}

// Field returns the raw value of a top level field, nil when the document or the field is absent.
func (s Snapshot) Field(name string) any {
	if !s.Exists || s.Data == nil {
		return nil
	}
	return s.Data[name]
}

// String returns a top level string field or "" when it is missing or not a string.
func (s Snapshot) String(name string) string {
	v, _ := s.Field(name).(string)
	return v
}

// Strings returns the string entries of a top level array field, skipping anything that is not a string.
func (s Snapshot) Strings(name string) []string {
	arr, ok := s.Field(name).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// DataTo decodes the snapshot into a struct tagged with `firestore:"..."`.
func (s Snapshot) DataTo(v any) error {
	if !s.Exists {
		return errors.New("document does not exist")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "firestore",
		Result:  v,
	})
	if err != nil {
		return err
	}
	return dec.Decode(s.Data)
}

// Firestore document event types.
const (
	TypeCreated = "google.cloud.firestore.document.v1.created"
	TypeUpdated = "google.cloud.firestore.document.v1.updated"
	TypeWritten = "google.cloud.firestore.document.v1.written"
)

// Change is one document create/update delivered to a handler.
type Change struct {
	ID     string
	Type   string
	Params map[string]string
	Before Snapshot
	After  Snapshot
}

// Created reports whether the change brought the document into existence.
func (c *Change) Created() bool {
	return !c.Before.Exists && c.After.Exists
}

// Updated reports whether the document existed before and after the change.
func (c *Change) Updated() bool {
	return c.Before.Exists && c.After.Exists
}

// FieldChanged reports whether a top level field differs by value between the two snapshots.
func (c *Change) FieldChanged(name string) bool {
	return !reflect.DeepEqual(c.Before.Field(name), c.After.Field(name))
}

// Decode parses a Firestore CloudEvent and binds the path parameters of pattern,
// e.g. "post/{postId}/comentarios/{commentId}".
func Decode(e cloudevent.Event, pattern string) (*Change, error) {
	raw := e.Data()
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	var data firestoredata.DocumentEventData
	var err error
	if strings.HasPrefix(e.DataContentType(), "application/json") {
		err = protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(raw, &data)
	} else {
		err = proto.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding document event: %w", err)
	}

	change := &Change{
		ID:     e.ID(),
		Type:   e.Type(),
		Before: snapshotOf(data.GetOldValue()),
		After:  snapshotOf(data.GetValue()),
	}

	path := documentPath(e.Subject())
	if path == "" {
		name := change.After.Name
		if name == "" {
			name = change.Before.Name
		}
		path = documentPath(name)
	}
	params, ok := MatchPath(pattern, path)
	if !ok {
		return nil, fmt.Errorf("%w: %q vs %q", ErrPathMismatch, path, pattern)
	}
	change.Params = params
	return change, nil
}

// documentPath strips everything up to and including the "documents" segment of a
// subject ("documents/usuarios/abc") or a full resource name.
func documentPath(name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		if s == documentsSegment {
			return strings.Join(segments[i+1:], "/")
		}
	}
	return ""
}

// MatchPath matches a slash separated document path against a pattern with {name} wildcards.
func MatchPath(pattern, path string) (map[string]string, bool) {
	ps := strings.Split(pattern, "/")
	ds := strings.Split(path, "/")
	if len(ps) != len(ds) {
		return nil, false
	}
	params := make(map[string]string)
	for i, p := range ps {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			if ds[i] == "" {
				return nil, false
			}
			params[p[1:len(p)-1]] = ds[i]
			continue
		}
		if p != ds[i] {
			return nil, false
		}
	}
	return params, true
}

func snapshotOf(doc *firestoredata.Document) Snapshot {
	if doc == nil {
		return Snapshot{}
	}
	return Snapshot{
		Name:   doc.GetName(),
		Exists: true,
		Data:   fieldsOf(doc.GetFields()),
	}
}

func fieldsOf(fields map[string]*firestoredata.Value) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = valueOf(v)
	}
	return out
}

func valueOf(v *firestoredata.Value) any {
	switch x := v.GetValueType().(type) {
	case *firestoredata.Value_NullValue:
		return nil
	case *firestoredata.Value_BooleanValue:
		return x.BooleanValue
	case *firestoredata.Value_IntegerValue:
		return x.IntegerValue
	case *firestoredata.Value_DoubleValue:
		return x.DoubleValue
	case *firestoredata.Value_TimestampValue:
		return x.TimestampValue.AsTime()
	case *firestoredata.Value_StringValue:
		return x.StringValue
	case *firestoredata.Value_BytesValue:
		return x.BytesValue
	case *firestoredata.Value_ReferenceValue:
		return x.ReferenceValue
	case *firestoredata.Value_GeoPointValue:
		return x.GeoPointValue
	case *firestoredata.Value_ArrayValue:
		values := x.ArrayValue.GetValues()
		out := make([]any, len(values))
		for i, e := range values {
			out[i] = valueOf(e)
		}
		return out
	case *firestoredata.Value_MapValue:
		return fieldsOf(x.MapValue.GetFields())
	default:
		return nil
	}
}
