package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Session represents one ongoing diagnosis conversation for a (user, session) pair
type Session struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Turn      int64  `json:"turn"`

	// Canonical symptom names accumulated across turns, kept sorted
	ConfirmedSymptoms []string `json:"confirmed_symptoms"`

	// Most recent unresolved raw mention (nil when nothing is waiting for clarification)
	PendingEntity *string `json:"pending_entity"`
	LastIntent    *string `json:"last_intent"`
	LastQuery     string  `json:"last_query"`
	LastMessage   string  `json:"last_message"`

	Diagnosed         bool     `json:"diagnosed"`
	DiagnosedDiseases []string `json:"diagnosed_diseases"`
}

// Stored hash fields
const (
	FieldTurn              = "turn"
	FieldConfirmed         = "confirmed_symptoms"
	FieldPending           = "pending"
	FieldIntent            = "intent"
	FieldLastQuery         = "last_query"
	FieldLastMessage       = "last_message"
	FieldDiagnosed         = "diagnosed"
	FieldDiagnosedDiseases = "diagnosed_diseases"
)

type fieldKind int

const (
	kindInt fieldKind = iota
	kindText
	kindOptionalText
	kindSet
	kindBool
)

// schema is the encoding agreed with the hash store. Every field has exactly one kind.
var schema = map[string]fieldKind{
	FieldTurn:              kindInt,
	FieldConfirmed:         kindSet,
	FieldPending:           kindOptionalText,
	FieldIntent:            kindOptionalText,
	FieldLastQuery:         kindText,
	FieldLastMessage:       kindText,
	FieldDiagnosed:         kindBool,
	FieldDiagnosedDiseases: kindSet,
}

// Key builds the hash key for a session.
func Key(userID, sessionID string) string {
	return userID + ":" + sessionID
}

// HasSymptom reports whether name is already confirmed.
func (s Session) HasSymptom(name string) bool {
	i := sort.SearchStrings(s.ConfirmedSymptoms, name)
	return i < len(s.ConfirmedSymptoms) && s.ConfirmedSymptoms[i] == name
}

// NewSession returns the zero-value session used when the store has no record.
func NewSession(userID, sessionID string) Session {
	return Session{
		UserID:            userID,
		SessionID:         sessionID,
		ConfirmedSymptoms: []string{},
		DiagnosedDiseases: []string{},
	}
}

// DecodeSession rebuilds a Session from stored hash fields.
// Unknown fields are ignored; a field that does not match its kind is an error.
func DecodeSession(userID, sessionID string, fields map[string]string) (Session, error) {
	s := NewSession(userID, sessionID)
	for name, raw := range fields {
		kind, known := schema[name]
		if !known {
			continue
		}
		var err error
		switch name {
		case FieldTurn:
			s.Turn, err = decodeInt(raw)
		case FieldConfirmed:
			s.ConfirmedSymptoms, err = decodeSet(raw)
		case FieldPending:
			s.PendingEntity, err = decodeOptionalText(raw)
		case FieldIntent:
			s.LastIntent, err = decodeOptionalText(raw)
		case FieldLastQuery:
			s.LastQuery, err = decodeText(raw)
		case FieldLastMessage:
			s.LastMessage, err = decodeText(raw)
		case FieldDiagnosed:
			s.Diagnosed, err = strconv.ParseBool(raw)
		case FieldDiagnosedDiseases:
			s.DiagnosedDiseases, err = decodeSet(raw)
		}
		if err != nil {
			return Session{}, fmt.Errorf("decode field %q (kind %d): %w", name, kind, err)
		}
	}
	return s, nil
}

// SessionPatch is a partial update. Nil pointers leave the stored field untouched.
// Set-valued fields are unioned with what is stored, scalars overwrite.
type SessionPatch struct {
	AddSymptoms []string

	// Pending set to a pointer to "" clears the pending entity
	Pending *string

	Intent            *string
	LastQuery         *string
	LastMessage       *string
	Diagnosed         *bool
	AddDiagnosedNames []string
}

// Apply returns base with the patch merged in. base is not modified.
func (p SessionPatch) Apply(base Session) Session {
	out := base
	out.ConfirmedSymptoms = union(base.ConfirmedSymptoms, p.AddSymptoms)
	out.DiagnosedDiseases = union(base.DiagnosedDiseases, p.AddDiagnosedNames)

	if p.Pending != nil {
		if *p.Pending == "" {
			out.PendingEntity = nil
		} else {
			v := *p.Pending
			out.PendingEntity = &v
		}
	}
	if p.Intent != nil {
		v := *p.Intent
		out.LastIntent = &v
	}
	if p.LastQuery != nil {
		out.LastQuery = *p.LastQuery
	}
	if p.LastMessage != nil {
		out.LastMessage = *p.LastMessage
	}
	if p.Diagnosed != nil {
		out.Diagnosed = *p.Diagnosed
	}
	return out
}

// EncodeFields returns the hash fields to write for merged, limited to those the patch touches.
// The turn counter is never part of a patch; it is only changed by atomic increments.
func (p SessionPatch) EncodeFields(merged Session) (map[string]string, error) {
	fields := make(map[string]string)

	if p.AddSymptoms != nil {
		enc, err := encodeSet(merged.ConfirmedSymptoms)
		if err != nil {
			return nil, err
		}
		fields[FieldConfirmed] = enc
	}
	if p.AddDiagnosedNames != nil {
		enc, err := encodeSet(merged.DiagnosedDiseases)
		if err != nil {
			return nil, err
		}
		fields[FieldDiagnosedDiseases] = enc
	}
	if p.Pending != nil {
		fields[FieldPending] = encodeOptionalText(merged.PendingEntity)
	}
	if p.Intent != nil {
		fields[FieldIntent] = encodeOptionalText(merged.LastIntent)
	}
	if p.LastQuery != nil {
		fields[FieldLastQuery] = encodeText(merged.LastQuery)
	}
	if p.LastMessage != nil {
		fields[FieldLastMessage] = encodeText(merged.LastMessage)
	}
	if p.Diagnosed != nil {
		fields[FieldDiagnosed] = strconv.FormatBool(merged.Diagnosed)
	}
	return fields, nil
}

func union(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, src := range [][]string{base, extra} {
		for _, v := range src {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func decodeInt(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func encodeText(v string) string {
	b, _ := marshalNoEscape(v)
	return b
}

func decodeText(raw string) (string, error) {
	var v string
	err := json.Unmarshal([]byte(raw), &v)
	return v, err
}

func encodeOptionalText(v *string) string {
	if v == nil {
		return "null"
	}
	return encodeText(*v)
}

func decodeOptionalText(raw string) (*string, error) {
	if raw == "null" {
		return nil, nil
	}
	v, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func encodeSet(values []string) (string, error) {
	sorted := union(values, nil)
	return marshalNoEscape(sorted)
}

func decodeSet(raw string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return union(values, nil), nil
}

func marshalNoEscape(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
