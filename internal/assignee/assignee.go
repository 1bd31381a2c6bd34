package assignee

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind tags the shape an assignedTo value arrived in
type Kind int

const (
	KindAbsent Kind = iota
	KindIdentifier
	KindObject
	KindList
	KindUnknown
)

// Object is a single assignee object as Thena sends it.
// Only string-valued fields are captured.
type Object struct {
	Email     string
	UserEmail string
	ID        string
	UserID    string
}

// AssignedTo is the decoded form of a ticket's assignedTo field
type AssignedTo struct {
	kind       Kind
	identifier string
	object     Object
	list       []AssignedTo
}

func Absent() AssignedTo { return AssignedTo{kind: KindAbsent} }

func Identifier(v string) AssignedTo { return AssignedTo{kind: KindIdentifier, identifier: v} }

func FromObject(o Object) AssignedTo { return AssignedTo{kind: KindObject, object: o} }

func List(items ...AssignedTo) AssignedTo { return AssignedTo{kind: KindList, list: items} }

func Unknown() AssignedTo { return AssignedTo{kind: KindUnknown} }

func (a AssignedTo) Kind() Kind { return a.kind }

// UnmarshalJSON never returns an error: shapes it does not recognise decode to KindUnknown.
func (a *AssignedTo) UnmarshalJSON(data []byte) error {
	*a = decode(data)
	return nil
}

func decode(data []byte) AssignedTo {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Absent()
	}

	switch data[0] {
	case 'n':
		return Absent()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Unknown()
		}
		return Identifier(s)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return Unknown()
		}
		return FromObject(Object{
			Email:     stringField(fields, "email"),
			UserEmail: stringField(fields, "userEmail"),
			ID:        stringField(fields, "id"),
			UserID:    stringField(fields, "userId"),
		})
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return Unknown()
		}
		items := make([]AssignedTo, 0, len(raw))
		for _, item := range raw {
			items = append(items, decode(item))
		}
		return List(items...)
	default:
		return Unknown()
	}
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Resolve returns the canonical assignee identifier, or false when there is none.
// For a list only the first element is considered.
func Resolve(a AssignedTo) (string, bool) {
	switch a.kind {
	case KindIdentifier:
		return nonEmpty(a.identifier)
	case KindObject:
		return a.object.resolve()
	case KindList:
		if len(a.list) == 0 {
			return "", false
		}
		first := a.list[0]
		if first.kind != KindIdentifier && first.kind != KindObject {
			return "", false
		}
		return Resolve(first)
	default:
		return "", false
	}
}

// email wins over id; userEmail/userId are only consulted when the primary key is empty
func (o Object) resolve() (string, bool) {
	email := o.Email
	if email == "" {
		email = o.UserEmail
	}
	if v, ok := nonEmpty(email); ok {
		return v, true
	}

	id := o.ID
	if id == "" {
		id = o.UserID
	}
	return nonEmpty(id)
}

func nonEmpty(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}
