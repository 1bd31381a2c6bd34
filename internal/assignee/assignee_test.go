package assignee

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		in     AssignedTo
		want   string
		wantOK bool
	}{
		{"absent", Absent(), "", false},
		{"unknown", Unknown(), "", false},
		{"plain string", Identifier("  ops@luciq.ai "), "ops@luciq.ai", true},
		{"blank string", Identifier("   "), "", false},
		{"object email", FromObject(Object{Email: "a@x.io", ID: "u1"}), "a@x.io", true},
		{"object userEmail", FromObject(Object{UserEmail: " b@x.io", UserID: "u2"}), "b@x.io", true},
		{"object id", FromObject(Object{ID: " u3 "}), "u3", true},
		{"object userId", FromObject(Object{UserID: "u4"}), "u4", true},
		{"object blank email falls to id", FromObject(Object{Email: "  ", ID: "u5"}), "u5", true},
		{"object empty", FromObject(Object{}), "", false},
		{"empty list", List(), "", false},
		{"list first string", List(Identifier("c@x.io"), Identifier("d@x.io")), "c@x.io", true},
		{"list first object", List(FromObject(Object{ID: "u6"}), Identifier("d@x.io")), "u6", true},
		{"list first blank", List(Identifier(""), Identifier("d@x.io")), "", false},
		{"list first unknown", List(Unknown(), Identifier("d@x.io")), "", false},
		{"nested list", List(List(Identifier("e@x.io"))), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		want     string
		wantOK   bool
	}{
		{"null", `null`, KindAbsent, "", false},
		{"string", `"hossamhafez@luciq.ai"`, KindIdentifier, "hossamhafez@luciq.ai", true},
		{"object", `{"email":"a@x.io","id":"u1"}`, KindObject, "a@x.io", true},
		{"object non-string email", `{"email":42,"userId":"u9"}`, KindObject, "u9", true},
		{"object unrelated keys", `{"name":"Alice"}`, KindObject, "", false},
		{"list of objects", `[{"userEmail":"b@x.io"},{"email":"c@x.io"}]`, KindList, "b@x.io", true},
		{"list of strings", `["", "c@x.io"]`, KindList, "", false},
		{"empty list", `[]`, KindList, "", false},
		{"number", `17`, KindUnknown, "", false},
		{"bool", `true`, KindUnknown, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AssignedTo
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &a))
			assert.Equal(t, tt.wantKind, a.Kind())

			got, ok := Resolve(a)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalJSONMissingField(t *testing.T) {
	var ticket struct {
		AssignedTo AssignedTo `json:"assignedTo"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"T1"}`), &ticket))
	assert.Equal(t, KindAbsent, ticket.AssignedTo.Kind())
}

func TestResolveNonStringFieldsCountAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"numeric email uses userEmail", `{"email":42,"userEmail":"b@x.io","id":"u1"}`, "b@x.io"},
		{"object email uses userEmail", `{"email":{"v":"a@x.io"},"userEmail":"b@x.io"}`, "b@x.io"},
		{"numeric email without userEmail uses id", `{"email":42,"id":"u1"}`, "u1"},
		{"numeric id uses userId", `{"id":7,"userId":"u2"}`, "u2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AssignedTo
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &a))
			assert.Equal(t, KindObject, a.Kind())

			got, ok := Resolve(a)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
