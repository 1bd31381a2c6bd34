package routing

import (
	"errors"
	"fmt"
)

// Group is a destination bucket, one PagerDuty service per group
type Group string

// ErrMissingCredential means a group has no routing key configured.
// It is an operator error, not a ticket error.
var ErrMissingCredential = errors.New("no routing key configured for service group")

// Table maps assignees to groups and groups to PagerDuty routing keys.
// It is immutable after construction and safe for concurrent use.
type Table struct {
	assignees   map[string]Group
	routingKeys map[Group]string
}

// NewTable copies both maps so later changes by the caller are not observed
func NewTable(assignees map[string]Group, routingKeys map[Group]string) *Table {
	t := &Table{
		assignees:   make(map[string]Group, len(assignees)),
		routingKeys: make(map[Group]string, len(routingKeys)),
	}
	for who, group := range assignees {
		t.assignees[who] = group
	}
	for group, key := range routingKeys {
		t.routingKeys[group] = key
	}
	return t
}

// GroupFor returns the group an assignee is routed to
func (t *Table) GroupFor(assignee string) (Group, bool) {
	group, ok := t.assignees[assignee]
	return group, ok
}

// CredentialFor returns the routing key for a group
func (t *Table) CredentialFor(group Group) (string, error) {
	key := t.routingKeys[group]
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingCredential, group)
	}
	return key, nil
}

// Groups lists every group referenced by an assignee
func (t *Table) Groups() []Group {
	seen := make(map[Group]struct{})
	var groups []Group
	for _, group := range t.assignees {
		if _, ok := seen[group]; ok {
			continue
		}
		seen[group] = struct{}{}
		groups = append(groups, group)
	}
	return groups
}

// MissingCredentials lists referenced groups that have no routing key
func (t *Table) MissingCredentials() []Group {
	var missing []Group
	for _, group := range t.Groups() {
		if t.routingKeys[group] == "" {
			missing = append(missing, group)
		}
	}
	return missing
}
