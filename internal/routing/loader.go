package routing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoutingKeyEnvPrefix prefixes the env var holding a group's routing key, e.g. PD_ROUTING_KEY_A
const RoutingKeyEnvPrefix = "PD_ROUTING_KEY_"

// DefaultAssignees is used when no routing file is configured
var DefaultAssignees = map[string]Group{
	"hossamhafez@luciq.ai":     "A",
	"mahmoudelfiqi@luciq.ai":   "A",
	"ibrahimsalem@luciq.ai":    "A",
	"bedourelborai@luciq.ai":   "B",
	"omarabdelsattar@luciq.ai": "B",
	"mirettewagdy@luciq.ai":    "B",
}

// File is the on-disk routing configuration
type File struct {
	Assignees   map[string]string `yaml:"assignees"`
	RoutingKeys map[string]string `yaml:"routing_keys"`
}

// Load builds the routing table. path may be empty, in which case DefaultAssignees is used.
// Routing keys from the file are overridden by PD_ROUTING_KEY_<GROUP> env vars.
func Load(path string, lookupEnv func(string) (string, bool)) (*Table, error) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	assignees := make(map[string]Group)
	routingKeys := make(map[Group]string)

	if path == "" {
		for who, group := range DefaultAssignees {
			assignees[who] = group
		}
	} else {
		f, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for who, group := range f.Assignees {
			who = strings.TrimSpace(who)
			group = strings.TrimSpace(group)
			if who == "" || group == "" {
				return nil, fmt.Errorf("routing file %s: assignee entries need both an identifier and a group", path)
			}
			assignees[who] = Group(group)
		}
		for group, key := range f.RoutingKeys {
			routingKeys[Group(strings.TrimSpace(group))] = strings.TrimSpace(key)
		}
	}

	groups := make(map[Group]struct{})
	for _, group := range assignees {
		groups[group] = struct{}{}
	}
	for group := range routingKeys {
		groups[group] = struct{}{}
	}
	for group := range groups {
		if key, ok := lookupEnv(RoutingKeyEnvPrefix + strings.ToUpper(string(group))); ok && strings.TrimSpace(key) != "" {
			routingKeys[group] = strings.TrimSpace(key)
		}
	}

	return NewTable(assignees, routingKeys), nil
}

func readFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routing file: %w", err)
	}

	// unknown keys are an error
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse routing file %s: %w", path, err)
	}
	return &f, nil
}
