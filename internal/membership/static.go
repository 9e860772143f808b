package membership

import (
	"context"
	"fmt"
	"strings"
)

// StaticResolver serves membership from a fixed in-process mapping,
// typically parsed from configuration. Groups absent from the mapping
// simply have zero contracts.
type StaticResolver struct {
	members map[string][]string
}

// NewStaticResolver creates a resolver over a fixed group mapping
func NewStaticResolver(members map[string][]string) *StaticResolver {
	copied := make(map[string][]string, len(members))
	for group, ids := range members {
		copied[group] = append([]string(nil), ids...)
	}
	return &StaticResolver{members: copied}
}

// ParseStaticMembers parses a "groupA=c1|c2;groupB=c3" spec
func ParseStaticMembers(spec string) (map[string][]string, error) {
	members := make(map[string][]string)

	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		group, list, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("invalid static members entry %q (expected group=c1|c2)", part)
		}

		group = strings.TrimSpace(group)
		if group == "" {
			return nil, fmt.Errorf("empty group name in static members entry %q", part)
		}

		var ids []string
		for _, id := range strings.Split(list, "|") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}
		members[group] = ids
	}

	return members, nil
}

// ListContractIDs returns the contracts configured for the group
func (r *StaticResolver) ListContractIDs(_ context.Context, productGroup string) ([]string, error) {
	return append([]string(nil), r.members[productGroup]...), nil
}
