package report

import (
	"strings"

	"jiradigest/internal/record"
)

// Group is one header section of the report. Records keep input order.
type Group struct {
	Key     string
	Records []record.Record
}

type GroupOptions struct {
	// Field is the record field whose display value names the group.
	Field string
	// Precedence, when set, fixes the group order. Matching is
	// case-insensitive and the group takes the spelling used here.
	Precedence []string
	// Unassigned names the group for records with no value in Field.
	Unassigned string
	// Other collects keys Precedence does not name.
	Other string
}

const (
	defaultUnassigned = "Unassigned"
	defaultOther      = "Other"
)

// GroupRecords partitions records by Field. Every record lands in exactly
// one group and empty groups are never returned.
//
// Without Precedence, groups appear in first-seen order. With it, named
// groups come first in that order, then Other, then Unassigned unless
// Precedence names it.
func GroupRecords(records []record.Record, opts GroupOptions) []Group {
	if opts.Unassigned == "" {
		opts.Unassigned = defaultUnassigned
	}
	if opts.Other == "" {
		opts.Other = defaultOther
	}
	if len(opts.Precedence) == 0 {
		return groupFirstSeen(records, opts)
	}
	return groupByPrecedence(records, opts)
}

func groupKey(r record.Record, field, unassigned string) string {
	k, ok := r.Text(field)
	if !ok {
		return unassigned
	}
	if k = strings.TrimSpace(k); k == "" {
		return unassigned
	}
	return k
}

func groupFirstSeen(records []record.Record, opts GroupOptions) []Group {
	var groups []Group
	idx := map[string]int{}
	for _, r := range records {
		k := groupKey(r, opts.Field, opts.Unassigned)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

func groupByPrecedence(records []record.Record, opts GroupOptions) []Group {
	// slots: one per distinct precedence entry, then Other, then Unassigned.
	var slots []Group
	slotOf := map[string]int{}
	for _, p := range opts.Precedence {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if _, dup := slotOf[k]; dup {
			continue
		}
		slotOf[k] = len(slots)
		slots = append(slots, Group{Key: p})
	}

	otherSlot, ok := slotOf[strings.ToLower(opts.Other)]
	if !ok {
		otherSlot = len(slots)
		slots = append(slots, Group{Key: opts.Other})
	}
	unassignedSlot, ok := slotOf[strings.ToLower(opts.Unassigned)]
	if !ok {
		unassignedSlot = len(slots)
		slots = append(slots, Group{Key: opts.Unassigned})
	}

	for _, r := range records {
		k := groupKey(r, opts.Field, opts.Unassigned)
		i, named := slotOf[strings.ToLower(k)]
		switch {
		case named:
		case k == opts.Unassigned:
			i = unassignedSlot
		default:
			i = otherSlot
		}
		slots[i].Records = append(slots[i].Records, r)
	}

	out := slots[:0]
	for _, g := range slots {
		if len(g.Records) > 0 {
			out = append(out, g)
		}
	}
	return out
}
