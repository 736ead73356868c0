package workbook

import (
	"fmt"
	"maps"
	"slices"

	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/normalize"
)

// Validate checks the whole workbook and reports every problem at once.
// Typed cells are parsed here so bad input never reaches the remote store.
func (wb *Workbook) Validate() error {
	var errs errors.ValidationErrors
	add := func(field string, value any, format string, args ...any) {
		errs = append(errs, errors.NewValidationError(field, value, fmt.Sprintf(format, args...)))
	}
	checkID := func(field, id string) {
		if id == "" {
			return
		}
		if _, err := graph.ParseID(id); err != nil {
			add(field, id, "invalid ID %q", id)
		}
	}

	if wb.Namespace == "" {
		add("namespace", "", "namespace is required")
	} else {
		checkID("namespace", wb.Namespace)
	}

	seenTypes := make(map[string]bool)
	for i, t := range wb.Types {
		field := fmt.Sprintf("types[%d]", i)
		key := normalize.Name(t.Name)
		switch {
		case key == "":
			add(field, t.Name, "type name is required")
		case seenTypes[key]:
			add(field, t.Name, "duplicate type %q", t.Name)
		}
		seenTypes[key] = true
		checkID(field+".id", t.ID)
	}

	seenProps := make(map[string]bool)
	for i, p := range wb.Properties {
		field := fmt.Sprintf("properties[%d]", i)
		key := normalize.Name(p.Name)
		switch {
		case key == "":
			add(field, p.Name, "property name is required")
		case seenProps[key]:
			add(field, p.Name, "duplicate property %q", p.Name)
		}
		seenProps[key] = true
		if !p.Kind.Valid() {
			add(field+".kind", p.Kind, "unknown kind %q for property %q", p.Kind, p.Name)
		}
		checkID(field+".id", p.ID)
		if len(p.TargetTypes) > 0 && p.Kind != graph.KindRelation {
			add(field+".target_types", p.TargetTypes, "only relation properties take target types")
		}
		for _, tt := range p.TargetTypes {
			if _, ok := wb.Type(tt); !ok {
				add(field+".target_types", tt, "unknown type %q", tt)
			}
		}
	}

	seenEntities := make(map[string]bool)
	for i, e := range wb.Entities {
		field := fmt.Sprintf("entities[%d]", i)
		key := normalize.Name(e.Name)
		switch {
		case key == "":
			add(field, e.Name, "entity name is required")
		case seenEntities[key]:
			add(field, e.Name, "duplicate entity %q", e.Name)
		}
		seenEntities[key] = true
		checkID(field+".id", e.ID)

		for _, tn := range e.TypeNames() {
			if _, ok := wb.Type(tn); !ok {
				add(field+".types", tn, "entity %q uses unknown type %q", e.Name, tn)
			}
		}
		for _, col := range slices.Sorted(maps.Keys(e.Values)) {
			raw := e.Values[col]
			p, ok := wb.Property(col)
			if !ok {
				add(field+".values", col, "entity %q uses unknown property %q", e.Name, col)
				continue
			}
			if !p.Kind.Valid() || p.Kind == graph.KindRelation {
				continue
			}
			if err := normalize.Validate(p.Kind, cellString(raw)); err != nil {
				add(field+".values."+p.Name, raw, "entity %q: %v", e.Name, err)
			}
		}
	}

	return errs.Err()
}
