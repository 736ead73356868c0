// Package workbook loads the curator's sheets, exported as one YAML
// document, and checks them before any remote work starts.
//
// A workbook has four sections:
//
//	namespace: 3f1c...          # target namespace ID
//	types:                      # entity types used by the sheet
//	  - name: Company
//	properties:                 # columns
//	  - name: Founded
//	    kind: date
//	  - name: Founders
//	    kind: relation
//	    target_types: [Person]
//	entities:                   # rows
//	  - name: Acme
//	    types: Company
//	    values:
//	      Founded: 1949-05-01
//	      Founders: Alice; Bob
//
// Multi-valued cells (types and relation targets) are separated by
// semicolons or newlines, or written as YAML lists. Quote cells whose exact
// spelling matters; unquoted numbers are re-rendered from their parsed value.
package workbook

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/normalize"
)

// Workbook is a parsed sheet export.
type Workbook struct {
	Namespace  string     `yaml:"namespace"`
	Types      []Type     `yaml:"types"`
	Properties []Property `yaml:"properties"`
	Entities   []Entity   `yaml:"entities"`

	// Source is the file the workbook was read from, for messages.
	Source string `yaml:"-"`
}

// Type is a declared entity type. ID is set when the type already exists.
type Type struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id,omitempty"`
}

// Property is a declared column.
type Property struct {
	Name        string     `yaml:"name"`
	Kind        graph.Kind `yaml:"kind"`
	ID          string     `yaml:"id,omitempty"`
	TargetTypes []string   `yaml:"target_types,omitempty"`
}

// Entity is one row. Values holds raw cells keyed by property name.
type Entity struct {
	Name   string         `yaml:"name"`
	ID     string         `yaml:"id,omitempty"`
	Types  any            `yaml:"types,omitempty"`
	Values map[string]any `yaml:"values,omitempty"`
}

// Load reads and parses a workbook file.
func Load(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a workbook document. It does not validate it.
func Parse(data []byte, source string) (*Workbook, error) {
	var wb Workbook
	if err := yaml.Unmarshal(data, &wb); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	wb.Source = source
	return &wb, nil
}

// NamespaceID returns the parsed target namespace.
func (wb *Workbook) NamespaceID() graph.ID {
	return parseOptionalID(wb.Namespace)
}

// Property finds a declared property by name in any spelling.
func (wb *Workbook) Property(name string) (*Property, bool) {
	key := normalize.Name(name)
	for i := range wb.Properties {
		if normalize.Name(wb.Properties[i].Name) == key {
			return &wb.Properties[i], true
		}
	}
	return nil, false
}

// Type finds a declared type by name in any spelling.
func (wb *Workbook) Type(name string) (*Type, bool) {
	key := normalize.Name(name)
	for i := range wb.Types {
		if normalize.Name(wb.Types[i].Name) == key {
			return &wb.Types[i], true
		}
	}
	return nil, false
}

// PropertyID returns the parsed ID, empty when none was given.
func (p *Property) PropertyID() graph.ID {
	return parseOptionalID(p.ID)
}

// TypeID returns the parsed ID, empty when none was given.
func (t *Type) TypeID() graph.ID {
	return parseOptionalID(t.ID)
}

// EntityID returns the parsed ID, empty when none was given.
func (e *Entity) EntityID() graph.ID {
	return parseOptionalID(e.ID)
}

// TypeNames returns the entity's declared type names.
func (e *Entity) TypeNames() []string {
	return normalize.Unique(list(e.Types))
}

// Cell returns the raw text of the entity's cell for property name.
// Missing cells are blank.
func (e *Entity) Cell(name string) string {
	key := normalize.Name(name)
	for k, v := range e.Values {
		if normalize.Name(k) == key {
			return cellString(v)
		}
	}
	return ""
}

// Cells returns the entity's cells for props, keyed by each property's
// declared name.
func (e *Entity) Cells(props []Property) map[string]string {
	out := make(map[string]string, len(props))
	for _, p := range props {
		if p.Kind == graph.KindRelation {
			continue
		}
		if c := e.Cell(p.Name); !normalize.IsBlank(c) {
			out[p.Name] = c
		}
	}
	return out
}

// Targets returns the relation target names in the entity's cell for
// property name, deduplicated by normalized name.
func (e *Entity) Targets(name string) []string {
	key := normalize.Name(name)
	for k, v := range e.Values {
		if normalize.Name(k) == key {
			return normalize.Unique(list(v))
		}
	}
	return nil
}

func parseOptionalID(s string) graph.ID {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	id, err := graph.ParseID(s)
	if err != nil {
		return ""
	}
	return id
}

// list flattens a multi-valued cell written either as text or as a list.
func list(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, normalize.SplitList(cellString(item))...)
		}
		return out
	default:
		return normalize.SplitList(cellString(v))
	}
}

// cellString renders a decoded YAML scalar the way the curator typed it.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format(constants.DateFormat)
		}
		return t.Format(time.RFC3339)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, cellString(item))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(t)
	}
}
