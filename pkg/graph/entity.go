package graph

// Relation is an outgoing edge. TypeID is the ID of the property the
// relation belongs to.
type Relation struct {
	ID       ID `yaml:"id" json:"id"`
	TypeID   ID `yaml:"type_id" json:"type_id"`
	TargetID ID `yaml:"target_id" json:"target_id"`
}

// Backlink is an incoming edge.
type Backlink struct {
	ID       ID `yaml:"id" json:"id"`
	TypeID   ID `yaml:"type_id" json:"type_id"`
	SourceID ID `yaml:"source_id" json:"source_id"`
}

// Entity is a snapshot of one remote entity, fetched fresh per run.
// A nil *Entity means the entity does not exist.
type Entity struct {
	ID          ID              `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	TypeIDs     []ID            `yaml:"type_ids,omitempty" json:"type_ids,omitempty"`
	Values      []PropertyValue `yaml:"values,omitempty" json:"values,omitempty"`
	Relations   []Relation      `yaml:"relations,omitempty" json:"relations,omitempty"`
	Backlinks   []Backlink      `yaml:"backlinks,omitempty" json:"backlinks,omitempty"`
}

// Value returns the first value held for propertyID.
func (e *Entity) Value(propertyID ID) (Value, bool) {
	for _, pv := range e.Values {
		if pv.PropertyID == propertyID {
			return pv.Value, true
		}
	}
	return Value{}, false
}

// RelationsOfType returns the outgoing relations whose type is propertyID.
func (e *Entity) RelationsOfType(propertyID ID) []Relation {
	var out []Relation
	for _, r := range e.Relations {
		if r.TypeID == propertyID {
			out = append(out, r)
		}
	}
	return out
}

// Candidate is a search hit for a name lookup.
type Candidate struct {
	ID      ID     `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	TypeIDs []ID   `yaml:"type_ids,omitempty" json:"type_ids,omitempty"`
}

// HasAnyType reports whether the candidate carries any of ids.
func (c Candidate) HasAnyType(ids []ID) bool {
	for _, want := range ids {
		for _, have := range c.TypeIDs {
			if want == have {
				return true
			}
		}
	}
	return false
}
