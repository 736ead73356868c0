package graph

import (
	"github.com/agentstation/utc"
)

// OpType identifies an operation.
type OpType string

// Operation types. The native entity delete is ignored by indexers and is
// not modeled.
const (
	OpCreateEntity   OpType = "createEntity"
	OpUpdateEntity   OpType = "updateEntity"
	OpCreateRelation OpType = "createRelation"
	OpDeleteRelation OpType = "deleteRelation"
	OpUnsetValues    OpType = "unsetValues"
)

// EntityOp carries the payload of createEntity and updateEntity.
type EntityOp struct {
	ID          ID              `yaml:"id" json:"id"`
	Name        *string         `yaml:"name,omitempty" json:"name,omitempty"`
	Description *string         `yaml:"description,omitempty" json:"description,omitempty"`
	Values      []PropertyValue `yaml:"values,omitempty" json:"values,omitempty"`
}

// RelationOp carries the payload of createRelation and deleteRelation.
// deleteRelation only needs ID.
type RelationOp struct {
	ID     ID `yaml:"id" json:"id"`
	TypeID ID `yaml:"type_id,omitempty" json:"type_id,omitempty"`
	FromID ID `yaml:"from_id,omitempty" json:"from_id,omitempty"`
	ToID   ID `yaml:"to_id,omitempty" json:"to_id,omitempty"`
}

// UnsetOp clears every value an entity holds for the listed properties.
type UnsetOp struct {
	EntityID    ID   `yaml:"entity_id" json:"entity_id"`
	PropertyIDs []ID `yaml:"property_ids" json:"property_ids"`
}

// Op is one typed operation. Exactly one payload is set, matching Type.
type Op struct {
	Type     OpType      `yaml:"type" json:"type"`
	Entity   *EntityOp   `yaml:"entity,omitempty" json:"entity,omitempty"`
	Relation *RelationOp `yaml:"relation,omitempty" json:"relation,omitempty"`
	Unset    *UnsetOp    `yaml:"unset,omitempty" json:"unset,omitempty"`
}

// CreateEntity builds a createEntity op.
func CreateEntity(e EntityOp) Op {
	return Op{Type: OpCreateEntity, Entity: &e}
}

// UpdateEntity builds an updateEntity op.
func UpdateEntity(e EntityOp) Op {
	return Op{Type: OpUpdateEntity, Entity: &e}
}

// CreateRelation builds a createRelation op.
func CreateRelation(id, typeID, from, to ID) Op {
	return Op{Type: OpCreateRelation, Relation: &RelationOp{ID: id, TypeID: typeID, FromID: from, ToID: to}}
}

// DeleteRelation builds a deleteRelation op keyed by the relation's own ID.
func DeleteRelation(id ID) Op {
	return Op{Type: OpDeleteRelation, Relation: &RelationOp{ID: id}}
}

// UnsetValues builds an unsetValues op.
func UnsetValues(entityID ID, propertyIDs []ID) Op {
	return Op{Type: OpUnsetValues, Unset: &UnsetOp{EntityID: entityID, PropertyIDs: propertyIDs}}
}

// Batch is an ordered list of operations bound for one namespace, ready to
// be signed and submitted by a publisher.
type Batch struct {
	Name      string   `yaml:"name" json:"name"`
	Namespace ID       `yaml:"namespace" json:"namespace"`
	CreatedAt utc.Time `yaml:"created_at" json:"created_at"`
	Ops       []Op     `yaml:"ops" json:"ops"`
}

// NewBatch creates an empty batch.
func NewBatch(name string, namespace ID) *Batch {
	return &Batch{Name: name, Namespace: namespace, CreatedAt: utc.Now()}
}

// Add appends ops to the batch.
func (b *Batch) Add(ops ...Op) {
	b.Ops = append(b.Ops, ops...)
}

// Len returns the number of ops.
func (b *Batch) Len() int {
	return len(b.Ops)
}

// IsEmpty reports whether the batch has no ops.
func (b *Batch) IsEmpty() bool {
	return len(b.Ops) == 0
}

// Counts returns the number of ops per type.
func (b *Batch) Counts() map[OpType]int {
	counts := make(map[OpType]int)
	for _, op := range b.Ops {
		counts[op.Type]++
	}
	return counts
}
