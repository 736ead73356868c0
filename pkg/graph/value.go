package graph

// DataType is the remote store's value type.
type DataType string

// Remote data types.
const (
	DataTypeText     DataType = "TEXT"
	DataTypeNumber   DataType = "NUMBER"
	DataTypeCheckbox DataType = "CHECKBOX"
	DataTypeTime     DataType = "TIME"
	DataTypePoint    DataType = "POINT"
	DataTypeRelation DataType = "RELATION"
)

// Kind is the curator-declared kind of a property column. It is finer
// grained than DataType: integer and float both store as NUMBER, date,
// datetime and time all store as TIME.
type Kind string

// Declared property kinds.
const (
	KindText        Kind = "text"
	KindBoolean     Kind = "boolean"
	KindInteger     Kind = "integer"
	KindFloat       Kind = "float"
	KindDate        Kind = "date"
	KindDatetime    Kind = "datetime"
	KindTime        Kind = "time"
	KindPoint       Kind = "point"
	KindRelation    Kind = "relation"
	KindDescription Kind = "description"
)

// Kinds lists every declared kind.
var Kinds = []Kind{
	KindText, KindBoolean, KindInteger, KindFloat, KindDate,
	KindDatetime, KindTime, KindPoint, KindRelation, KindDescription,
}

// String returns the string representation of a kind
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// DataType returns the remote data type a kind is stored as.
func (k Kind) DataType() DataType {
	switch k {
	case KindBoolean:
		return DataTypeCheckbox
	case KindInteger, KindFloat:
		return DataTypeNumber
	case KindDate, KindDatetime, KindTime:
		return DataTypeTime
	case KindPoint:
		return DataTypePoint
	case KindRelation:
		return DataTypeRelation
	default:
		return DataTypeText
	}
}

// Value is a typed scalar as the remote store holds it.
type Value struct {
	Type  DataType `yaml:"type" json:"type"`
	Value string   `yaml:"value" json:"value"`
}

// PropertyValue is one property's value on an entity.
type PropertyValue struct {
	PropertyID ID    `yaml:"property_id" json:"property_id"`
	Value      Value `yaml:"value" json:"value"`
}
