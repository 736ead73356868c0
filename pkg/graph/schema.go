package graph

// Schema holds the system identifiers the protocol reserves for built-in
// properties and types. They differ between deployments, so the CLI loads
// them from configuration and falls back to DefaultSchema.
type Schema struct {
	NameProperty        ID `yaml:"name_property" json:"name_property"`
	DescriptionProperty ID `yaml:"description_property" json:"description_property"`
	TypesProperty       ID `yaml:"types_property" json:"types_property"`
	PropertyType        ID `yaml:"property_type" json:"property_type"`
	TypeType            ID `yaml:"type_type" json:"type_type"`
}

// DefaultSchema returns the system identifiers of the public deployment.
func DefaultSchema() Schema {
	return Schema{
		NameProperty:        "a126ca530c8e48d5b88882c734c38935",
		DescriptionProperty: "9b1f76ff9711404c861e59dc3fa7d037",
		TypesProperty:       "8f151ba4de204e3c9cb499ddf96f7f1f",
		PropertyType:        "808a04ceb21c4d888ad12e240613e5ca",
		TypeType:            "e7d737c536764c609fa16aa64a8c90ad",
	}
}

// Valid reports whether every schema identifier is well-formed.
func (s Schema) Valid() bool {
	for _, id := range []ID{s.NameProperty, s.DescriptionProperty, s.TypesProperty, s.PropertyType, s.TypeType} {
		if !id.Valid() {
			return false
		}
	}
	return true
}
