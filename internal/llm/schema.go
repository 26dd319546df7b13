package llm

// Kind is the variant tag of a schema Node.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
)

// Node is one element of a response-shape contract. The same tree is
// converted to each provider's native schema type and to a JSON Schema
// document for local validation, so every consumer sees one definition.
type Node struct {
	Kind        Kind
	Description string

	// Object fields. Order lists property names in declaration order;
	// Properties holds the nodes.
	Properties map[string]*Node
	Order      []string
	Required   []string

	// Array fields.
	Items    *Node
	MinItems *int
	MaxItems *int

	// Scalar constraints.
	Enum    []string
	Minimum *float64
	Maximum *float64
}

// Field pairs a property name with its node, for building objects in order.
type Field struct {
	Name string
	Node *Node
}

// Object builds an object node. Every field is required and no extra
// properties are allowed.
func Object(desc string, fields ...Field) *Node {
	n := &Node{
		Kind:        KindObject,
		Description: desc,
		Properties:  make(map[string]*Node, len(fields)),
	}
	for _, f := range fields {
		n.Properties[f.Name] = f.Node
		n.Order = append(n.Order, f.Name)
		n.Required = append(n.Required, f.Name)
	}
	return n
}

// Prop is shorthand for a Field.
func Prop(name string, node *Node) Field {
	return Field{Name: name, Node: node}
}

// Array builds an array node.
func Array(desc string, items *Node) *Node {
	return &Node{Kind: KindArray, Description: desc, Items: items}
}

// String builds a string node.
func String(desc string) *Node {
	return &Node{Kind: KindString, Description: desc}
}

// Integer builds an integer node.
func Integer(desc string) *Node {
	return &Node{Kind: KindInteger, Description: desc}
}

// Number builds a number node.
func Number(desc string) *Node {
	return &Node{Kind: KindNumber, Description: desc}
}

// Boolean builds a boolean node.
func Boolean(desc string) *Node {
	return &Node{Kind: KindBoolean, Description: desc}
}

// Enum builds a string node restricted to values.
func Enum(desc string, values ...string) *Node {
	return &Node{Kind: KindString, Description: desc, Enum: values}
}

// Count bounds an array node to between min and max items.
func (n *Node) Count(min, max int) *Node {
	n.MinItems = &min
	n.MaxItems = &max
	return n
}

// Exactly bounds an array node to exactly count items.
func (n *Node) Exactly(count int) *Node {
	return n.Count(count, count)
}

// AtLeast sets a lower bound on array length.
func (n *Node) AtLeast(min int) *Node {
	n.MinItems = &min
	return n
}

// Range bounds a numeric node.
func (n *Node) Range(min, max float64) *Node {
	n.Minimum = &min
	n.Maximum = &max
	return n
}

// JSONSchema renders the node as a JSON Schema document.
func (n *Node) JSONSchema() map[string]any {
	if n == nil {
		return nil
	}
	def := map[string]any{"type": string(n.Kind)}
	if n.Description != "" {
		def["description"] = n.Description
	}

	switch n.Kind {
	case KindObject:
		props := make(map[string]any, len(n.Properties))
		for name, p := range n.Properties {
			props[name] = p.JSONSchema()
		}
		def["properties"] = props
		required := make([]any, len(n.Required))
		for i, r := range n.Required {
			required[i] = r
		}
		def["required"] = required
		def["additionalProperties"] = false
	case KindArray:
		if n.Items != nil {
			def["items"] = n.Items.JSONSchema()
		}
		if n.MinItems != nil {
			def["minItems"] = *n.MinItems
		}
		if n.MaxItems != nil {
			def["maxItems"] = *n.MaxItems
		}
	}

	if len(n.Enum) > 0 {
		enum := make([]any, len(n.Enum))
		for i, e := range n.Enum {
			enum[i] = e
		}
		def["enum"] = enum
	}
	if n.Minimum != nil {
		def["minimum"] = *n.Minimum
	}
	if n.Maximum != nil {
		def["maximum"] = *n.Maximum
	}
	return def
}
