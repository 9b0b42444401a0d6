package tray

// Node is one element of a tray render tree. The host maps kinds onto its own widgets.
type Node struct {
	Kind  string `json:"kind"`
	Text  string `json:"text,omitempty"`
	Label string `json:"label,omitempty"`
	// Placeholder is shown in an empty input.
	Placeholder string `json:"placeholder,omitempty"`
	Field       string `json:"field,omitempty"`
	Value       any    `json:"value,omitempty"`
	Action      string `json:"action,omitempty"`
	Intent      string `json:"intent,omitempty"`
	Muted       bool   `json:"muted,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	Children    []Node `json:"children,omitempty"`
}

// Node kinds.
const (
	KindStack    = "stack"
	KindFlex     = "flex"
	KindText     = "text"
	KindInput    = "input"
	KindButton   = "button"
	KindSwitch   = "switch"
	KindCheckbox = "checkbox"
)

// Stack lays children out vertically.
func Stack(children ...Node) Node {
	return Node{Kind: KindStack, Children: children}
}

// Flex lays children out horizontally.
func Flex(children ...Node) Node {
	return Node{Kind: KindFlex, Children: children}
}

// Text is a line of text.
func Text(s string) Node {
	return Node{Kind: KindText, Text: s}
}

// Hint is a muted line of text.
func Hint(s string) Node {
	return Node{Kind: KindText, Text: s, Muted: true}
}

// Input is a text field bound to field.
func Input(label, field, value string) Node {
	return Node{Kind: KindInput, Label: label, Field: field, Value: value}
}

// Button triggers action when clicked.
func Button(label, action, intent string) Node {
	return Node{Kind: KindButton, Label: label, Action: action, Intent: intent}
}

// Switch is a toggle bound to field.
func Switch(label, field string, on bool) Node {
	return Node{Kind: KindSwitch, Label: label, Field: field, Value: on}
}

// Checkbox is a check box bound to field.
func Checkbox(label, field string, checked bool) Node {
	return Node{Kind: KindCheckbox, Label: label, Field: field, Value: checked}
}
