package wiki

import "errors"

// ErrWrite marks a failure to write a file into the docs tree.
var ErrWrite = errors.New("write failed")

// Diagram holds a generated Mermaid diagram.
type Diagram struct {
	Title   string
	Type    string // "feature-map"
	Content string // Mermaid source
}

// Node types in the navigation tree.
const (
	NodeDoc      = "doc"
	NodeCategory = "category"
)

// NavigationNode is one entry of the sidebar tree. Doc nodes carry an ID;
// category nodes carry a Label and Children.
type NavigationNode struct {
	Type     string           `json:"type"`
	ID       string           `json:"id,omitempty"`
	Label    string           `json:"label,omitempty"`
	Children []NavigationNode `json:"items,omitempty"`
}

// MaterializeResult reports what one Materialize call wrote.
type MaterializeResult struct {
	Navigation NavigationNode
	Written    []string // paths relative to the docs root
	Failed     []string // document ids that could not be written
}
