package formula

// Node is an element of a parsed formula.
type Node interface {
	Pos() int
}

type NumberLiteral struct {
	Value  float64
	Offset int
}

type StringLiteral struct {
	Value  string
	Offset int
}

type BoolLiteral struct {
	Value  bool
	Offset int
}

// FieldRef is a {{field_name}} placeholder.
type FieldRef struct {
	Name   string
	Offset int
}

type UnaryExpr struct {
	Op      TokenType
	Operand Node
	Offset  int
}

type BinaryExpr struct {
	Op     TokenType
	Left   Node
	Right  Node
	Offset int
}

type CallExpr struct {
	Name   string
	Args   []Node
	Offset int
}

func (n *NumberLiteral) Pos() int { return n.Offset }
func (n *StringLiteral) Pos() int { return n.Offset }
func (n *BoolLiteral) Pos() int   { return n.Offset }
func (n *FieldRef) Pos() int      { return n.Offset }
func (n *UnaryExpr) Pos() int     { return n.Offset }
func (n *BinaryExpr) Pos() int    { return n.Offset }
func (n *CallExpr) Pos() int      { return n.Offset }

// Expression is a parsed formula ready to be evaluated any number of times.
type Expression struct {
	Source string
	Root   Node
}

// References returns the placeholder names in order of first appearance.
func (e *Expression) References() []string {
	seen := make(map[string]bool)
	refs := make([]string, 0)
	var walk func(Node)
	walk = func(n Node) {
		switch node := n.(type) {
		case *FieldRef:
			if !seen[node.Name] {
				seen[node.Name] = true
				refs = append(refs, node.Name)
			}
		case *UnaryExpr:
			walk(node.Operand)
		case *BinaryExpr:
			walk(node.Left)
			walk(node.Right)
		case *CallExpr:
			for _, arg := range node.Args {
				walk(arg)
			}
		}
	}
	walk(e.Root)
	return refs
}
