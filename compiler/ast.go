package compiler

import "fmt"

// ---------------------------------------------------------------------------
// AST: Abstract syntax tree for se programs
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	File   string // resolved include path; empty for the root buffer
	Offset int    // byte offset
	Line   int    // 1-based line number
	Column int    // 1-based column number
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// VarKind enumerates the variable types of the language.
type VarKind int

const (
	VarU128 VarKind = iota
	VarU8
	VarAddress
	VarString
	VarBool
	VarArray
)

// VarType is the type of a state variable, constant or parameter.
// Elem is set only for VarArray.
type VarType struct {
	Kind VarKind
	Elem *VarType
}

func (t VarType) String() string {
	switch t.Kind {
	case VarU128:
		return "u128"
	case VarU8:
		return "u8"
	case VarAddress:
		return "address"
	case VarString:
		return "string"
	case VarBool:
		return "bool"
	case VarArray:
		if t.Elem != nil {
			return "[]" + t.Elem.String()
		}
		return "[]?"
	default:
		return fmt.Sprintf("VarType(%d)", t.Kind)
	}
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	node() // marker method
}

// ---------------------------------------------------------------------------
// Literal nodes
// ---------------------------------------------------------------------------

// Number is a numeric literal in decimal-string form. Constant folding has
// already been applied by the parser, so the text is the final value.
type Number struct {
	Value string
}

// StringLiteral is a double-quoted string literal (unescaped interior).
type StringLiteral struct {
	Value string
}

// Comment is a // line comment carried through to the tree.
type Comment struct {
	Text string
}

// Array is an array literal.
type Array struct {
	Elements []Node
}

// Address is an address literal.
type Address struct {
	Value string
}

func (n *Number) node()        {}
func (n *StringLiteral) node() {}
func (n *Comment) node()       {}
func (n *Array) node()         {}
func (n *Address) node()       {}

// ---------------------------------------------------------------------------
// Structural nodes
// ---------------------------------------------------------------------------

// Root is the top of the tree: the block list of one compilation.
type Root struct {
	Blocks []Node
}

// Define is a $define block. Version is empty if the block did not set one.
type Define struct {
	Version string
	Schemes *Schemes
}

// Schemes is the scheme list of a define block.
type Schemes struct {
	Items []Node
}

// Scheme is one preset configuration inside a schemes list.
type Scheme struct {
	Preset string
	Params []Param
}

// Param is one identifier = value pair in a scheme's params block.
type Param struct {
	Name  string
	Value Node
}

// State is a $state block.
type State struct {
	Vars []Node
}

// StateVariableDeclaration declares one persistent state variable.
type StateVariableDeclaration struct {
	Name string
	Type VarType
}

// Consts is a $consts block.
type Consts struct {
	Decls []Node
}

// ConstDeclaration declares one typed constant with its folded value.
type ConstDeclaration struct {
	Name  string
	Type  VarType
	Value Node
}

// Procedures is a $procedures block. The grammar does not descend into
// procedure bodies yet, so Body is always empty.
type Procedures struct {
	Body []Node
}

func (n *Root) node()                     {}
func (n *Define) node()                   {}
func (n *Schemes) node()                  {}
func (n *Scheme) node()                   {}
func (n *State) node()                    {}
func (n *StateVariableDeclaration) node() {}
func (n *Consts) node()                   {}
func (n *ConstDeclaration) node()         {}
func (n *Procedures) node()               {}

// ---------------------------------------------------------------------------
// Statement nodes
//
// These shapes are reserved for procedure bodies. No parsing rule reaches
// them yet; they exist so the lowering stage that consumes this tree has a
// stable surface to target.
// ---------------------------------------------------------------------------

// TypedParam is a name/type pair in a function signature.
type TypedParam struct {
	Name string
	Type VarType
}

// Function is a procedure definition.
type Function struct {
	Name    string
	Public  bool // pub modifier
	Mutates bool // mut modifier
	Params  []TypedParam
	Body    []Node
}

// LocalVariableDeclaration declares a typed local with an initial value.
type LocalVariableDeclaration struct {
	Name  string
	Type  VarType
	Value Node
}

// LocalVariableAssignment assigns to an existing local.
type LocalVariableAssignment struct {
	Name  string
	Value Node
}

// Return returns a value from a procedure.
type Return struct {
	Value Node
}

// If is a conditional with an optional else branch.
type If struct {
	Condition Node
	Body      []Node
	ElseBody  []Node
}

// While is a pre-test loop.
type While struct {
	Condition Node
	Body      []Node
}

// Call invokes a procedure by name.
type Call struct {
	Name string
	Args []Node
}

func (n *Function) node()                 {}
func (n *LocalVariableDeclaration) node() {}
func (n *LocalVariableAssignment) node()  {}
func (n *Return) node()                   {}
func (n *If) node()                       {}
func (n *While) node()                    {}
func (n *Call) node()                     {}
