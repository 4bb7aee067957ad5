// Package kinds defines the node kind alphabet shared by tree builders and
// the diff core.
//
// A Kind is a small ordinal into a per-language alphabet registered up front.
// Kinds carry predicate flags (spacing, statement, comment, ...) and a shared
// classification used by language-agnostic consumers. Alphabets are expected
// to be registered during package initialisation of the language bindings;
// lookups after that point are lock-free.
package kinds

import (
	"fmt"
	"sync"
)

// Kind is an ordinal drawn from a fixed per-language alphabet.
type Kind uint16

// Flags carries the kind predicates.
type Flags uint16

const (
	// FlagSpaces marks kinds holding inter-token whitespace.
	FlagSpaces Flags = 1 << iota
	// FlagDirectory marks filesystem directory kinds.
	FlagDirectory
	// FlagFile marks filesystem file kinds.
	FlagFile
	// FlagStatement marks statement-level kinds.
	FlagStatement
	// FlagHidden marks kinds not present in the concrete syntax.
	FlagHidden
	// FlagBranch marks branching control flow kinds.
	FlagBranch
	// FlagComment marks comment kinds.
	FlagComment
)

// Class is the shared classification of a kind across languages.
type Class uint8

const (
	ClassOther Class = iota
	ClassTypeDeclaration
	ClassBranch
	ClassComment
)

func (c Class) String() string {
	switch c {
	case ClassTypeDeclaration:
		return "type_declaration"
	case ClassBranch:
		return "branch"
	case ClassComment:
		return "comment"
	default:
		return "other"
	}
}

var registry struct {
	sync.Mutex

	names   []string
	flags   []Flags
	classes []Class
}

// Register adds a kind to the alphabet and returns its ordinal.
//
// Register is safe for concurrent use, but callers are expected to register
// the whole alphabet before interning any tree; the predicate tables are read
// without synchronisation afterwards.
func Register(name string, flags Flags, class Class) Kind {
	registry.Lock()
	defer registry.Unlock()

	k := Kind(len(registry.names))
	registry.names = append(registry.names, name)
	registry.flags = append(registry.flags, flags)
	registry.classes = append(registry.classes, class)
	return k
}

// Name returns the registered name of k.
func (k Kind) Name() string { return registry.names[k] }

func (k Kind) String() string {
	if int(k) >= len(registry.names) {
		return fmt.Sprintf("Kind(%d)", uint16(k))
	}
	return registry.names[k]
}

// Flags returns the predicate flags of k.
func (k Kind) Flags() Flags { return registry.flags[k] }

// Class returns the shared classification of k.
func (k Kind) Class() Class { return registry.classes[k] }

func (k Kind) IsSpaces() bool    { return k.Flags()&FlagSpaces != 0 }
func (k Kind) IsDirectory() bool { return k.Flags()&FlagDirectory != 0 }
func (k Kind) IsFile() bool      { return k.Flags()&FlagFile != 0 }
func (k Kind) IsStatement() bool { return k.Flags()&FlagStatement != 0 }
func (k Kind) IsHidden() bool    { return k.Flags()&FlagHidden != 0 }
func (k Kind) IsBranch() bool    { return k.Flags()&FlagBranch != 0 }
func (k Kind) IsComment() bool   { return k.Flags()&FlagComment != 0 }

// A minimal language-agnostic alphabet, used by tests and examples.
var (
	Spaces = Register("spaces", FlagSpaces|FlagHidden, ClassOther)
	Block  = Register("block", 0, ClassOther)
	If     = Register("if_statement", FlagStatement|FlagBranch, ClassBranch)
	Expr   = Register("expression", 0, ClassOther)
)
