package agent

import (
	"github.com/PaulCrtr/cart-ai/internal/util"
)

// InstructionData is the value instruction templates are rendered against.
type InstructionData struct {
	Name     string   // participant name
	Members  []string // router members in registration order
	Options  []string // FINISH followed by Members
	MaxItems int      // per-turn item limit, 0 when unlimited
}

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(data InstructionData) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(data InstructionData) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(data InstructionData) (string, error) { return f(data) }

// Instruction is either a template string or a dynamic provider.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from template text.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(data InstructionData) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by template text.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// IsZero reports whether no instruction was configured.
func (i Instruction) IsZero() bool { return i.provider == nil && i.text == "" }

// Resolve returns the instruction text, rendering the template or invoking
// the provider.
func (i Instruction) Resolve(data InstructionData) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(data)
	}
	return util.RenderTemplate(i.text, data)
}
