package code

type Opcode byte

const (
	OpNop Opcode = iota
	OpLit        // operand: the next cell
	OpDup
	OpDrop
	OpSwap
	OpPush // data stack -> address stack
	OpPop  // address stack -> data stack
	OpJump
	OpCall
	OpCCall // ( flag target -- )
	OpReturn
	OpEq
	OpNeq
	OpLt
	OpGt
	OpFetch
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDivMod
	OpAnd
	OpOr
	OpXor
	OpShift
	OpZeroReturn
	OpHalt
	OpIOEnumerate
	OpIOQuery
	OpIOInvoke
)

// LastOpcode is the highest valid lane value.
const LastOpcode = OpIOInvoke

// Lanes is the number of opcodes packed into one cell.
const Lanes = 4

type Definition struct {
	Name     string
	Mnemonic string // two letter Muri form
	HasArg   bool
}

var definitions = [LastOpcode + 1]Definition{
	OpNop:         {"nop", "..", false},
	OpLit:         {"lit", "li", true},
	OpDup:         {"dup", "du", false},
	OpDrop:        {"drop", "dr", false},
	OpSwap:        {"swap", "sw", false},
	OpPush:        {"push", "pu", false},
	OpPop:         {"pop", "po", false},
	OpJump:        {"jump", "ju", false},
	OpCall:        {"call", "ca", false},
	OpCCall:       {"ccall", "cc", false},
	OpReturn:      {"return", "re", false},
	OpEq:          {"eq", "eq", false},
	OpNeq:         {"neq", "ne", false},
	OpLt:          {"lt", "lt", false},
	OpGt:          {"gt", "gt", false},
	OpFetch:       {"fetch", "fe", false},
	OpStore:       {"store", "st", false},
	OpAdd:         {"add", "ad", false},
	OpSub:         {"sub", "su", false},
	OpMul:         {"mul", "mu", false},
	OpDivMod:      {"divmod", "di", false},
	OpAnd:         {"and", "an", false},
	OpOr:          {"or", "or", false},
	OpXor:         {"xor", "xo", false},
	OpShift:       {"shift", "sh", false},
	OpZeroReturn:  {"zret", "zr", false},
	OpHalt:        {"halt", "ha", false},
	OpIOEnumerate: {"ienumerate", "ie", false},
	OpIOQuery:     {"iquery", "iq", false},
	OpIOInvoke:    {"iinvoke", "ii", false},
}

var byMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, len(definitions))
	for op, def := range definitions {
		m[def.Mnemonic] = Opcode(op)
	}
	return m
}()

func Lookup(op Opcode) (*Definition, bool) {
	if op > LastOpcode {
		return nil, false
	}
	return &definitions[op], true
}

func LookupMnemonic(s string) (Opcode, bool) {
	op, ok := byMnemonic[s]
	return op, ok
}

func (op Opcode) String() string {
	if def, ok := Lookup(op); ok {
		return def.Name
	}
	return "unknown"
}

// Lane returns the i-th opcode lane of a packed cell, lane 0 being the
// least significant byte. The shift is arithmetic, so every lane of a
// negative cell reads as 0xFF.
func Lane(word int64, i int) int64 {
	return (word >> (8 * uint(i))) & 0xFF
}

// Validate reports whether every lane of word names a defined opcode.
func Validate(word int64) bool {
	for i := 0; i < Lanes; i++ {
		if Lane(word, i) > int64(LastOpcode) {
			return false
		}
	}
	return true
}

// Unpack splits word into its lanes. It does not validate; callers are
// expected to run Validate first.
func Unpack(word int64) [Lanes]Opcode {
	var ops [Lanes]Opcode
	for i := range ops {
		ops[i] = Opcode(Lane(word, i))
	}
	return ops
}

// Pack builds a cell from up to four opcodes; missing lanes are nops.
func Pack(ops ...Opcode) int64 {
	if len(ops) > Lanes {
		panic("code: more than four opcodes in one cell")
	}
	var w int64
	for i, op := range ops {
		w |= int64(op) << (8 * uint(i))
	}
	return w
}

// Args counts the lit lanes of a packed cell, i.e. how many operand cells
// follow it.
func Args(word int64) int {
	n := 0
	for _, op := range Unpack(word) {
		if op == OpLit {
			n++
		}
	}
	return n
}
