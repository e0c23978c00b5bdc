package code

import (
	"bytes"
	"fmt"
	"strings"
)

// Disassemble renders one packed cell as four Muri mnemonics, or as a
// data cell when it does not validate.
func Disassemble(word int64) string {
	if !Validate(word) {
		return fmt.Sprintf("d %d", word)
	}
	var sb strings.Builder
	sb.WriteString("i ")
	for _, op := range Unpack(word) {
		sb.WriteString(definitions[op].Mnemonic)
	}
	return sb.String()
}

// Listing disassembles a run of cells starting at origin. Operand cells of
// lit lanes are printed as data.
func Listing(cells []int64, origin int) string {
	var out bytes.Buffer

	i := 0
	for i < len(cells) {
		w := cells[i]
		fmt.Fprintf(&out, "%07d %s\n", origin+i, Disassemble(w))
		i++
		if !Validate(w) {
			continue
		}
		for n := Args(w); n > 0 && i < len(cells); n-- {
			fmt.Fprintf(&out, "%07d d %d\n", origin+i, cells[i])
			i++
		}
	}

	return out.String()
}
