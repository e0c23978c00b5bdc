package code

import (
	"strings"
	"testing"
)

func TestPackUnpackLaneOrder(t *testing.T) {
	w := Pack(OpLit, OpDup, OpAdd, OpReturn)
	ops := Unpack(w)
	want := [Lanes]Opcode{OpLit, OpDup, OpAdd, OpReturn}
	if ops != want {
		t.Fatalf("unpack mismatch: got %v want %v", ops, want)
	}
	if Lane(w, 0) != int64(OpLit) {
		t.Fatalf("lane 0 must be the least significant byte, got %d", Lane(w, 0))
	}
}

func TestValidateRejectsAnyBadLane(t *testing.T) {
	for lane := 0; lane < Lanes; lane++ {
		w := Pack(OpNop, OpNop, OpNop, OpNop) | int64(LastOpcode+1)<<(8*uint(lane))
		if Validate(w) {
			t.Fatalf("lane %d out of range should invalidate the cell", lane)
		}
	}
	if !Validate(Pack(OpIOInvoke, OpIOInvoke, OpIOInvoke, OpIOInvoke)) {
		t.Fatalf("highest opcode in every lane must validate")
	}
	if Validate(-1) {
		t.Fatalf("negative cell has 0xFF lanes and must not validate")
	}
}

func TestValidateIgnoresHighBytes(t *testing.T) {
	w := int64(0x11) << 40
	if !Validate(w) {
		t.Fatalf("bytes above the four lanes are not opcodes")
	}
}

func TestMnemonicsRoundTrip(t *testing.T) {
	for op := OpNop; op <= LastOpcode; op++ {
		def, ok := Lookup(op)
		if !ok {
			t.Fatalf("missing definition for %d", op)
		}
		got, ok := LookupMnemonic(def.Mnemonic)
		if !ok || got != op {
			t.Fatalf("mnemonic %q maps to %v, want %v", def.Mnemonic, got, op)
		}
	}
	if _, ok := Lookup(LastOpcode + 1); ok {
		t.Fatalf("lookup past the last opcode should fail")
	}
}

func TestDisassemble(t *testing.T) {
	if got := Disassemble(Pack(OpLit, OpCall)); got != "i lica...." {
		t.Fatalf("unexpected disassembly %q", got)
	}
	if got := Disassemble(-7); got != "d -7" {
		t.Fatalf("invalid cell should render as data, got %q", got)
	}
}

func TestListingSkipsOperands(t *testing.T) {
	cells := []int64{Pack(OpLit, OpLit, OpAdd), 2, 3, Pack(OpHalt)}
	out := Listing(cells, 100)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasSuffix(lines[1], "d 2") || !strings.HasSuffix(lines[2], "d 3") {
		t.Fatalf("operands not rendered as data:\n%s", out)
	}
	if !strings.HasPrefix(lines[3], "0000103 i ha") {
		t.Fatalf("unexpected last line %q", lines[3])
	}
}
