package nga

// ExtractString reads a NUL terminated string of one byte per cell. It
// stops at the end of memory and after MaxString bytes.
func (v *VM[C]) ExtractString(addr C) string {
	if addr < 0 || addr > ImageSize {
		return ""
	}
	buf := make([]byte, 0, 32)
	for i := int(addr); i <= ImageSize && len(buf) < MaxString; i++ {
		c := v.mem[i]
		if c == 0 {
			break
		}
		buf = append(buf, byte(c))
	}
	return string(buf)
}

// InjectString writes s followed by a NUL at addr and returns addr. Bytes
// that would fall outside memory are dropped.
func (v *VM[C]) InjectString(s string, addr C) C {
	if addr < 0 || addr > ImageSize {
		return addr
	}
	i := int(addr)
	for j := 0; j < len(s) && i < ImageSize; j++ {
		v.mem[i] = C(s[j])
		i++
	}
	v.mem[i] = 0
	return addr
}

func (v *VM[C]) equalString(addr int, s string) bool {
	for j := 0; j < len(s); j++ {
		if addr+j > ImageSize || v.mem[addr+j] != C(s[j]) {
			return false
		}
	}
	return addr+len(s) <= ImageSize && v.mem[addr+len(s)] == 0
}
