package nga

// Header is one dictionary entry: link, xt, class, then the name.
type Header struct {
	Addr  int64
	Link  int64
	XT    int64
	Class int64
	Name  string
}

// Resolve reloads the dictionary root and the xts the host depends on.
func (v *VM[C]) Resolve() {
	v.Dictionary = v.mem[2]
	v.Interpret = v.XT("interpret")
	v.NotFound = v.XT("err:notfound")
}

// walk visits headers newest first. The number of visits is bounded so
// a cyclic chain cannot hang the host. The oldest header, whose link is 0,
// is visited too, unlike hosts that stop the walk one entry short of it.
func (v *VM[C]) walk(visit func(h int) bool) {
	h := int(v.mem[2])
	for n := 0; h > 0 && h+3 <= ImageSize && n < ImageSize; n++ {
		if !visit(h) {
			return
		}
		h = int(v.mem[h])
	}
}

// Lookup returns the address of the newest header named name, or 0.
func (v *VM[C]) Lookup(name string) C {
	var found C
	v.walk(func(h int) bool {
		if v.equalString(h+3, name) {
			found = C(h)
			return false
		}
		return true
	})
	return found
}

// XT returns the execution token of name, or 0 when it is not defined.
func (v *VM[C]) XT(name string) C {
	h := v.Lookup(name)
	if h == 0 {
		return 0
	}
	return v.mem[h+1]
}

func (v *VM[C]) Headers() []Header {
	var out []Header
	v.walk(func(h int) bool {
		out = append(out, Header{
			Addr:  int64(h),
			Link:  int64(v.mem[h]),
			XT:    int64(v.mem[h+1]),
			Class: int64(v.mem[h+2]),
			Name:  v.ExtractString(C(h + 3)),
		})
		return true
	})
	return out
}
