package nga

// File device actions.
const (
	fileOpen = iota
	fileClose
	fileRead
	fileWrite
	fileTell
	fileSeek
	fileSize
	fileDelete
	fileFlush
)

func (v *VM[C]) devFiles() {
	switch v.action() {
	case fileOpen: // ( name mode -- h )
		mode := v.pop()
		name := v.ExtractString(v.pop())
		v.push(C(v.files.Open(name, int64(mode))))
	case fileClose: // ( h -- )
		v.files.Close(int64(v.pop()))
	case fileRead: // ( h -- c )
		v.push(C(v.files.Read(int64(v.pop()))))
	case fileWrite: // ( c h -- )
		h := v.pop()
		c := v.pop()
		v.files.Write(int64(h), int64(c))
	case fileTell: // ( h -- n )
		v.push(C(v.files.Position(int64(v.pop()))))
	case fileSeek: // ( n h -- )
		h := v.pop()
		off := v.pop()
		v.files.SetPosition(int64(h), int64(off))
	case fileSize: // ( h -- n )
		v.push(C(v.files.Size(int64(v.pop()))))
	case fileDelete: // ( name -- )
		v.files.Delete(v.ExtractString(v.pop()))
	case fileFlush: // ( h -- )
		v.files.Flush(int64(v.pop()))
	default:
		v.trap(IllegalAction)
	}
}
