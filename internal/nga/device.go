package nga

// DeviceID numbers the I/O devices. The numbering and each device's
// stack effects are part of the image ABI.
type DeviceID int

const (
	DevOutput DeviceID = iota
	DevKeyboard
	DevFiles
	DevFloat
	DevScripting
	DevUnix
	DevClock
	DevImage
	DevRandom
	DevDisplay
)

var deviceNames = [...]string{
	DevOutput:    "output",
	DevKeyboard:  "keyboard",
	DevFiles:     "filesystem",
	DevFloat:     "floating point",
	DevScripting: "scripting",
	DevUnix:      "unix",
	DevClock:     "clock",
	DevImage:     "image save",
	DevRandom:    "random",
	DevDisplay:   "display",
}

func (d DeviceID) String() string {
	if d >= 0 && int(d) < len(deviceNames) {
		return deviceNames[d]
	}
	return "unknown"
}

// Identify returns the class and revision a device reports to iquery.
func Identify(id DeviceID) (class, revision int64) {
	switch id {
	case DevOutput:
		return 0, 0
	case DevKeyboard:
		return 0, 1
	case DevFiles:
		return 0, 4
	case DevFloat:
		return 1, 2
	case DevScripting:
		return 0, 9
	case DevUnix:
		return 1, 8
	case DevClock:
		return 0, 5
	case DevImage:
		return 0, 1000
	case DevRandom:
		return 0, 10
	case DevDisplay:
		return 0, 11
	}
	return -1, -1
}

func (v *VM[C]) query(id DeviceID) {
	class, rev := Identify(id)
	v.push(C(class))
	v.push(C(rev))
}

func (v *VM[C]) invoke(id DeviceID) {
	switch id {
	case DevOutput:
		v.devOutput()
	case DevKeyboard:
		v.devKeyboard()
	case DevFiles:
		v.devFiles()
	case DevFloat:
		v.devFloat()
	case DevScripting:
		v.devScripting()
	case DevUnix:
		v.devUnix()
	case DevClock:
		v.devClock()
	case DevImage:
		v.devImage()
	case DevRandom:
		v.devRandom()
	case DevDisplay:
		v.devDisplay()
	default:
		v.trap(IllegalDevice)
	}
}

// action pops a device action number.
func (v *VM[C]) action() int64 {
	return int64(v.pop())
}
