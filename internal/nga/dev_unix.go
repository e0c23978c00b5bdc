package nga

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Unix device actions, in device order. The clock actions follow at
// unixTime.
const (
	unixSystem = iota
	unixFork
	unixExec0
	unixExec1
	unixExec2
	unixExec3
	unixExit
	unixGetpid
	unixWait
	unixKill
	unixOpenPipe
	unixClosePipe
	unixWrite
	unixChdir
	unixGetenv
	unixPutenv
	unixSleep
	unixPutn
	unixPuts
	unixTime
)

func (v *VM[C]) devUnix() {
	a := v.action()
	if a >= unixTime {
		v.clockAction(a - unixTime)
		return
	}
	switch a {
	case unixSystem: // ( cmd -- )
		cmd := exec.Command("/bin/sh", "-c", v.ExtractString(v.pop()))
		cmd.Stdin = os.Stdin
		cmd.Stdout = v.out
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			log.Debugf("system: %v", err)
		}
	case unixFork: // ( -- pid )
		// the Go runtime cannot survive fork without exec
		v.push(-1)
	case unixExec0, unixExec1, unixExec2, unixExec3: // ( path args... -- errno )
		n := int(a - unixExec0)
		argv := make([]string, n+1)
		for i := n; i >= 1; i-- {
			argv[i] = v.ExtractString(v.pop())
		}
		argv[0] = v.ExtractString(v.pop())
		err := unix.Exec(argv[0], argv, os.Environ())
		v.push(C(errnoOf(err)))
	case unixExit: // ( n -- )
		panic(fault{errno: Exit, status: int(v.pop())})
	case unixGetpid: // ( -- pid )
		v.push(C(unix.Getpid()))
	case unixWait: // ( -- pid )
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, 0, nil)
		if err != nil {
			pid = -1
		}
		v.push(C(pid))
	case unixKill: // ( pid sig -- )
		sig := v.pop()
		pid := v.pop()
		if err := unix.Kill(int(pid), unix.Signal(sig)); err != nil {
			log.Debugf("kill %d: %v", pid, err)
		}
	case unixOpenPipe: // ( cmd mode -- h )
		mode := v.pop()
		cmd := v.ExtractString(v.pop())
		v.push(C(v.files.OpenPipe(cmd, int64(mode))))
	case unixClosePipe: // ( h -- )
		v.files.Close(int64(v.pop()))
	case unixWrite: // ( s n h -- )
		h := v.pop()
		n := int(v.pop())
		s := v.ExtractString(v.pop())
		if n < len(s) && n >= 0 {
			s = s[:n]
		}
		v.files.WriteBytes(int64(h), []byte(s))
	case unixChdir: // ( path -- )
		if err := unix.Chdir(v.ExtractString(v.pop())); err != nil {
			log.Debugf("chdir: %v", err)
		}
	case unixGetenv: // ( name buf -- )
		buf := v.pop()
		val, _ := unix.Getenv(v.ExtractString(v.pop()))
		v.InjectString(val, buf)
	case unixPutenv: // ( "k=v" -- )
		kv := v.ExtractString(v.pop())
		if k, val, ok := strings.Cut(kv, "="); ok {
			if err := unix.Setenv(k, val); err != nil {
				log.Debugf("putenv: %v", err)
			}
		}
	case unixSleep: // ( secs -- )
		if n := v.pop(); n > 0 {
			time.Sleep(time.Duration(n) * time.Second)
		}
	case unixPutn: // ( n -- )
		fmt.Fprintf(v.out, "%d", v.pop())
	case unixPuts: // ( s -- )
		fmt.Fprint(v.out, v.ExtractString(v.pop()))
	default:
		v.trap(IllegalAction)
	}
}

func errnoOf(err error) int64 {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int64(errno)
	}
	if err != nil {
		return -1
	}
	return 0
}
