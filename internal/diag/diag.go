package diag

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

type Pos struct {
	Line int // 1-based
	Col  int // 1-based
}

type Diagnostic struct {
	Code     string
	Message  string
	Severity Severity
	Pos      Pos
}

func Errorf(pos Pos, code, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func (d Diagnostic) Format(path string) string {
	if d.Code != "" {
		return fmt.Sprintf("%s:%d:%d: %s %s: %s", path, d.Pos.Line, d.Pos.Col, d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", path, d.Pos.Line, d.Pos.Col, d.Severity, d.Message)
}

// List collects diagnostics for one source and is usable as an error.
type List struct {
	Path  string
	Diags []Diagnostic
}

func (l *List) Add(d Diagnostic) { l.Diags = append(l.Diags, d) }

func (l *List) HasErrors() bool {
	for _, d := range l.Diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns l when it holds at least one error, nil otherwise.
func (l *List) Err() error {
	if l.HasErrors() {
		return l
	}
	return nil
}

func (l *List) Error() string {
	path := l.Path
	if path == "" {
		path = "<input>"
	}
	lines := make([]string, 0, len(l.Diags))
	for _, d := range l.Diags {
		lines = append(lines, d.Format(path))
	}
	return strings.Join(lines, "\n")
}
