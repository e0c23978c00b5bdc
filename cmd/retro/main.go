package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"retro/internal/config"
)

var log = commonlog.GetLogger("retro.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

type options struct {
	interactive bool
	charMode    bool
	silent      bool
	files       []string
	image       string
	tests       bool
	verbosity   int
	steps       int64
	gfx         bool
	dis         bool
	words       bool

	// script and its arguments, from the command line or a manifest
	script string
	args   []string
}

// fileList collects repeated -f flags.
type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(s string) error {
	*f = append(*f, s)
	return nil
}

const usage = `Scripting Usage: retro filename [script arguments...]

Interactive Usage: retro [-h] [-i] [-i,fs] [-s] [-f filename] [-t] [-u image]

  retro run [dir]    run the project described by dir/retro.toml
  retro init         create retro.toml and a starter source file

`

func parseArgs(args []string, out io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("retro", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}
	var files fileList
	fs.BoolVar(&o.interactive, "i", false, "start the listener (line buffered)")
	fs.BoolVar(&o.charMode, "i,fs", false, "start the listener (character buffered)")
	fs.BoolVar(&o.silent, "s", false, "suppress the prompt, echo and the final stack")
	fs.Var(&files, "f", "include `filename` before anything else (repeatable)")
	fs.StringVar(&o.image, "u", "", "load `image` instead of the built-in kernel")
	fs.BoolVar(&o.tests, "t", false, "also run ``` test blocks")
	fs.IntVar(&o.verbosity, "v", 0, "log verbosity")
	fs.Int64Var(&o.steps, "steps", 0, "stop after this many words (0 is unlimited)")
	fs.BoolVar(&o.gfx, "g", false, "show the display device in a window")
	fs.BoolVar(&o.dis, "dis", false, "disassemble the image and exit")
	fs.BoolVar(&o.words, "words", false, "list the dictionary and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.files = files
	if o.charMode {
		o.interactive = true
	}

	rest := fs.Args()
	if len(rest) > 0 && rest[0] == "run" {
		if len(rest) > 2 {
			return nil, errors.New("usage: retro run [dir]")
		}
		dir := "."
		if len(rest) == 2 {
			dir = rest[1]
		}
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if err := o.applyManifest(dir, set); err != nil {
			return nil, err
		}
		return o, nil
	}
	if len(rest) > 0 {
		o.script = rest[0]
		o.args = rest
	}
	return o, nil
}

// applyManifest fills in everything the command line left unset.
func (o *options) applyManifest(dir string, set map[string]bool) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	m, err := config.LoadManifest(filepath.Join(root, config.FileName))
	if err != nil {
		return err
	}
	log.Infof("project %q: %s", m.Name, m.EntryPath())
	o.script = m.EntryPath()
	o.args = []string{o.script}
	if !set["u"] {
		o.image = m.ImagePath()
	}
	if !set["t"] {
		o.tests = m.Tests
	}
	if !set["steps"] {
		o.steps = m.Steps
	}
	return nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout)
	}
	o, err := parseArgs(args, stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stdout, "usage error:", err)
		return 1
	}
	commonlog.Configure(o.verbosity, nil)
	return runHost(o, stdin, stdout)
}

func runInit(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "project name")
	entry := fs.String("entry", "main.retro", "entry file")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		fmt.Fprintln(out, "usage: retro init [-name <name>] [-entry <file>] [-force]")
		return 1
	}
	if strings.TrimSpace(*entry) == "" {
		fmt.Fprintln(out, "init error: entry cannot be empty")
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	manifestPath := filepath.Join(cwd, config.FileName)
	exists, err := pathExists(manifestPath)
	if err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 1
	}
	if exists && !*force {
		fmt.Fprintf(out, "init error: %s already exists (use -force to overwrite)\n", config.FileName)
		return 1
	}
	if err := os.WriteFile(manifestPath, []byte(buildManifest(*name, *entry)), 0o644); err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 1
	}

	entryPath := filepath.Join(cwd, *entry)
	if err := ensureDir(entryPath); err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 1
	}
	exists, err = pathExists(entryPath)
	if err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 1
	}
	if !exists || *force {
		if err := os.WriteFile(entryPath, []byte(starterProgram), 0o644); err != nil {
			fmt.Fprintln(out, "init error:", err)
			return 1
		}
	}
	return 0
}

func buildManifest(name, entry string) string {
	var b strings.Builder
	if strings.TrimSpace(name) != "" {
		fmt.Fprintf(&b, "name = %q\n", name)
	}
	fmt.Fprintf(&b, "entry = %q\n", entry)
	return b.String()
}

const starterProgram = "Code lives in fenced blocks; everything else is prose.\n\n~~~\n1 2 + .\n~~~\n"

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
