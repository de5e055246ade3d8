// Package launcher implements the gojvm command line: flag parsing,
// classpath assembly, VM bootstrap, and translating an uncaught
// exception into the process's exit status — the part of cmd/gojvm
// that is worth unit testing on its own, separated out the way the
// teacher kept main.go itself a thin wrapper over pkg/vm.
package launcher

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minijvm/minijvm/internal/classpath"
	"github.com/minijvm/minijvm/pkg/classloader"
	"github.com/minijvm/minijvm/pkg/gfunction"
	"github.com/minijvm/minijvm/pkg/interpreter"
	"github.com/minijvm/minijvm/pkg/oop"
	"github.com/minijvm/minijvm/pkg/vmbootstrap"
)

// Config is a parsed command line: a main class plus its arguments and
// the classpath to resolve it and everything it loads against.
type Config struct {
	ClasspathEntries []string
	MainClass        string // internal (slash-separated) form
	Args             []string
}

// ParseArgs parses the launcher's command line (SPEC_FULL §6):
//
//	<launcher> [--cp <paths>] [--classpath <paths>] <main.class> [args...]
//
// --cp and --classpath are aliases, each a single platform-delimited
// path list; the main class is given in dot form and converted here to
// the internal slash form the Registry expects.
func ParseArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("gojvm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var cp, classpathFlag string
	fs.StringVar(&cp, "cp", "", "classpath (platform path-list separated)")
	fs.StringVar(&classpathFlag, "classpath", "", "classpath (platform path-list separated)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return nil, fmt.Errorf("usage: gojvm [--cp <paths>] [--classpath <paths>] <main.class> [args...]")
	}

	merged := cp
	if classpathFlag != "" {
		if merged != "" {
			merged += string(os.PathListSeparator)
		}
		merged += classpathFlag
	}

	var entries []string
	if merged != "" {
		entries = strings.Split(merged, string(os.PathListSeparator))
	}

	return &Config{
		ClasspathEntries: entries,
		MainClass:        strings.ReplaceAll(rest[0], ".", "/"),
		Args:             rest[1:],
	}, nil
}

// Run boots a VM over cfg's classpath and executes its main class,
// returning the process exit code: 0 on a normal return from main, 1
// on any error. An uncaught Java exception goes through
// reportUncaught's dispatch-then-fallback protocol (SPEC_FULL §6/§7);
// any other error is written to stderr in the teacher's "Error ...: %v\n"
// style.
func Run(cfg *Config) int {
	cp := classpath.New(cfg.ClasspathEntries)
	defer cp.Close()

	reg := classloader.NewRegistry(cp)
	it := interpreter.New(reg, gfunction.NewRegistry())

	if err := vmbootstrap.Boot(reg, it); err != nil {
		fmt.Fprintf(os.Stderr, "Error bootstrapping VM: %v\n", err)
		return 1
	}

	group, err := vmbootstrap.MainThreadGroup(reg, it)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error constructing main thread group: %v\n", err)
		return 1
	}
	thread, err := vmbootstrap.MainThread(reg, it, group)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error constructing main thread: %v\n", err)
		return 1
	}

	if err := it.ExecuteMain(cfg.MainClass, cfg.Args); err != nil {
		reportUncaught(it, thread, cfg.MainClass, err)
		return 1
	}
	return 0
}

// reportUncaught implements SPEC_FULL §6/§7's uncaught-exception
// protocol: dispatch the live Throwable to Thread.dispatchUncaughtException
// on the main thread exactly once; if that isn't available (no such
// method on the bootclasspath, or it itself fails) or err isn't a live
// Java exception at all, fall back to the exact
// "Name: <class>, detailMessage: <text>" diagnostic.
func reportUncaught(it *interpreter.Interpreter, thread *oop.Ref, mainClass string, err error) {
	thrown, ok := err.(*interpreter.Throw)
	if !ok || thrown.Ref == nil || thrown.Ref.Class == nil {
		fmt.Fprintf(os.Stderr, "Error executing %s: %v\n", mainClass, err)
		return
	}

	if thread != nil && thread.Class != nil {
		if method := thread.Class.FindMethod("dispatchUncaughtException", "(Ljava/lang/Throwable;)V"); method != nil {
			args := []oop.Value{oop.RefVal(thread), oop.RefVal(thrown.Ref)}
			if _, dispatchErr := it.InvokeMethod(thread.Class, method, args); dispatchErr == nil {
				return
			}
		}
	}

	msg, _ := interpreter.ThrowableMessage(thrown.Ref)
	fmt.Fprintf(os.Stderr, "Name: %s, detailMessage: %s\n", thrown.Ref.Class.Name, msg)
}
