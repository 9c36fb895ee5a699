// Package process composes and runs cargo command lines.
package process

import (
	"os"
	"os/exec"
	"os/signal"
	"strings"
)

// Builder accumulates the argument vector for one invocation. A Builder is
// cheap to clone; each package gets an independent copy seeded from the
// same base.
type Builder struct {
	bin  string
	args []string
}

// NewBuilder creates a builder for the given executable.
func NewBuilder(bin string, args ...string) *Builder {
	return &Builder{bin: bin, args: append([]string(nil), args...)}
}

// Clone returns an independent copy. Appending to the copy never affects
// the receiver.
func (b *Builder) Clone() *Builder {
	return &Builder{bin: b.bin, args: append([]string(nil), b.args...)}
}

// Arg appends a single argument.
func (b *Builder) Arg(a string) *Builder {
	b.args = append(b.args, a)
	return b
}

// Args appends several arguments.
func (b *Builder) Args(args ...string) *Builder {
	b.args = append(b.args, args...)
	return b
}

// Bin returns the executable path.
func (b *Builder) Bin() string { return b.bin }

// ArgList returns a copy of the accumulated arguments.
func (b *Builder) ArgList() []string {
	return append([]string(nil), b.args...)
}

// String renders the command line for progress and error messages.
func (b *Builder) String() string {
	return "`" + strings.Join(append([]string{b.bin}, b.args...), " ") + "`"
}

// Runner executes a composed command line. It is an opaque capability so
// tests can record invocations without spawning processes.
type Runner interface {
	Run(bin string, args []string) error
}

// ExecRunner runs commands with the parent's standard streams attached.
type ExecRunner struct{}

// Run blocks until the command exits. Interrupts are left to the child:
// the parent swallows SIGINT for the duration so deferred manifest
// restoration still runs after the child dies.
func (ExecRunner) Run(bin string, args []string) error {
	cmd := exec.Command(bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	return cmd.Run()
}
