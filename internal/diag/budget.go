package diag

import (
	"errors"
	"fmt"
	"sync"

	"c2c/internal/source"
)

// DefaultMaxErrors is the error ceiling of a compiler instance.
const DefaultMaxErrors = 5

// Abort is the panic value used to unwind a compiler instance after a fatal
// diagnostic or once the error ceiling is reached. It must only be recovered by
// Catch (the compiler instance and its worker goroutines).
type Abort struct {
	Code     Code
	Reason   string
	ExitCode int
}

func (a *Abort) Error() string {
	if a == nil {
		return "<nil>"
	}
	if a.Reason == "" {
		return "compilation aborted"
	}
	return "compilation aborted: " + a.Reason
}

// AsAbort unwraps err into an *Abort when it carries one.
func AsAbort(err error) (*Abort, bool) {
	var a *Abort
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}

// Catch runs fn and converts an Abort panic into a returned value.
// Any other panic is propagated.
func Catch(fn func()) (abort *Abort) {
	defer func() {
		if r := recover(); r != nil {
			if a, ok := r.(*Abort); ok {
				abort = a
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

// Budget gates diagnostics by verbosity and enforces the error ceiling.
//
// Verbosity: messages need verbosity >= 1, warnings are dropped below 0.
// The error that brings the count to the ceiling is still forwarded, then the
// instance aborts; fatal diagnostics abort immediately.
type Budget struct {
	mu        sync.Mutex
	next      Reporter
	maxErrors int
	verbosity int
	errors    int
	warnings  int
	aborted   *Abort
}

func NewBudget(next Reporter, maxErrors, verbosity int) *Budget {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	return &Budget{next: next, maxErrors: maxErrors, verbosity: verbosity}
}

func (b *Budget) Report(code Code, sev Severity, primary source.Loc, msg string, notes []Note) {
	b.mu.Lock()
	if b.aborted != nil {
		// другой воркер уже остановил инстанс
		abort := b.aborted
		b.mu.Unlock()
		panic(abort)
	}
	switch sev {
	case SevMessage:
		if b.verbosity < 1 {
			b.mu.Unlock()
			return
		}
	case SevWarning:
		if b.verbosity < 0 {
			b.mu.Unlock()
			return
		}
		b.warnings++
	case SevError:
		b.errors++
	}
	if b.next != nil {
		b.next.Report(code, sev, primary, msg, notes)
	}

	var abort *Abort
	switch {
	case sev == SevFatal:
		abort = &Abort{Code: code, Reason: msg, ExitCode: 1}
	case sev == SevError && b.errors >= b.maxErrors:
		abort = &Abort{Code: TooManyErrors, Reason: fmt.Sprintf("too many errors (%d)", b.errors), ExitCode: 1}
	}
	if abort != nil {
		b.aborted = abort
		b.mu.Unlock()
		panic(abort)
	}
	b.mu.Unlock()
}

// Errors reports the number of recoverable errors seen so far.
func (b *Budget) Errors() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errors
}

// Warnings reports the number of forwarded warnings.
func (b *Budget) Warnings() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.warnings
}

// Aborted returns the abort that stopped the instance, if any.
func (b *Budget) Aborted() *Abort {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.aborted
}

// ExitIfErrors aborts when at least one error is pending.
func (b *Budget) ExitIfErrors() {
	b.mu.Lock()
	n := b.errors
	b.mu.Unlock()
	if n > 0 {
		panic(&Abort{Code: FatalError, Reason: fmt.Sprintf("%d error(s) pending", n), ExitCode: 1})
	}
}
