package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	radix "github.com/armon/go-radix"
)

// internalPrefix marks registry names that are implementation plumbing and
// must never be exposed as forwarded operations.
const internalPrefix = "_"

// sources is the declared member registry handed to the classifier: the
// pure ("forwards") member set, the blocking ("wraps") member set, the
// fixed operator name list with its bindings, and the names the facade
// defines explicitly by hand.
type sources struct {
	pure          map[string]PureFunc
	blocking      map[string]BlockingFunc
	operatorNames []string
	operators     map[string]OperatorFunc
	explicit      map[string]struct{}
}

// Table is the immutable classification result: one entry per forwarded
// operation name, each carrying exactly one calling convention. Built once
// per process, never mutated afterwards.
type Table struct {
	entries map[string]*Entry
	index   *radix.Tree
}

var (
	sharedOnce  sync.Once
	sharedTable *Table
)

// Shared returns the process-wide dispatch table, classifying the declared
// member registry on first use. Classification failures are fatal: the
// registry is internal and an unclassifiable member is a programming
// error, never a runtime condition.
func Shared() *Table {
	sharedOnce.Do(func() {
		sharedTable = newTable(declaredSources())
	})
	return sharedTable
}

// newTable runs the classifier over the given sources and builds the
// dispatch table. Each source member lands in exactly one strategy bucket;
// anything else aborts construction loudly.
func newTable(src sources) *Table {
	c := &classifier{
		asserts: assert.NewAssertHandler(),
		table: &Table{
			entries: make(map[string]*Entry, len(src.pure)+len(src.blocking)+len(src.operatorNames)),
			index:   radix.New(),
		},
	}

	c.classifyPure(src)
	c.classifyBlocking(src)
	c.classifyOperators(src)

	// Every classified entry must carry exactly the binding its strategy
	// demands; the classifier guarantees this, so a violation here means
	// the classifier itself is broken.
	c.asserts.Assert(context.Background(), c.table.consistent(),
		"dispatch table holds an entry without its strategy binding")

	slog.Debug("Dispatch table classified",
		"operations", len(c.table.entries),
		"operators", len(src.operatorNames))

	return c.table
}

// consistent reports whether every entry carries the one binding its
// strategy requires and none of the others.
func (t *Table) consistent() bool {
	for _, e := range t.entries {
		bindings := 0
		if e.pure != nil {
			bindings++
		}
		if e.blocking != nil {
			bindings++
		}
		if e.operator != nil {
			bindings++
		}
		if bindings != 1 {
			return false
		}
		switch e.strategy {
		case StrategyPure:
			if e.pure == nil {
				return false
			}
		case StrategyBlocking:
			if e.blocking == nil {
				return false
			}
		case StrategyOperator:
			if e.operator == nil {
				return false
			}
		}
	}
	return true
}

type classifier struct {
	asserts *assert.AssertHandler
	table   *Table
}

// classifyPure walks the non-blocking source and attaches a pure forward
// for every plain member, skipping internal and explicitly defined names.
func (c *classifier) classifyPure(src sources) {
	for name, fn := range src.pure {
		if c.skip(name, src) {
			continue
		}
		if fn == nil {
			c.fatal("pure member %q has no recognized shape", name)
		}
		c.attach(&Entry{name: name, strategy: StrategyPure, pure: fn})
	}
}

// classifyBlocking walks the I/O source and attaches a blocking forward
// for every plain member, with the same skip rules.
func (c *classifier) classifyBlocking(src sources) {
	for name, fn := range src.blocking {
		if c.skip(name, src) {
			continue
		}
		if fn == nil {
			c.fatal("blocking member %q has no recognized shape", name)
		}
		c.attach(&Entry{name: name, strategy: StrategyBlocking, blocking: fn})
	}
}

// classifyOperators attaches an operator forward for every name in the
// fixed operator list. Operator names are never skipped: the list is
// explicit, so a missing binding is a classification error.
func (c *classifier) classifyOperators(src sources) {
	for _, name := range src.operatorNames {
		fn, ok := src.operators[name]
		if !ok || fn == nil {
			c.fatal("operator %q is listed but not declared on the pure source", name)
		}
		c.attach(&Entry{name: name, strategy: StrategyOperator, operator: fn})
	}
	for name := range src.operators {
		if _, ok := c.table.entries[name]; !ok {
			c.fatal("operator %q is declared but missing from the operator name list", name)
		}
	}
}

// skip applies the classifier's exclusion rules: internal-prefixed names
// and names the facade already defines explicitly.
func (c *classifier) skip(name string, src sources) bool {
	if strings.HasPrefix(name, internalPrefix) {
		return true
	}
	_, ok := src.explicit[name]
	return ok
}

// attach records an entry, enforcing the exactly-one-bucket invariant.
func (c *classifier) attach(e *Entry) {
	if prev, ok := c.table.entries[e.name]; ok {
		c.fatal("member %q classified twice: %s and %s", e.name, prev.strategy, e.strategy)
	}
	c.table.entries[e.name] = e
	c.table.index.Insert(e.name, e)
}

// fatal aborts table construction. Classification errors are internal
// consistency failures and must never be silently skipped.
func (c *classifier) fatal(format string, args ...interface{}) {
	panic("dispatch: classification failed: " + fmt.Sprintf(format, args...))
}

// Lookup returns the entry for name, or ErrUnknownOperation if no
// classified member carries it.
func (t *Table) Lookup(name string) (*Entry, error) {
	e, ok := t.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return e, nil
}

// Len returns the number of classified operations.
func (t *Table) Len() int {
	return len(t.entries)
}

// Names returns all classified operation names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NamesWithPrefix returns the classified operation names sharing the given
// prefix, in radix walk order.
func (t *Table) NamesWithPrefix(prefix string) []string {
	var names []string
	t.index.WalkPrefix(prefix, func(name string, _ interface{}) bool {
		names = append(names, name)
		return false
	})
	return names
}
