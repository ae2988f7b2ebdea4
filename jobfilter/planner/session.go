package planner

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jobboard/jobfilter/jobfilter/schema"
)

// Dropped records a clause that compiled to nothing.
type Dropped struct {
	Expr   string `json:"expression"`
	Reason string `json:"reason"`
}

type memoEntry struct {
	attr schema.Attribute
	ok   bool
}

// Session is the state of one compilation: the request context, the logger
// warnings go to and a memo of attribute lookups. A Session is not safe for
// concurrent use; the registry and compilers it runs through are.
type Session struct {
	ctx     context.Context
	log     logrus.FieldLogger
	attrs   schema.AttributeLookup
	memo    map[string]memoEntry
	steps   []string
	dropped []Dropped
}

// NewSession starts a compilation. attrs may be nil, in which case every
// attribute reference is unknown.
func NewSession(ctx context.Context, log logrus.FieldLogger, attrs schema.AttributeLookup) *Session {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		ctx:   ctx,
		log:   log,
		attrs: attrs,
		memo:  make(map[string]memoEntry),
	}
}

func (s *Session) Context() context.Context { return s.ctx }
func (s *Session) Log() logrus.FieldLogger  { return s.log }

// Steps describes what the compilation did, one line per clause.
func (s *Session) Steps() []string { return append([]string(nil), s.steps...) }

// Dropped lists the clauses that compiled to nothing.
func (s *Session) Dropped() []Dropped { return append([]Dropped(nil), s.dropped...) }

func (s *Session) step(format string, args ...any) {
	s.steps = append(s.steps, fmt.Sprintf(format, args...))
}

// Attribute resolves an attribute by name once per session. Lookup failures
// are logged and treated as unknown.
func (s *Session) Attribute(name string) (schema.Attribute, bool) {
	if e, ok := s.memo[name]; ok {
		return e.attr, e.ok
	}
	if s.attrs == nil {
		s.memo[name] = memoEntry{}
		return schema.Attribute{}, false
	}

	attr, ok, err := s.attrs.FindByName(s.ctx, name)
	if err != nil {
		s.log.WithError(err).WithField("attribute", name).Error("attribute lookup failed")
		ok = false
	}
	s.memo[name] = memoEntry{attr: attr, ok: ok}
	return attr, ok
}

// drop logs a clause that is being discarded.
func (s *Session) drop(expr, reason string, fields logrus.Fields) {
	s.dropped = append(s.dropped, Dropped{Expr: expr, Reason: reason})
	s.step("drop %q: %s", expr, reason)
	s.log.WithFields(fields).WithField("expression", expr).Warn("filter clause dropped: " + reason)
}
