package args

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// group is one tier of options. It extracts the flags it knows from a token
// list and hands every other token back, in order, for the next tier.
type group struct {
	name string
	fs   *pflag.FlagSet
}

func newGroup(name string) *group {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return &group{name: name, fs: fs}
}

// parseKnown parses the tokens naming flags of g and returns the rest.
// Only long options ("--name", "--name=value") are recognised; a value is
// taken from the next token unless the flag needs none; a next token that is
// itself a long option does not count as a value. Everything from a
// bare "--" onwards is passed through untouched.
func (g *group) parseKnown(raw []string) ([]string, error) {
	var known []string
	rest := []string{}
	for i := 0; i < len(raw); i++ {
		tok := raw[i]
		if tok == "--" {
			rest = append(rest, raw[i:]...)
			break
		}
		name, inline := longName(tok)
		f := g.fs.Lookup(name)
		if name == "" || f == nil {
			rest = append(rest, tok)
			continue
		}
		known = append(known, tok)
		if inline || f.NoOptDefVal != "" {
			continue
		}
		if i+1 >= len(raw) || strings.HasPrefix(raw[i+1], "--") {
			return nil, usageError{group: g.name, err: fmt.Errorf("flag needs an argument: --%s", name)}
		}
		i++
		known = append(known, raw[i])
	}
	if err := g.fs.Parse(known); err != nil {
		return nil, usageError{group: g.name, err: err}
	}
	return rest, nil
}

func longName(tok string) (name string, inline bool) {
	if !strings.HasPrefix(tok, "--") || len(tok) == 2 {
		return "", false
	}
	name = tok[2:]
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true
	}
	return name, false
}

// enum registers a string flag restricted to choices.
func (g *group) enum(p *string, name, def string, choices []string, usage string) {
	*p = def
	g.fs.Var(&enumValue{p: p, choices: choices}, name, fmt.Sprintf("%s {%s}", usage, strings.Join(choices, ",")))
}

// truth registers a flag that takes an explicit true/false style value.
func (g *group) truth(p *bool, name string, def bool, usage string) {
	*p = def
	g.fs.Var(&truthValue{p: p}, name, usage)
}

// boolPair registers --name and --no-name writing the same destination.
func (g *group) boolPair(p *bool, name string, def bool, usage string) {
	g.fs.BoolVar(p, name, def, usage)
	g.fs.Var(&negatedBool{p: p}, "no-"+name, "disable --"+name)
	g.fs.Lookup("no-" + name).NoOptDefVal = "true"
}

type enumValue struct {
	p       *string
	choices []string
}

func (e *enumValue) Set(s string) error {
	if !slices.Contains(e.choices, s) {
		return fmt.Errorf("invalid choice: %q (choose from %s)", s, strings.Join(e.choices, ", "))
	}
	*e.p = s
	return nil
}

func (e *enumValue) String() string {
	if e.p == nil {
		return ""
	}
	return *e.p
}

func (e *enumValue) Type() string { return "choice" }

// truthValue accepts the usual spellings: y/yes/t/true/on/1 and
// n/no/f/false/off/0.
type truthValue struct{ p *bool }

func (t *truthValue) Set(s string) error {
	v, err := parseTruth(s)
	if err != nil {
		return err
	}
	*t.p = v
	return nil
}

func (t *truthValue) String() string {
	if t.p == nil {
		return "false"
	}
	if *t.p {
		return "true"
	}
	return "false"
}

func (t *truthValue) Type() string { return "truth" }

func parseTruth(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid truth value %q", s)
}

type negatedBool struct{ p *bool }

func (n *negatedBool) Set(s string) error {
	v, err := parseTruth(s)
	if err != nil {
		return err
	}
	*n.p = !v
	return nil
}

func (n *negatedBool) String() string { return "false" }
func (n *negatedBool) Type() string   { return "bool" }
