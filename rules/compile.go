package rules

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/randalmurphal/shipdoc/extract"
	"github.com/randalmurphal/shipdoc/logging"
	"github.com/randalmurphal/shipdoc/parser"
	"github.com/randalmurphal/shipdoc/record"
	"github.com/randalmurphal/shipdoc/table"
)

// Parser is a compiled rule. It implements parser.Parser and holds no
// mutable state.
type Parser struct {
	name       string
	fields     record.FieldMap
	detector   table.Detector
	scalars    map[string]extract.Scalar
	columns    map[string]ColumnRule
	characters map[string]CharacterRule
	defaults   map[string]string
	repeatKey  string
	repeat     *extract.Repeating
}

var _ parser.Parser = (*Parser)(nil)

// Compile validates r and compiles its expressions.
func Compile(r *Rule) (*Parser, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	p := &Parser{
		name:       r.Name,
		scalars:    make(map[string]extract.Scalar, len(r.Literals)+len(r.Captures)),
		columns:    r.Columns,
		characters: r.Characters,
		defaults:   make(map[string]string),
	}

	for _, f := range r.Fields {
		external := f.External
		if external == "" {
			external = f.Name
		}
		p.fields = append(p.fields, record.Field{Name: f.Name, External: external})
	}

	switch {
	case r.Table.Prefix != "":
		p.detector = table.Prefix(r.Table.Prefix)
	case r.Table.Pattern != "":
		re, err := regexp.Compile(r.Table.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: table pattern: %v", ErrInvalidRule, r.Name, err)
		}
		p.detector = table.Pattern(re)
	}

	for name, v := range r.Literals {
		p.scalars[name] = extract.Literal(v)
	}
	for name, c := range r.Captures {
		var post []extract.Transform
		if c.TrimPrefix != "" {
			post = append(post, extract.TrimPrefix(c.TrimPrefix))
		}
		if c.Remove != "" {
			post = append(post, extract.Remove(c.Remove))
		}
		if c.Default != "" {
			p.defaults[name] = c.Default
		}
		capture, err := extract.NewCapture(c.Pattern, c.Group, post...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: capture %q: %v", ErrInvalidRule, r.Name, name, err)
		}
		p.scalars[name] = capture
	}

	if r.Repeat != nil {
		sep := r.Repeat.Split
		if sep == "" {
			sep = ","
		}
		rep, err := extract.NewRepeating(r.Repeat.Pattern, r.Repeat.Group, sep)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: repeat: %v", ErrInvalidRule, r.Name, err)
		}
		p.repeatKey = r.Repeat.Field
		p.repeat = rep
	}

	return p, nil
}

// Name implements parser.Parser.
func (p *Parser) Name() string { return p.name }

// Fields implements parser.Parser.
func (p *Parser) Fields() record.FieldMap { return p.fields }

// Run implements parser.Parser. With a repeat rule the document yields one
// record per repeating value; without one it yields a single record.
func (p *Parser) Run(ctx context.Context, text string) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, parser.NewError(p.name, "run", err)
	}
	log := logging.FromContext(ctx).With(slog.String("parser", p.name))

	values := make(map[string]extract.Value, len(p.fields))
	for name, s := range p.scalars {
		values[name] = s.Extract(text)
	}

	if p.detector != nil {
		info, _ := table.Extract(ctx, strings.Split(text, "\n"), p.detector, 0)
		t := table.Format(ctx, info)
		for name, c := range p.columns {
			cell := t.Cell(c.Row, c.Column)
			switch {
			case c.Row >= len(t.Rows):
				values[name] = extract.NotFound()
			case c.Split == "":
				values[name] = extract.Found(cell)
			default:
				values[name] = extract.Part(cell, c.Split, c.Part)
			}
		}
	}

	for name, c := range p.characters {
		values[name] = extract.NotFound()
		if from, ok := values[c.From].Get(); ok {
			values[name] = extract.Rune(from, c.Index)
		}
	}

	shared := make(map[string]string, len(values))
	for _, name := range p.fields.Names() {
		v, ok := values[name]
		if !ok {
			continue
		}
		if !v.OK() {
			log.Debug("field not found", slog.String("field", name))
		}
		shared[name] = v.Or(p.defaults[name])
	}

	if p.repeat == nil {
		return []record.Record{p.fields.Record(shared)}, nil
	}
	return p.fields.FanOut(shared, p.repeatKey, p.repeat.Extract(text)), nil
}
