// Package rules builds document parsers from YAML rule files.
//
// A rule file describes what the packing list parser hard-codes: the table
// detector, literal and regex-captured values, values cut from a table cell,
// and the repeating value that fans a document out into records.
//
//	name: PackageList2
//	table:
//	  pattern: '^(\S+\s*)?Item'
//	literals:
//	  DF_Code: DF_SH
//	captures:
//	  PO_No: {pattern: 'CTM ORDER NO\.\s*(\S+)', group: 1}
//	columns:
//	  Device: {column: 1, split: /, part: 1}
//	characters:
//	  Lot_Type: {from: PO_No, index: 4}
//	repeat: {field: Wafer_ID, pattern: 'Wafer ID:\s*#?\s*((?:\d+,)*\d+)', group: 1, split: ','}
//	fields:
//	  - {name: PO_No, external: PO No}
//	  - Wafer_ID
//
// LoadDir compiles every rule file in a directory and registers the result
// with the parser registry.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRule indicates a rule file that cannot be compiled.
var ErrInvalidRule = errors.New("invalid rule")

// Rule is the YAML form of a config-defined parser.
type Rule struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Table      TableRule                `yaml:"table" json:"table"`
	Literals   map[string]string        `yaml:"literals,omitempty" json:"literals,omitempty"`
	Captures   map[string]CaptureRule   `yaml:"captures,omitempty" json:"captures,omitempty"`
	Columns    map[string]ColumnRule    `yaml:"columns,omitempty" json:"columns,omitempty"`
	Characters map[string]CharacterRule `yaml:"characters,omitempty" json:"characters,omitempty"`
	Repeat     *RepeatRule              `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Fields     []FieldSpec              `yaml:"fields" json:"fields"`

	// Path is the file the rule was read from.
	Path string `yaml:"-" json:"path,omitempty"`
}

// TableRule selects the table detector. Exactly one of Prefix and Pattern
// is set; an empty TableRule means the rule reads no table.
type TableRule struct {
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// CaptureRule extracts a value with a regular expression. TrimPrefix and
// Remove clean up the captured text; Default is used when nothing matches.
type CaptureRule struct {
	Pattern    string `yaml:"pattern" json:"pattern"`
	Group      int    `yaml:"group" json:"group"`
	TrimPrefix string `yaml:"trim_prefix,omitempty" json:"trim_prefix,omitempty"`
	Remove     string `yaml:"remove,omitempty" json:"remove,omitempty"`
	Default    string `yaml:"default,omitempty" json:"default,omitempty"`
}

// ColumnRule cuts a value out of a table cell.
type ColumnRule struct {
	Row    int    `yaml:"row,omitempty" json:"row,omitempty"`
	Column int    `yaml:"column" json:"column"`
	Split  string `yaml:"split,omitempty" json:"split,omitempty"`
	Part   int    `yaml:"part,omitempty" json:"part,omitempty"`
}

// CharacterRule takes one character of another field.
type CharacterRule struct {
	From  string `yaml:"from" json:"from"`
	Index int    `yaml:"index" json:"index"`
}

// RepeatRule extracts the list that fans a document out into records.
type RepeatRule struct {
	Field   string `yaml:"field" json:"field"`
	Pattern string `yaml:"pattern" json:"pattern"`
	Group   int    `yaml:"group" json:"group"`
	Split   string `yaml:"split" json:"split"`
}

// FieldSpec names one output field. In YAML it is either a plain string,
// used as both names, or a {name, external} mapping.
type FieldSpec struct {
	Name     string `yaml:"name" json:"name"`
	External string `yaml:"external,omitempty" json:"external,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler to handle both forms.
func (f *FieldSpec) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err == nil {
		*f = FieldSpec{Name: name}
		return nil
	}

	type plain FieldSpec
	var p plain
	if err := value.Decode(&p); err != nil {
		return errors.New("field must be a name or a {name, external} mapping")
	}
	*f = FieldSpec(p)
	return nil
}

// Parse decodes a rule from YAML.
func Parse(data []byte) (*Rule, error) {
	var r Rule
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse rule: %w", err)
	}
	return &r, nil
}

// Validate checks that the rule has a name, a well-formed table selector and
// that every value it extracts is declared in fields.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	}
	if r.Table.Prefix != "" && r.Table.Pattern != "" {
		return fmt.Errorf("%w: %s: table takes prefix or pattern, not both", ErrInvalidRule, r.Name)
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("%w: %s: fields are required", ErrInvalidRule, r.Name)
	}

	declared := make(map[string]bool, len(r.Fields))
	for _, f := range r.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s: field without name", ErrInvalidRule, r.Name)
		}
		if declared[f.Name] {
			return fmt.Errorf("%w: %s: field %q declared twice", ErrInvalidRule, r.Name, f.Name)
		}
		declared[f.Name] = true
	}

	var used []string
	for name := range r.Literals {
		used = append(used, name)
	}
	for name := range r.Captures {
		used = append(used, name)
	}
	for name, c := range r.Columns {
		used = append(used, name)
		if c.Row < 0 || c.Column < 0 || c.Part < 0 {
			return fmt.Errorf("%w: %s: column %q: negative index", ErrInvalidRule, r.Name, name)
		}
	}
	if len(r.Columns) > 0 && r.Table.Prefix == "" && r.Table.Pattern == "" {
		return fmt.Errorf("%w: %s: columns need a table prefix or pattern", ErrInvalidRule, r.Name)
	}
	for name, c := range r.Characters {
		if _, chained := r.Characters[c.From]; chained {
			return fmt.Errorf("%w: %s: character %q reads character field %q", ErrInvalidRule, r.Name, name, c.From)
		}
		used = append(used, name, c.From)
	}
	if r.Repeat != nil {
		used = append(used, r.Repeat.Field)
	}
	for _, name := range used {
		if !declared[name] {
			return fmt.Errorf("%w: %s: field %q not declared in fields", ErrInvalidRule, r.Name, name)
		}
	}
	return nil
}
