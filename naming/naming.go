package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// TimestampLayout formats the {{timestamp}} variable.
const TimestampLayout = "200601021504"

// Vars are the values available to a name template.
type Vars struct {
	Time    time.Time
	Stem    string
	Parser  string
	Subject string
}

// NewVars builds Vars for a source file. The stem is the base name of
// source without its extension.
func NewVars(t time.Time, source, parser, subject string) Vars {
	base := filepath.Base(source)
	return Vars{
		Time:    t,
		Stem:    strings.TrimSuffix(base, filepath.Ext(base)),
		Parser:  parser,
		Subject: subject,
	}
}

func (v Vars) data() map[string]any {
	return map[string]any{
		"timestamp": v.Time.Format(TimestampLayout),
		"time":      v.Time,
		"stem":      v.Stem,
		"parser":    v.Parser,
		"subject":   v.Subject,
	}
}

// Namer renders file names from one compiled template.
// A Namer is safe for concurrent use.
type Namer struct {
	source string
	ext    string
	tmpl   *template.Template
}

// New compiles a name template. Names rendered without an extension get ext
// appended (ext may be empty).
func New(tmpl, ext string) (*Namer, error) {
	if strings.TrimSpace(tmpl) == "" {
		return nil, ErrEmpty
	}

	funcs := defaultFuncs()
	helpers := make(map[string]bool, len(funcs))
	for name := range funcs {
		helpers[name] = true
	}

	t, err := template.New("name").Funcs(funcs).Option("missingkey=error").Parse(convertSyntax(tmpl, helpers))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &Namer{source: tmpl, ext: ext, tmpl: t}, nil
}

// Name renders the file name for v.
func (n *Namer) Name(v Vars) (string, error) {
	var buf strings.Builder
	if err := n.tmpl.Execute(&buf, v.data()); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, err)
	}

	name := Sanitize(buf.String())
	if name == "" {
		return "", fmt.Errorf("%w: %q rendered nothing", ErrEmpty, n.source)
	}
	if n.ext != "" && filepath.Ext(name) == "" {
		name += n.ext
	}
	return name, nil
}

// Path renders the name for v under <dir>/<parser>/.
func (n *Namer) Path(dir string, v Vars) (string, error) {
	name, err := n.Name(v)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, Sanitize(v.Parser), name), nil
}

// Variables lists the variables the template references.
func (n *Namer) Variables() []string {
	funcs := defaultFuncs()
	helpers := make(map[string]bool, len(funcs))
	for name := range funcs {
		helpers[name] = true
	}
	return variables(n.source, helpers)
}
