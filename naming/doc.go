// Package naming renders output file names from short templates.
//
// Templates use a Handlebars-like syntax that is converted to text/template
// before execution:
//
//	{{timestamp}}_{{stem}}.xlsx
//	{{#if subject}}{{sanitize subject}}_{{/if}}{{stem}}.xlsx
//	{{date time "20060102"}}/{{lower parser}}-{{stem}}.xlsx
//
// # Variables
//
// Vars supplies the values a template can reference:
//
//   - timestamp: the run time as YYYYmmddHHMM
//   - time: the run time itself, for use with date
//   - stem: the source file name without directory and extension
//   - parser: the parser name
//   - subject: the mail subject, empty for local files
//
// # Built-in Functions
//
//   - upper, lower, trim: case and space
//   - replace(s, old, new string) string
//   - truncate(s string, n int) string: keep at most n characters
//   - default(val, def any) any: def when val is empty
//   - date(t time.Time, layout string) string
//   - sanitize(s string) string: replace characters that are unsafe in file names
//
// The rendered name is always sanitized; path separators in it are replaced,
// so a template cannot escape the output directory.
package naming
