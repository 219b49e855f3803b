// Package record defines the output rows produced by document parsers.
package record

// Record maps external field names to values. Records built through a
// FieldMap carry every mapped field; missing values are "".
type Record map[string]string

// Values returns the record's values in the order of names.
func (r Record) Values(names []string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = r[name]
	}
	return values
}

// Field pairs a parser's internal field name with its external column name.
type Field struct {
	Name     string
	External string
}

// FieldMap is the ordered list of fields a parser emits.
type FieldMap []Field

// Names returns the internal names in order.
func (m FieldMap) Names() []string {
	names := make([]string, len(m))
	for i, f := range m {
		names[i] = f.Name
	}
	return names
}

// External returns the external names in order. This is the column order
// used when records are written out.
func (m FieldMap) External() []string {
	names := make([]string, len(m))
	for i, f := range m {
		names[i] = f.External
	}
	return names
}

// Record renames values from internal to external names. Fields absent from
// values are set to ""; values not in the map are dropped.
func (m FieldMap) Record(values map[string]string) Record {
	r := make(Record, len(m))
	for _, f := range m {
		r[f.External] = values[f.Name]
	}
	return r
}

// FanOut builds one Record per repeating value. Every record copies shared
// and sets key to its own value; order follows values.
func (m FieldMap) FanOut(shared map[string]string, key string, values []string) []Record {
	records := make([]Record, 0, len(values))
	for _, v := range values {
		row := make(map[string]string, len(shared)+1)
		for k, s := range shared {
			row[k] = s
		}
		row[key] = v
		records = append(records, m.Record(row))
	}
	return records
}
