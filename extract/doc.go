// Package extract pulls single values and value lists out of document text.
//
// Core types:
//   - Value: the result of one extraction, either found or not found
//   - Scalar: anything that extracts a Value from text
//   - Capture: a compiled regular expression with one capture group
//   - Repeating: a capture whose match is split into a list
//
// Example usage:
//
//	po := extract.MustCapture(`CTM ORDER NO\.\s*(\S+)`, 1)
//	if v, ok := po.Extract(text).Get(); ok {
//	    fmt.Println("order", v)
//	}
//
//	wafers := extract.MustRepeating(`Wafer ID:\s*#?\s*((?:\d+,)*\d+)`, 1, ",")
//	for _, id := range wafers.Extract(text) {
//	    fmt.Println("wafer", id)
//	}
//
// A Value stays explicit about absence until the caller turns it into a
// record field with OrEmpty.
package extract
