// Package jsonv implements a closed value model of JSON data.
//
// Every JSON document is represented by one of six concrete types: Null, Bool,
// Number, String, Array and *Object. Objects remember the order in which their keys
// were first assigned, so a document parsed with Parse and written with Marshal keeps
// its key order.
//
// Marshal writes the compact form JavaScript's JSON.stringify produces: no HTML
// escaping, numbers in the shortest round-trip notation and non-finite numbers as null.
//
// Example usage:
//
//	obj := jsonv.NewObject()
//	obj.Set("name", jsonv.String("Steve"))
//	obj.Set("level", jsonv.Number(3))
//	text := jsonv.Marshal(obj) // {"name":"Steve","level":3}
//
//	v, err := jsonv.Parse(text)
package jsonv
