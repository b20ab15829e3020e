// Package strutil provides the string helpers behind mote's class and
// templating operations.
//
// Class attributes are treated as whitespace-delimited token lists. The
// token functions are pure: they take a list string and return a new one,
// leaving attribute reads and writes to the caller.
//
// # Token Lists
//
//	strutil.AddToken("btn", "active")      // "btn active"
//	strutil.RemoveToken("a foo foo b", "foo") // "a b"
//	strutil.HasToken("btn active", "act")  // false, exact tokens only
//
// # Templating
//
// Template performs {{key}} substitution from a map. Missing keys
// substitute the empty string:
//
//	strutil.Template("Hi {{name}}", map[string]string{"name": "Sam"}) // "Hi Sam"
//	strutil.Template("Hi {{x}}", nil)                                 // "Hi "
package strutil
