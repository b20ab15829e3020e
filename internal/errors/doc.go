// Package errors provides structured, actionable error messages for mote.
//
// The errors package implements a comprehensive error system that:
//   - Shows exact source locations (file, line, column)
//   - Explains what went wrong in plain language
//   - Suggests how to fix issues with code examples
//   - Links to documentation for deeper understanding
//
// # Error Categories
//
// Errors are organized into categories:
//   - protocol: Wire protocol errors (invalid frames, version mismatches)
//   - bridge: Session errors (expired sessions, operation timeouts)
//   - snapshot: Snapshot store errors (missing hashes, write failures)
//   - config: Configuration errors (invalid mote.json, bad port numbers)
//   - cli: Command-line errors (missing files, not a mote project)
//
// # Error Codes
//
// Each error has a unique code (e.g., "E120") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("E120").
//	    WithLocation("mote.json", 7, 17).
//	    WithSuggestion("Remove the trailing comma after the last field")
//
//	fmt.Println(err.Format())
//	// Output:
//	// error[E120]: Invalid mote.json
//	//
//	//   mote.json:7:17
//	//
//	//     5 │   "server": {
//	//     6 │     "host": "localhost",
//	//   → 7 │     "port": 8080,
//	//       │                 ^
//	//     8 │   }
//	//     9 │ }
//	//
//	//   The configuration file contains invalid JSON.
//	//
//	//   Hint: Remove the trailing comma after the last field
//	//
//	//   Learn more: https://mote.dev/docs/errors/E120
package errors
