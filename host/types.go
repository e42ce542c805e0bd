package host

import "github.com/viant/sqlite-bind/value"

// Request is one call on the object table. Op names the method in the
// script's spelling (for example "prepare" or "bind_parameter_index"); the
// other fields are its arguments.
type Request struct {
	Op    string       `json:"op"`
	DB    string       `json:"db,omitempty"`
	Stmt  string       `json:"stmt,omitempty"`
	SQL   string       `json:"sql,omitempty"`
	Name  string       `json:"name,omitempty"`
	Index int          `json:"index,omitempty"`
	Value *value.Value `json:"value,omitempty"`
}

// Response carries the method result, or the error message when the call
// failed. A null result is a legitimate answer for prepare and step.
type Response struct {
	Result interface{} `json:"result"`
	Error  string      `json:"error,omitempty"`
}
