package host

import (
	"encoding/json"
	"fmt"

	"github.com/viant/sqlite-bind/value"
)

// HandleRequest decodes a Request, runs it and encodes the Response.
// Operational failures travel in the response's error field; the returned
// error is reserved for payloads that cannot be encoded at all.
func (h *Host) HandleRequest(payload []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return marshalErrorResponse(fmt.Sprintf("failed to unmarshal request: %v", err))
	}
	result, err := h.dispatch(&req)
	if err != nil {
		return marshalErrorResponse(err.Error())
	}
	return json.Marshal(Response{Result: result})
}

func marshalErrorResponse(msg string) ([]byte, error) {
	payload, err := json.Marshal(Response{Error: msg})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error response for %q: %w", msg, err)
	}
	return payload, nil
}

// nullIfEmpty maps the empty-string sentinel to JSON null.
func nullIfEmpty(s string, err error) (interface{}, error) {
	if err != nil || s == "" {
		return nil, err
	}
	return s, nil
}

func (h *Host) dispatch(req *Request) (interface{}, error) {
	switch req.Op {
	case "open":
		return h.Open(req.Name)
	case "exec":
		return h.Exec(req.DB, req.SQL)
	case "prepare":
		return nullIfEmpty(h.Prepare(req.DB, req.SQL))
	case "last_insert_rowid":
		return h.LastInsertRowID(req.DB)
	case "errmsg":
		return h.ErrorMessage(req.DB)
	case "close":
		return nil, h.Close(req.DB)
	case "bind":
		v := value.Null()
		if req.Value != nil {
			v = *req.Value
		}
		return h.Bind(req.Stmt, req.Index, v)
	case "step":
		return nullIfEmpty(h.Step(req.Stmt))
	case "column_value":
		return h.ColumnValue(req.Stmt, req.Index)
	case "column_text":
		return h.ColumnText(req.Stmt, req.Index)
	case "column_name":
		return h.ColumnName(req.Stmt, req.Index)
	case "column_count":
		return h.ColumnCount(req.Stmt)
	case "bind_parameter_count":
		return h.BindParameterCount(req.Stmt)
	case "bind_parameter_name":
		return h.BindParameterName(req.Stmt, req.Index)
	case "bind_parameter_index":
		return h.BindParameterIndex(req.Stmt, req.Name)
	case "reset":
		return h.Reset(req.Stmt)
	case "clear_bindings":
		return h.ClearBindings(req.Stmt)
	case "finalize":
		return h.Finalize(req.Stmt)
	case "release":
		handle := req.Stmt
		if handle == "" {
			handle = req.DB
		}
		return nil, h.Release(handle)
	}
	return nil, fmt.Errorf("unknown op: %s", req.Op)
}
