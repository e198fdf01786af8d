package remote

import (
	"context"
)

// mockDB is a function-field database.Database double. Every call is
// recorded so tests can assert on the query text and bound variables.
type mockDB struct {
	queryFn    func(query string, vars map[string]interface{}) ([]interface{}, error)
	queryOneFn func(query string, vars map[string]interface{}) (interface{}, error)
	executeFn  func(query string, vars map[string]interface{}) error
	calls      []dbCall
}

type dbCall struct {
	method string
	query  string
	vars   map[string]interface{}
}

func (m *mockDB) Connect(ctx context.Context) error { return nil }
func (m *mockDB) Close() error                      { return nil }
func (m *mockDB) Ping(ctx context.Context) error    { return nil }

func (m *mockDB) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	m.calls = append(m.calls, dbCall{"Query", query, vars})
	if m.queryFn == nil {
		return nil, nil
	}
	return m.queryFn(query, vars)
}

func (m *mockDB) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	m.calls = append(m.calls, dbCall{"QueryOne", query, vars})
	if m.queryOneFn == nil {
		return nil, nil
	}
	return m.queryOneFn(query, vars)
}

func (m *mockDB) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	m.calls = append(m.calls, dbCall{"Execute", query, vars})
	if m.executeFn == nil {
		return nil
	}
	return m.executeFn(query, vars)
}

func (m *mockDB) callsTo(method string) []dbCall {
	out := make([]dbCall, 0)
	for _, c := range m.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

// queryResults wraps rows the way the driver reports one statement's output.
func queryResults(rows ...interface{}) []interface{} {
	return []interface{}{map[string]interface{}{"result": rows}}
}

func profileRow(id, nickname, status, email, passwordHash string) map[string]interface{} {
	return map[string]interface{}{
		"id":       "profiles:" + id,
		"nickname": nickname,
		"role":     "USER",
		"status":   status,
		"account": map[string]interface{}{
			"email":         email,
			"password_hash": passwordHash,
		},
	}
}
