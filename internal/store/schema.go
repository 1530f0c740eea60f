package store

// schemaSQL defines the export schema.
// Tables:
//   - methods: one row per indexed method with its facts
//   - calls: resolved call edges
//   - candidates: the ranked selection with its score breakdown
//   - run_meta: key/value description of the run
const schemaSQL = `
CREATE TABLE IF NOT EXISTS methods (
    id TEXT PRIMARY KEY,
    class_name TEXT NOT NULL,
    name TEXT NOT NULL,
    signature TEXT NOT NULL,
    file TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    statements INTEGER NOT NULL,
    branches INTEGER NOT NULL,
    loops INTEGER NOT NULL,
    catches INTEGER NOT NULL,
    returns INTEGER NOT NULL,
    complexity INTEGER NOT NULL,
    fan_in INTEGER NOT NULL,
    fan_out INTEGER NOT NULL,
    recursive INTEGER NOT NULL DEFAULT 0,
    test_refs INTEGER NOT NULL DEFAULT 0,
    test_files INTEGER NOT NULL DEFAULT 0,
    generated INTEGER NOT NULL DEFAULT 0,
    entry_point INTEGER NOT NULL DEFAULT 0,
    accessor INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS calls (
    caller TEXT NOT NULL REFERENCES methods(id),
    callee TEXT NOT NULL REFERENCES methods(id),
    PRIMARY KEY (caller, callee)
);

CREATE TABLE IF NOT EXISTS candidates (
    rank INTEGER PRIMARY KEY,
    method_id TEXT NOT NULL UNIQUE REFERENCES methods(id),
    composite REAL NOT NULL,
    heuristic REAL NOT NULL,
    complexity REAL NOT NULL,
    dependency REAL NOT NULL,
    test_signal REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS run_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_methods_class ON methods(class_name);
CREATE INDEX IF NOT EXISTS idx_calls_callee ON calls(callee);
`

// initSchema creates the database tables and indexes if they don't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
