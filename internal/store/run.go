package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/tdkit/tdselect/internal/model"
	"github.com/tdkit/tdselect/internal/rank"
)

// RunMeta describes the run that produced the export.
type RunMeta struct {
	Input           string
	Mode            string
	Top             int
	TotalCandidates int
	Fingerprint     string
	Version         string
	Warnings        []string
}

func (m RunMeta) pairs() [][2]string {
	return [][2]string{
		{"input", m.Input},
		{"mode", m.Mode},
		{"top", strconv.Itoa(m.Top)},
		{"total_candidates", strconv.Itoa(m.TotalCandidates)},
		{"fingerprint", m.Fingerprint},
		{"version", m.Version},
		{"warnings", strings.Join(m.Warnings, "\n")},
	}
}

// SaveRun writes the project, the candidates and the run metadata in one
// transaction.
func (s *Store) SaveRun(p *model.Project, candidates []rank.Candidate, meta RunMeta) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := saveMethods(tx, p); err != nil {
		tx.Rollback()
		return err
	}
	if err := saveCalls(tx, p); err != nil {
		tx.Rollback()
		return err
	}
	if err := saveCandidates(tx, candidates); err != nil {
		tx.Rollback()
		return err
	}
	if err := saveMeta(tx, meta); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func saveMethods(tx *sql.Tx, p *model.Project) error {
	stmt, err := tx.Prepare(`
		INSERT INTO methods (id, class_name, name, signature, file, start_line, end_line,
			statements, branches, loops, catches, returns, complexity, fan_in, fan_out,
			recursive, test_refs, test_files, generated, entry_point, accessor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare methods: %w", err)
	}
	defer stmt.Close()

	for _, m := range p.Methods() {
		_, err := stmt.Exec(m.ID, m.ClassName, m.Name, m.Signature, m.File, m.StartLine, m.EndLine,
			m.StatementCount, m.BranchCount, m.LoopCount, m.CatchCount, m.ReturnCount, m.Complexity(),
			m.FanIn(), m.FanOut(), boolInt(m.Recursive), m.TestReferences, m.TestFiles,
			boolInt(m.Modifiers.Generated), boolInt(m.IsEntryPoint), boolInt(m.IsAccessor))
		if err != nil {
			return fmt.Errorf("save method %s: %w", m.ID, err)
		}
	}
	return nil
}

func saveCalls(tx *sql.Tx, p *model.Project) error {
	stmt, err := tx.Prepare("INSERT INTO calls (caller, callee) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare calls: %w", err)
	}
	defer stmt.Close()

	for _, id := range p.IDs() {
		for _, callee := range p.Calls(id) {
			if _, err := stmt.Exec(id, callee); err != nil {
				return fmt.Errorf("save call %s -> %s: %w", id, callee, err)
			}
		}
	}
	return nil
}

func saveCandidates(tx *sql.Tx, candidates []rank.Candidate) error {
	stmt, err := tx.Prepare(`
		INSERT INTO candidates (rank, method_id, composite, heuristic, complexity, dependency, test_signal)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare candidates: %w", err)
	}
	defer stmt.Close()

	for _, c := range candidates {
		_, err := stmt.Exec(c.Rank, c.ID, c.CompositeScore,
			c.Scores.Heuristic, c.Scores.Complexity, c.Scores.Dependency, c.Scores.TestSignal)
		if err != nil {
			return fmt.Errorf("save candidate %s: %w", c.ID, err)
		}
	}
	return nil
}

func saveMeta(tx *sql.Tx, meta RunMeta) error {
	stmt, err := tx.Prepare("INSERT INTO run_meta (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare run_meta: %w", err)
	}
	defer stmt.Close()

	for _, kv := range meta.pairs() {
		if _, err := stmt.Exec(kv[0], kv[1]); err != nil {
			return fmt.Errorf("save run_meta %s: %w", kv[0], err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
