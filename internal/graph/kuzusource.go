//go:build cgo

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	kuzu "github.com/kuzudb/go-kuzu"
)

// nodeCacheSize bounds the deserialized-node LRU in front of KuzuDB.
const nodeCacheSize = 4096

// KuzuSource implements Source using KuzuDB as the graph backend, for size
// graphs too large to re-parse on every session. It requires CGO because
// the go-kuzu driver wraps KuzuDB's C library.
type KuzuSource struct {
	db    *kuzu.Database
	conn  *kuzu.Connection
	cache *lru.Cache[string, *Node]

	mu        sync.Mutex
	exclusive map[string]int64 // nil until first ExclusiveSize call
}

// Compile-time check that KuzuSource satisfies Source.
var _ Source = (*KuzuSource)(nil)

// NewKuzuSource creates a KuzuSource backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself; the
// parent must exist.
func NewKuzuSource(dbPath string) (*KuzuSource, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	cache, err := lru.New[string, *Node](nodeCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: node cache: %w", err)
	}
	return &KuzuSource{db: db, conn: conn, cache: cache}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuSource) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Element(
		id STRING,
		kind STRING,
		name STRING,
		size INT64,
		side_effects STRING,
		modifiers STRING,
		declared_type STRING,
		inferred_type STRING,
		params STRING,
		code STRING,
		type_label STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Program(
		name STRING,
		toolchain STRING,
		compiled_at STRING,
		compile_ms INT64,
		dynamic_fallback BOOLEAN,
		total_size INT64,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS HOLDS(FROM Element TO Element, ord INT64)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuSource) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddNode inserts an Element node and one ordered HOLDS edge per child.
// Children must be inserted before the edges can match, so callers load
// all elements first and then call LinkChildren.
func (s *KuzuSource) AddNode(_ context.Context, node *Node) error {
	if !node.Kind.Valid() {
		return fmt.Errorf("kuzu: node %q has unknown kind %q", node.ID, node.Kind)
	}
	modifiers, err := json.Marshal(node.Modifiers)
	if err != nil {
		return fmt.Errorf("kuzu: encode modifiers: %w", err)
	}
	params, err := json.Marshal(node.Parameters)
	if err != nil {
		return fmt.Errorf("kuzu: encode parameters: %w", err)
	}
	err = s.exec(
		`CREATE (e:Element {
			id: $id,
			kind: $kind,
			name: $name,
			size: $size,
			side_effects: $se,
			modifiers: $mods,
			declared_type: $dt,
			inferred_type: $it,
			params: $params,
			code: $code,
			type_label: $tl
		})`,
		map[string]any{
			"id":     node.ID,
			"kind":   string(node.Kind),
			"name":   node.Name,
			"size":   node.Size,
			"se":     node.SideEffects,
			"mods":   string(modifiers),
			"dt":     node.DeclaredType,
			"it":     node.InferredType,
			"params": string(params),
			"code":   node.Code,
			"tl":     node.Type,
		},
	)
	if err != nil {
		return err
	}
	s.cache.Remove(node.ID)
	s.invalidateExclusive()
	return nil
}

// LinkChildren inserts the ordered HOLDS edges for one parent element.
func (s *KuzuSource) LinkChildren(_ context.Context, parentID string, children []string) error {
	for i, child := range children {
		err := s.exec(
			`MATCH (a:Element {id: $src}), (b:Element {id: $dst})
			 CREATE (a)-[:HOLDS {ord: $ord}]->(b)`,
			map[string]any{"src": parentID, "dst": child, "ord": int64(i)},
		)
		if err != nil {
			return err
		}
	}
	s.cache.Remove(parentID)
	return nil
}

// SetProgram stores the program-level descriptive fields.
func (s *KuzuSource) SetProgram(_ context.Context, info ProgramInfo) error {
	return s.exec(
		`CREATE (p:Program {
			name: $name,
			toolchain: $tc,
			compiled_at: $at,
			compile_ms: $ms,
			dynamic_fallback: $df,
			total_size: $total
		})`,
		map[string]any{
			"name":  info.Name,
			"tc":    info.Toolchain,
			"at":    info.CompiledAt.UTC().Format(time.RFC3339Nano),
			"ms":    info.CompileDuration.Milliseconds(),
			"df":    info.DynamicFallback,
			"total": info.TotalSize,
		},
	)
}

// ---------- Read operations ----------

// NodeByID retrieves a single Element by id, or nil if not found.
// Results are cached in an LRU keyed by id.
func (s *KuzuSource) NodeByID(_ context.Context, id string) (*Node, error) {
	if n, ok := s.cache.Get(id); ok {
		return n, nil
	}
	rows, err := s.query(
		`MATCH (e:Element {id: $id})
		 RETURN e.id, e.kind, e.name, e.size, e.side_effects, e.modifiers,
		        e.declared_type, e.inferred_type, e.params, e.code, e.type_label`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	n, err := rowToNode(rows[0])
	if err != nil {
		return nil, err
	}
	n.Children, err = s.childIDs(id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, n)
	return n, nil
}

// childIDs returns the ids held by parentID, in stored order.
func (s *KuzuSource) childIDs(parentID string) ([]string, error) {
	rows, err := s.query(
		`MATCH (a:Element {id: $id})-[h:HOLDS]->(b:Element)
		 RETURN b.id ORDER BY h.ord`,
		map[string]any{"id": parentID},
	)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, toString(r[0]))
	}
	return out, nil
}

// NodesOfKind returns all elements of the given kind ordered by name.
func (s *KuzuSource) NodesOfKind(ctx context.Context, kind Kind) ([]*Node, error) {
	rows, err := s.query(
		`MATCH (e:Element {kind: $kind}) RETURN e.id ORDER BY e.name`,
		map[string]any{"kind": string(kind)},
	)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(rows))
	for _, r := range rows {
		n, err := s.NodeByID(ctx, toString(r[0]))
		if err != nil {
			return nil, err
		}
		if n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// TotalSize returns the program total from the Program node.
func (s *KuzuSource) TotalSize(ctx context.Context) (int64, error) {
	info, err := s.Program(ctx)
	if err != nil {
		return 0, err
	}
	return info.TotalSize, nil
}

// ExclusiveSize returns the dominator-tree retained size for id. The full
// table is built once from an in-memory snapshot of the graph and cached
// until the next write.
func (s *KuzuSource) ExclusiveSize(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exclusive == nil {
		nodes, roots, err := s.snapshot(ctx)
		if err != nil {
			return 0, err
		}
		s.exclusive = retainedSizes(nodes, roots)
	}
	return s.exclusive[id], nil
}

func (s *KuzuSource) invalidateExclusive() {
	s.mu.Lock()
	s.exclusive = nil
	s.mu.Unlock()
}

// snapshot loads every element and its child list into memory for the
// dominator computation.
func (s *KuzuSource) snapshot(ctx context.Context) (map[string]*Node, []string, error) {
	rows, err := s.query(`MATCH (e:Element) RETURN e.id ORDER BY e.name`, nil)
	if err != nil {
		return nil, nil, err
	}
	nodes := make(map[string]*Node, len(rows))
	var roots []string
	for _, r := range rows {
		n, err := s.NodeByID(ctx, toString(r[0]))
		if err != nil {
			return nil, nil, err
		}
		if n == nil {
			continue
		}
		nodes[n.ID] = n
		if n.Kind == KindLibrary {
			roots = append(roots, n.ID)
		}
	}
	return nodes, roots, nil
}

// Program returns the stored program-level fields.
func (s *KuzuSource) Program(_ context.Context) (*ProgramInfo, error) {
	rows, err := s.query(
		`MATCH (p:Program)
		 RETURN p.name, p.toolchain, p.compiled_at, p.compile_ms, p.dynamic_fallback, p.total_size`,
		nil,
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &ProgramInfo{}, nil
	}
	r := rows[0]
	compiledAt, _ := time.Parse(time.RFC3339Nano, toString(r[2]))
	return &ProgramInfo{
		Name:            toString(r[0]),
		Toolchain:       toString(r[1]),
		CompiledAt:      compiledAt,
		CompileDuration: time.Duration(toInt64(r[3])) * time.Millisecond,
		DynamicFallback: toBool(r[4]),
		TotalSize:       toInt64(r[5]),
	}, nil
}

// Stats returns element and edge counts grouped by kind.
func (s *KuzuSource) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByKind: make(map[Kind]int)}
	rows, err := s.query(`MATCH (e:Element) RETURN e.kind, count(*)`, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		kind := Kind(toString(r[0]))
		count := int(toInt64(r[1]))
		st.ByKind[kind] = count
		st.NodeCount += count
	}
	edgeRows, err := s.query(`MATCH (:Element)-[:HOLDS]->(:Element) RETURN count(*)`, nil)
	if err != nil {
		return nil, err
	}
	if len(edgeRows) > 0 {
		st.EdgeCount = int(toInt64(edgeRows[0][0]))
	}
	st.TotalSize, err = s.TotalSize(ctx)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuSource) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuSource) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next row: %w", err)
		}
		values, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: read row: %w", err)
		}
		rows = append(rows, values)
	}
	return rows, nil
}

// rowToNode builds a Node from an Element row, children excluded.
func rowToNode(r []any) (*Node, error) {
	n := &Node{
		ID:          toString(r[0]),
		Kind:        Kind(toString(r[1])),
		Name:        toString(r[2]),
		Size:        toInt64(r[3]),
		SideEffects:  toString(r[4]),
		DeclaredType: toString(r[6]),
		InferredType: toString(r[7]),
		Code:         toString(r[9]),
		Type:         toString(r[10]),
	}
	if mods := toString(r[5]); mods != "" && mods != "null" {
		if err := json.Unmarshal([]byte(mods), &n.Modifiers); err != nil {
			return nil, fmt.Errorf("kuzu: decode modifiers for %q: %w", n.ID, err)
		}
	}
	if params := toString(r[8]); params != "" && params != "null" {
		if err := json.Unmarshal([]byte(params), &n.Parameters); err != nil {
			return nil, fmt.Errorf("kuzu: decode parameters for %q: %w", n.ID, err)
		}
	}
	return n, nil
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
