package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/spiritstitch/atelier/internal/domain"
)

const (
	schemaGlob    = "sql/schema/*.sql"
	schemaLockKey = int64(20250417)
	schemaTimeout = 30 * time.Second
)

//go:embed sql/schema/*.sql
var schemaFS embed.FS

// subSchema — один независимый блок DDL (учётки, заказы, просьбы, расходы).
type subSchema struct {
	Name string
	DDL  string
}

// Bootstrap создаёт все прикладные таблицы, если их ещё нет.
// Каждая под-схема применяется независимо; первый сбой прерывает процесс
// и атрибутируется имени под-схемы. Все DDL — "CREATE ... IF NOT EXISTS",
// поэтому повторный вызов безопасен.
func (s *Store) Bootstrap(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: postgres store is not initialized", domain.ErrBootstrapFailed)
	}

	schemas, err := loadSubSchemas(schemaFS)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBootstrapFailed, err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire db connection: %v", domain.ErrBootstrapFailed, err)
	}
	defer conn.Close()

	// Advisory lock страхует от гонки DDL между конкурирующими процессами.
	lockCtx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()
	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", schemaLockKey); err != nil {
		return fmt.Errorf("%w: acquire schema lock: %v", domain.ErrBootstrapFailed, err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", schemaLockKey)
	}()

	for _, sub := range schemas {
		if _, err := conn.ExecContext(ctx, sub.DDL); err != nil {
			return fmt.Errorf("%w: sub-schema %s: %v", domain.ErrBootstrapFailed, sub.Name, err)
		}
	}

	return nil
}

// loadSubSchemas читает embedded DDL-файлы в лексикографическом порядке,
// чтобы зависимые таблицы создавались после своих родителей.
func loadSubSchemas(fsys fs.FS) ([]subSchema, error) {
	files, err := fs.Glob(fsys, schemaGlob)
	if err != nil {
		return nil, fmt.Errorf("list schema files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no schema files found")
	}
	sort.Strings(files)

	schemas := make([]subSchema, 0, len(files))
	for _, file := range files {
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read schema file %s: %w", file, err)
		}
		ddl := strings.TrimSpace(string(body))
		if ddl == "" {
			return nil, fmt.Errorf("schema file is empty: %s", file)
		}
		schemas = append(schemas, subSchema{
			Name: schemaName(file),
			DDL:  ddl,
		})
	}

	return schemas, nil
}

// schemaName выделяет человекочитаемое имя под-схемы из имени файла:
// "sql/schema/01_actors.sql" -> "actors".
func schemaName(file string) string {
	base := file
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".sql")
	if idx := strings.Index(base, "_"); idx >= 0 {
		base = base[idx+1:]
	}
	return base
}
