package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"projecttracker/internal/config"
	"projecttracker/internal/model"
)

var memory = config.DBConfig{Driver: "sqlite", Path: ":memory:"}

func TestOpenBootstrapsEveryTable(t *testing.T) {
	ctx := context.Background()

	gdb, release, err := Open(ctx, memory, zap.NewNop())
	require.NoError(t, err)
	defer release()

	require.NoError(t, Bootstrap(ctx, gdb))
	require.NoError(t, Ping(ctx, gdb))

	for _, table := range []string{
		"projects", "tasks", "todos", "risks", "budget_lines", "costs", "cost_estimations",
		"resources", "issues", "milestones", "charter_entries", "calendar_entries",
		"training_programs", "credentials",
	} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}

func TestRecordsAreImmutable(t *testing.T) {
	ctx := context.Background()

	gdb, release, err := Open(ctx, memory, zap.NewNop())
	require.NoError(t, err)
	defer release()
	require.NoError(t, Bootstrap(ctx, gdb))

	p := &model.Project{Name: "Alpha", Status: model.StatusNotStarted, Portfolio: model.PortfolioSpecial}
	require.NoError(t, gdb.Create(p).Error)

	err = gdb.Model(p).Update("budget", 10).Error
	assert.True(t, errors.Is(err, model.ErrImmutable), "update: %v", err)

	err = gdb.Delete(p).Error
	assert.True(t, errors.Is(err, model.ErrImmutable), "delete: %v", err)

	var count int64
	require.NoError(t, gdb.Model(&model.Project{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), config.DBConfig{Driver: "mongo"}, zap.NewNop())
	assert.Error(t, err)
}

func TestCommandOf(t *testing.T) {
	assert.Equal(t, "SELECT", commandOf("  select * from projects"))
	assert.Equal(t, "unknown", commandOf(""))
}

// closingPool is a gorm.ConnPool that is not a *sql.DB.
type closingPool struct {
	closed bool
}

func (*closingPool) PrepareContext(context.Context, string) (*sql.Stmt, error) { return nil, nil }
func (*closingPool) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, nil
}
func (*closingPool) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}
func (*closingPool) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }
func (p *closingPool) Close() error {
	p.closed = true
	return nil
}

func TestSqliteHandleClosesUnusablePool(t *testing.T) {
	pool := &closingPool{}
	gdb := &gorm.DB{Config: &gorm.Config{ConnPool: pool}}

	_, err := sqliteHandle(gdb)
	assert.ErrorIs(t, err, gorm.ErrInvalidDB)
	assert.True(t, pool.closed)
}
