package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projecttracker/internal/config"
	"projecttracker/internal/db"
	"projecttracker/internal/model"
	"projecttracker/internal/repository"
	"projecttracker/internal/session"
	"projecttracker/internal/store"
)

func setupShell(t *testing.T) *Shell {
	t.Helper()
	ctx := context.Background()
	gdb, release, err := db.Open(ctx, config.DBConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(release)
	require.NoError(t, db.Bootstrap(ctx, gdb))

	gate := session.NewGate(repository.NewCredentialRepository(gdb, zap.NewNop()),
		session.Options{Secret: "test", TTL: time.Hour}, zap.NewNop())
	return New(store.NewStore(gdb, nil, zap.NewNop()), gate, zap.NewNop())
}

func exec(t *testing.T, s *Shell, line string) string {
	t.Helper()
	var out bytes.Buffer
	_, err := s.Execute(context.Background(), line, &out)
	require.NoError(t, err, line)
	return out.String()
}

func login(t *testing.T, s *Shell) {
	t.Helper()
	exec(t, s, "register pm pw123")
	exec(t, s, "login pm pw123")
}

func TestStoreCommandsRequireLogin(t *testing.T) {
	s := setupShell(t)
	for _, line := range []string{"projects", "list task", "add project name=A", "dashboard", "show risks", "export out.csv", "use Alpha"} {
		_, err := s.Execute(context.Background(), line, &bytes.Buffer{})
		assert.ErrorIs(t, err, session.ErrNotAuthenticated, line)
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := setupShell(t)
	login(t, s)
	assert.Equal(t, "pm\n", exec(t, s, "whoami"))

	exec(t, s, `add project name=Alpha budget=1000 spent=200 status="In Progress" portfolio="Special project" impact=5 deliverable=v1 timeline=Q1`)
	assert.Equal(t, "Alpha\n", exec(t, s, "projects"))

	exec(t, s, "use Alpha")
	assert.Equal(t, "Alpha", s.State().Project)

	out := exec(t, s, "add risk likelihood=0.4 impact=0.5 status=Open")
	assert.Contains(t, out, "added risk #1")

	recs, err := s.env.Store.ListByProject(context.Background(), model.CategoryRisk, "Alpha")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 0.2, recs[0].(*model.Risk).Severity, 1e-9)

	out = exec(t, s, "risks")
	assert.Contains(t, out, "Risk Management")
	assert.Contains(t, out, "0.2")
}

func TestRejectedInputIsRecoverable(t *testing.T) {
	s := setupShell(t)
	login(t, s)
	exec(t, s, `add project name=Alpha status="Not Started" portfolio="Special project"`)

	_, err := s.Execute(context.Background(), "add resource project_name=Alpha resource=Dana allocation=101", &bytes.Buffer{})
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve), "got %v", err)

	_, err = s.Execute(context.Background(), "add task project_name=Ghost priority=High status=Completed", &bytes.Buffer{})
	var re *store.ReferenceError
	assert.True(t, errors.As(err, &re), "got %v", err)

	_, err = s.Execute(context.Background(), "add resource project_name=Alpha resource=Dana allocation=0", &bytes.Buffer{})
	assert.NoError(t, err)
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	s := setupShell(t)
	script := strings.Join([]string{
		"projects",
		"register pm pw123",
		"login pm wrong",
		"login pm pw123",
		"bogus",
		`add project name="Big Rollout" status="Not Started" portfolio="Turnaround project"`,
		"projects",
		"logout",
		"logout",
		"quit",
		"whoami",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, s.Run(context.Background(), strings.NewReader(script), &out))

	text := out.String()
	assert.Contains(t, text, "error: not authenticated")
	assert.Contains(t, text, "error: invalid username or password")
	assert.Contains(t, text, `unknown command "bogus"`)
	assert.Contains(t, text, "Big Rollout")
	assert.Contains(t, text, "tracker> ")
	assert.NotContains(t, text, "not logged in")
	assert.False(t, s.State().Gate.IsAuthenticated())
}

func TestUseUnknownProject(t *testing.T) {
	s := setupShell(t)
	login(t, s)
	_, err := s.Execute(context.Background(), "use Ghost", &bytes.Buffer{})
	var re *store.ReferenceError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, "", s.State().Project)
}

func TestExportWritesFiles(t *testing.T) {
	s := setupShell(t)
	login(t, s)
	exec(t, s, `add project name=Alpha status="Not Started" portfolio="Special project"`)
	exec(t, s, `add task project_name=Alpha description="write plan" priority=High status="In Progress" start_date=2024-02-01`)

	dir := t.TempDir()
	taskFile := filepath.Join(dir, "tasks.csv")
	exec(t, s, "export task "+taskFile)
	body, err := os.ReadFile(taskFile)
	require.NoError(t, err)
	assert.Equal(t,
		"project_name,description,priority,status,start_date,end_date\nAlpha,write plan,High,In Progress,2024-02-01,\n",
		string(body))

	full := filepath.Join(dir, "full_report.csv")
	exec(t, s, "export "+full)
	body, err = os.ReadFile(full)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "name,start_date,end_date"))
	assert.Contains(t, string(body), "\n\nproject_name,description,priority,status,start_date,end_date\n")
}

func TestROICommand(t *testing.T) {
	s := setupShell(t)
	login(t, s)
	out := exec(t, s, "roi 1000 300,400,500")
	assert.Contains(t, out, "ROI: 20.00%")
	assert.Contains(t, out, "IRR: 8.90%")

	_, err := s.Execute(context.Background(), "roi 0 100", &bytes.Buffer{})
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = s.Execute(context.Background(), "roi inf 100", &bytes.Buffer{})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "investment", ve.Field)
}

func TestInfiniteAmountsAreRejected(t *testing.T) {
	s := setupShell(t)
	login(t, s)

	_, err := s.Execute(context.Background(),
		`add project name=X budget=inf status="In Progress" portfolio="Special project"`, &bytes.Buffer{})
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "budget", ve.Field)

	assert.NotPanics(t, func() {
		exec(t, s, "dashboard")
		exec(t, s, "portfolio")
	})
}

func TestEverySectionRenders(t *testing.T) {
	s := setupShell(t)
	login(t, s)
	exec(t, s, `add project name=Alpha budget=10 status="Not Started" portfolio="Special project"`)

	for _, sec := range Sections() {
		var out bytes.Buffer
		require.NoError(t, s.Render(context.Background(), sec, &out), sec.String())
		assert.NotEmpty(t, out.String(), sec.String())
	}
}

func TestSectionsAreEnumerated(t *testing.T) {
	handlers := defaultHandlers()
	require.Len(t, Sections(), 16)
	for _, sec := range Sections() {
		_, ok := handlers[sec]
		assert.True(t, ok, "missing handler for %s", sec)
	}

	sec, ok := ParseSection("Cost Estimation")
	assert.True(t, ok)
	assert.Equal(t, SectionCostEstimation, sec)

	_, ok = ParseSection("monthly")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Section(99).String())
}

func TestTokenize(t *testing.T) {
	got, err := tokenize(`add task description="two words"  status="In Progress" x=""`)
	require.NoError(t, err)
	assert.Equal(t, []string{"add", "task", "description=two words", "status=In Progress", "x="}, got)

	got, err = tokenize(`  `)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = tokenize(`add "oops`)
	assert.ErrorIs(t, err, ErrUsage)
}
