package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projecttracker/internal/config"
	"projecttracker/internal/db"
	"projecttracker/internal/model"
	"projecttracker/internal/mq"
)

type event struct {
	key     string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, key string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{key: key, payload: payload})
	return f.err
}

func setupStore(t *testing.T) (*Store, *fakePublisher) {
	t.Helper()
	ctx := context.Background()
	gdb, release, err := db.Open(ctx, config.DBConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(release)
	require.NoError(t, db.Bootstrap(ctx, gdb))

	pub := &fakePublisher{}
	return NewStore(gdb, pub, zap.NewNop()), pub
}

func alpha() *model.Project {
	return &model.Project{
		Name:        "Alpha",
		Budget:      1000,
		Spent:       200,
		Status:      model.StatusInProgress,
		Portfolio:   model.PortfolioSpecial,
		Impact:      5,
		Deliverable: "v1",
		Timeline:    "Q1",
	}
}

func project(name string) *model.Project {
	return &model.Project{Name: name, Status: model.StatusNotStarted, Portfolio: model.PortfolioTurnaround}
}

func task(projectName, desc string) *model.Task {
	return &model.Task{
		ProjectName: projectName,
		Description: desc,
		Priority:    model.PriorityMedium,
		Status:      model.StatusNotStarted,
	}
}

func TestAddAppendsExactlyOneRecord(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, alpha())
	require.NoError(t, err)

	before, err := s.List(ctx, model.CategoryTask)
	require.NoError(t, err)
	assert.Empty(t, before)

	in := task("Alpha", "write plan")
	in.StartDate = time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC)
	id, err := s.Add(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, id)

	after, err := s.List(ctx, model.CategoryTask)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)

	got := after[len(after)-1]
	assert.Equal(t, id, got.Identity())
	if diff := cmp.Diff(model.Fields(in), model.Fields(got)); diff != "" {
		t.Errorf("stored fields differ (-added +listed):\n%s", diff)
	}
	assert.Equal(t, "2024-03-01", got.(*model.Task).StartDate.UTC().Format(model.DateLayout))
}

func TestRiskSeverityIsRecomputed(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, alpha())
	require.NoError(t, err)

	_, err = s.Add(ctx, &model.Risk{
		ProjectName: "Alpha",
		Description: "vendor slips",
		Likelihood:  0.5,
		Impact:      0.5,
		Severity:    0.99,
		Status:      model.RiskOpen,
	})
	require.NoError(t, err)

	risks, err := s.List(ctx, model.CategoryRisk)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.InDelta(t, 0.25, risks[0].(*model.Risk).Severity, 1e-9)
}

func TestListByProjectIsOrderedSubsequence(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	for _, name := range []string{"Alpha", "Beta"} {
		_, err := s.Add(ctx, project(name))
		require.NoError(t, err)
	}
	for _, tk := range []*model.Task{
		task("Alpha", "a1"), task("Beta", "b1"), task("Alpha", "a2"), task("Beta", "b2"), task("Alpha", "a3"),
	} {
		_, err := s.Add(ctx, tk)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, model.CategoryTask)
	require.NoError(t, err)
	subset, err := s.ListByProject(ctx, model.CategoryTask, "Alpha")
	require.NoError(t, err)

	var want []string
	for _, r := range all {
		if tk := r.(*model.Task); tk.ProjectName == "Alpha" {
			want = append(want, tk.Description)
		}
	}
	var got []string
	for _, tk := range model.Filter[*model.Task](subset) {
		got = append(got, tk.Description)
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, got)
	assert.Equal(t, want, got)

	none, err := s.ListByProject(ctx, model.CategoryTask, "Gamma")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListByProjectRejectsUnscopedCategory(t *testing.T) {
	s, _ := setupStore(t)
	_, err := s.ListByProject(context.Background(), model.CategoryTraining, "Alpha")
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestAddRejectsMissingProject(t *testing.T) {
	s, pub := setupStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, task("Ghost", "orphan"))
	var re *ReferenceError
	require.True(t, errors.As(err, &re), "got %v", err)
	assert.Equal(t, model.CategoryTask, re.Category)
	assert.Equal(t, "Ghost", re.ProjectName)

	all, err := s.List(ctx, model.CategoryTask)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, pub.events)
}

func TestAddRejectsDuplicateProjectName(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, project("Alpha"))
	require.NoError(t, err)

	_, err = s.Add(ctx, project("Alpha"))
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "name", ve.Field)

	names, err := s.ListProjectNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names)
}

func TestResourceAllocationBoundary(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, alpha())
	require.NoError(t, err)

	_, err = s.Add(ctx, &model.Resource{ProjectName: "Alpha", Name: "Dana", Allocation: 101})
	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "allocation", ve.Field)

	_, err = s.Add(ctx, &model.Resource{ProjectName: "Alpha", Name: "Dana", Allocation: 0})
	require.NoError(t, err)

	all, err := s.List(ctx, model.CategoryResource)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCredentialsAreNotReachable(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, &model.Credential{Username: "pm", PasswordHash: "x"})
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = s.List(ctx, model.CategoryCredential)
	assert.True(t, errors.As(err, &ve))
}

func TestAddIgnoresCallerIdentity(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	p := project("Alpha")
	p.ID = 42
	id, err := s.Add(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestConcurrentAddsGetDistinctIdentities(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	_, err := s.Add(ctx, alpha())
	require.NoError(t, err)

	const n = 25
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Add(ctx, &model.Issue{
				ProjectName: "Alpha",
				Description: "flaky build",
				Priority:    model.PriorityLow,
				Status:      model.IssueOpen,
			})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "identity %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestAddPublishesAfterCommit(t *testing.T) {
	s, pub := setupStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, alpha())
	require.NoError(t, err)
	id, err := s.Add(ctx, task("Alpha", "kickoff"))
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, "record.created.project", pub.events[0].key)
	assert.Equal(t, "record.created.task", pub.events[1].key)

	payload, ok := pub.events[1].payload.(mq.RecordCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, id, payload.ID)
	assert.Equal(t, "Alpha", payload.ProjectName)
}

func TestPublishFailureDoesNotFailAdd(t *testing.T) {
	s, pub := setupStore(t)
	pub.err = errors.New("broker down")

	id, err := s.Add(context.Background(), alpha())
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestListNeverFailsWhenEmpty(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()
	for _, c := range s.Categories() {
		if c == model.CategoryCredential {
			continue
		}
		recs, err := s.List(ctx, c)
		require.NoError(t, err, c)
		assert.Empty(t, recs, c)
	}
	names, err := s.ListProjectNames(ctx)
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestEndToEndProjectAndRisk(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, alpha())
	require.NoError(t, err)

	names, err := s.ListProjectNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names)

	_, err = s.Add(ctx, &model.Risk{ProjectName: "Alpha", Likelihood: 0.4, Impact: 0.5, Status: model.RiskOpen})
	require.NoError(t, err)

	risks, err := s.ListByProject(ctx, model.CategoryRisk, "Alpha")
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.InDelta(t, 0.2, risks[0].(*model.Risk).Severity, 1e-9)
}
