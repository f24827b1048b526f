package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/generator"
	"github.com/t77yq/bamcfg/internal/model"
	"github.com/t77yq/bamcfg/internal/testutil"
)

func TestRunner_GenerateNodes(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.Diamond().
		Node(3, "Poller-West", false, "10.0.0.3").
		BA(12, "Billing", 3).
		BooleanRule(7, "billing-ok").
		KPI(104, 12, model.KPITypeBooleanRule, 7)
	dir := t.TempDir()

	runner := NewRunner(RunnerOptions{
		Source:    fixture.Source(),
		OutputDir: dir,
		Workers:   2,
		Logger:    zaptest.NewLogger(t),
	})

	manifests, err := runner.GenerateNodes(ctx, []int{2, 3, 1})
	require.NoError(t, err)
	require.Len(t, manifests, 3)

	assert.Equal(t, 2, manifests[0].NodeID)
	assert.Equal(t, 3, manifests[1].NodeID)
	assert.Equal(t, 1, manifests[2].NodeID)
	assert.Empty(t, manifests[2].Paths)

	assert.Equal(t, 1, manifests[0].Counts[generator.KindContact])
	assert.Equal(t, 0, manifests[1].Counts[generator.KindContact])
	assert.Equal(t, 1, manifests[1].Counts[generator.KindService])

	hosts, err := os.ReadFile(filepath.Join(dir, "3", generator.KindHost.FileName()))
	require.NoError(t, err)
	assert.Contains(t, string(hosts), generator.VirtualHostName(3))
	assert.NotContains(t, string(hosts), generator.VirtualHostName(2))

	for _, p := range manifests[1].Paths {
		assert.Equal(t, filepath.Join(dir, "3"), filepath.Dir(p))
	}
}

func nodeFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)

	var files []string
	for _, e := range entries {
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files
}

func TestRunner_RemovesOutputOfEarlierRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	nodeDir := filepath.Join(dir, "2")
	run := func(source datastore.Source) *Manifest {
		t.Helper()
		runner := NewRunner(RunnerOptions{Source: source, OutputDir: dir, Logger: zaptest.NewLogger(t)})
		manifests, err := runner.GenerateNodes(ctx, []int{2})
		require.NoError(t, err)
		require.Len(t, manifests, 1)
		return manifests[0]
	}

	first := run(testutil.Diamond().Source())
	require.Len(t, first.Paths, 8)
	assert.ElementsMatch(t, first.Paths, nodeFiles(t, nodeDir))

	t.Run("FewerKinds", func(t *testing.T) {
		shrunk := testutil.NewFixture().
			Central(1, "10.0.0.1").
			Node(2, "Poller-East", false, "10.0.0.2").
			Command(1, "centreon-bam-check", "check_bam").
			BA(10, "Web", 2)

		m := run(shrunk.Source())
		assert.ElementsMatch(t, m.Paths, nodeFiles(t, nodeDir))
		assert.NotContains(t, m.Paths, filepath.Join(nodeDir, generator.KindEscalation.FileName()))
		assert.NoFileExists(t, filepath.Join(nodeDir, generator.KindEscalation.FileName()))
		assert.NoFileExists(t, filepath.Join(nodeDir, generator.KindContact.FileName()))
	})

	t.Run("NothingOwned", func(t *testing.T) {
		empty := testutil.NewFixture().
			Central(1, "10.0.0.1").
			Node(2, "Poller-East", false, "10.0.0.2").
			Command(1, "centreon-bam-check", "check_bam").
			BA(10, "Web", 1)

		m := run(empty.Source())
		assert.Empty(t, m.Paths)
		assert.Empty(t, nodeFiles(t, nodeDir))
	})
}

func TestRunner_RepeatedNodeIDs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	runner := NewRunner(RunnerOptions{
		Source:    testutil.Diamond().Source(),
		OutputDir: dir,
		Workers:   4,
		Logger:    zaptest.NewLogger(t),
	})

	manifests, err := runner.GenerateNodes(ctx, []int{2, 1, 2, 2})
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, 2, manifests[0].NodeID)
	assert.Equal(t, 1, manifests[1].NodeID)

	services, err := os.ReadFile(filepath.Join(dir, "2", generator.KindService.FileName()))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(services), "define service {"))
	assert.Equal(t, 1, strings.Count(string(services), " ba_10\n"))
	assert.Equal(t, 1, strings.Count(string(services), " ba_11\n"))
}

func TestUniqueNodeIDs(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, uniqueNodeIDs([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, uniqueNodeIDs(nil))
}

func TestRunner_FatalErrorAbortsRun(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.NewFixture().
		Node(2, "Poller-East", false, "10.0.0.2").
		Node(3, "Poller-West", false, "10.0.0.3").
		Command(1, "centreon-bam-check", "check_bam").
		BA(10, "Web", 2).
		BA(12, "Billing", 3)

	runner := NewRunner(RunnerOptions{
		Source:    fixture.Source(),
		OutputDir: t.TempDir(),
		Workers:   2,
		Logger:    zaptest.NewLogger(t),
	})

	manifests, err := runner.GenerateNodes(ctx, []int{2, 3})
	require.Error(t, err)
	assert.Nil(t, manifests)

	var passErr *PassError
	require.True(t, errors.As(err, &passErr))
	assert.Equal(t, CodeNoPrimaryNode, passErr.Code)
}

func TestListNodes(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.NewFixture().
		Central(1, "10.0.0.1").
		Node(2, "Poller-East", false, "10.0.0.2").
		Node(3, "Retired", false, "10.0.0.3", testutil.Disabled("ns_activate"))

	nodes, err := ListNodes(ctx, fixture.Source())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, NodeIDs(nodes))

	source := datastore.NewMemorySource()
	source.FailOn(datastore.TableNodes, errors.New("timeout"))
	_, err = ListNodes(ctx, source)
	var queryErr *datastore.QueryError
	assert.True(t, errors.As(err, &queryErr))
}
