package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/manifest"
	"github.com/t77yq/bamcfg/internal/model"
	"github.com/t77yq/bamcfg/internal/testutil"
)

func newTestRegistry(t *testing.T, source datastore.Source, nodeID int, logger *zap.Logger) *Registry {
	t.Helper()
	if logger == nil {
		logger = zaptest.NewLogger(t)
	}
	return NewRegistry(Scope{
		NodeID:      nodeID,
		OutputDir:   t.TempDir(),
		Cache:       datastore.NewCache(source, logger),
		Accumulator: manifest.NewAccumulator(),
		Logger:      logger,
	})
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func attr(name, value string) string {
	return fmt.Sprintf("    %-32s%s\n", name, value)
}

func TestContactGroups_DiamondEmitsContactOnce(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, testutil.Diamond().Source(), 2, nil)

	res, err := reg.ContactGroups().Generate(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, Emitted, res)
	res, err = reg.ContactGroups().Generate(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, Emitted, res)

	contacts := readFile(t, reg.Contacts().Path())
	assert.Equal(t, 1, strings.Count(contacts, "define contact {"))
	assert.Contains(t, contacts, attr("contact_name", "alice"))
	assert.NotContains(t, contacts, "generic-contact")

	groups := readFile(t, reg.ContactGroups().Path())
	assert.Equal(t, 2, strings.Count(groups, "define contactgroup {"))
	assert.Contains(t, groups, attr("members", "alice"))
	assert.NotContains(t, groups, "generic-contact")
	assert.Equal(t, 1, reg.Contacts().Count())
}

func TestGenerate_SecondRequestIsSkipped(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, testutil.Diamond().Source(), 2, nil)
	commands := reg.Commands()

	res, err := commands.Generate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, Emitted, res)

	res, err = commands.Generate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, Skipped, res)

	content := readFile(t, commands.Path())
	assert.Equal(t, 1, strings.Count(content, "define command {"))
	assert.Equal(t, 1, commands.Count())
}

func TestGenerate_ResetReEmits(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, testutil.Diamond().Source(), 2, nil)
	commands := reg.Commands()

	_, err := commands.Generate(ctx, 2)
	require.NoError(t, err)
	first := readFile(t, commands.Path())

	require.NoError(t, commands.Reset())
	_, err = os.Stat(commands.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 0, commands.Count())

	res, err := commands.Generate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, Emitted, res)

	second := readFile(t, commands.Path())
	assert.Equal(t, 1, strings.Count(second, "define command {"))
	assert.Equal(t, first, second)
}

func TestGenerate_MissingKeyIsNotFound(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	reg := newTestRegistry(t, testutil.Diamond().Source(), 2, zap.New(core))

	res, err := reg.Commands().Generate(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)

	res, err = reg.Commands().Generate(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)

	assert.Equal(t, 1, logs.FilterMessage("Command not found").Len())
	_, err = os.Stat(reg.Commands().Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestServices_EscapedNamesRestored(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, testutil.Diamond().Source(), 2, nil)

	require.NoError(t, reg.Services().GenerateAll(ctx))

	services := readFile(t, reg.Services().Path())
	assert.Contains(t, services, attr("display_name", "Web/Shop"))
	assert.Contains(t, services, attr("display_name", `Payments\EU`))
	assert.NotContains(t, services, "#S#")
	assert.NotContains(t, services, "#BS#")
	assert.Contains(t, services, attr("event_handler", "restart/web"))

	commands := readFile(t, reg.Commands().Path())
	assert.Contains(t, commands, attr("command_name", "restart/web"))
}

func TestServices_Block(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, testutil.Diamond().Source(), 2, nil)

	res, err := reg.Services().Generate(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, Emitted, res)

	services := readFile(t, reg.Services().Path())
	assert.Contains(t, services, attr("host_name", "_Module_BAM_2"))
	assert.Contains(t, services, attr("service_description", "ba_11"))
	assert.Contains(t, services, attr("check_command", "centreon-bam-check!11"))
	assert.Contains(t, services, attr("contact_groups", "web-team"))
	assert.Contains(t, services, attr("_KPI_TARGETS", "host:web-01,ba:ba_10"))
	assert.Contains(t, services, attr("_LEVEL_W", "80"))
	assert.Contains(t, services, attr("_LEVEL_C", "60"))

	// the KPI on BA 10 pulled its service first
	assert.Less(t, strings.Index(services, "ba_10"), strings.Index(services, "ba_11"))
	assert.Equal(t, 2, reg.Services().Count())

	hosts := readFile(t, reg.Hosts().Path())
	assert.Equal(t, 1, strings.Count(hosts, "define host {"))
	assert.Contains(t, hosts, attr("address", "10.0.0.1"))
}

func TestServices_MissingKPITargetIsSkipped(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.Diamond().KPI(103, 10, model.KPITypeHost, 404)
	core, logs := observer.New(zapcore.WarnLevel)
	reg := newTestRegistry(t, fixture.Source(), 2, zap.New(core))

	res, err := reg.Services().Generate(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Emitted, res)

	services := readFile(t, reg.Services().Path())
	assert.Contains(t, services, attr("_KPI_TARGETS", "host:web-01"))

	skipped := logs.FilterMessage("Skipping KPI with unresolved target").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(103), skipped[0].ContextMap()["kpi_id"])
}

func TestServices_OtherNodeIsNotEmitted(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.Diamond().BA(12, "Elsewhere", 1)
	reg := newTestRegistry(t, fixture.Source(), 2, nil)

	res, err := reg.Services().Generate(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)
	assert.Equal(t, 0, reg.Services().Count())
}

func TestServices_ReferenceCycle(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.NewFixture().
		Central(1, "10.0.0.1").
		Command(1, "centreon-bam-check", "check_bam").
		BA(10, "a", 1).
		BA(11, "b", 1).
		KPI(100, 10, model.KPITypeBusinessActivity, 11).
		KPI(101, 11, model.KPITypeBusinessActivity, 10)
	reg := newTestRegistry(t, fixture.Source(), 1, nil)

	_, err := reg.Services().Generate(ctx, 10)
	require.Error(t, err)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, KindService, cycleErr.Kind)
	assert.Equal(t, "10", cycleErr.Key)
	assert.Equal(t, []string{"service:10", "service:11", "service:10"}, cycleErr.Path)
}

func TestHosts_NoPrimaryNode(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.NewFixture().
		Node(2, "Poller-East", false, "10.0.0.2").
		BA(10, "a", 2)
	reg := newTestRegistry(t, fixture.Source(), 2, nil)

	_, err := reg.Hosts().Generate(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPrimaryNode))

	var genErr *GenerateError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, KindHost, genErr.Kind)
	assert.Equal(t, 0, reg.Accumulator().Len())
}

func TestDependencies(t *testing.T) {
	ctx := context.Background()

	t.Run("Emitted with node services", func(t *testing.T) {
		reg := newTestRegistry(t, testutil.Diamond().Source(), 2, nil)

		require.NoError(t, reg.Dependencies().GenerateAll(ctx))

		content := readFile(t, reg.Dependencies().Path())
		assert.Contains(t, content, "# shop-needs-payments\ndefine servicedependency {\n")
		assert.Contains(t, content, attr("service_description", "ba_11"))
		assert.Contains(t, content, attr("dependent_service_description", "ba_10"))
		assert.Equal(t, 2, reg.Services().Count())
	})

	t.Run("Skipped when one side is on another node", func(t *testing.T) {
		fixture := testutil.Diamond().
			BA(12, "Elsewhere", 1).
			Dependency(41, "cross-node", []int{12}, []int{10})
		reg := newTestRegistry(t, fixture.Source(), 2, nil)

		res, err := reg.Dependencies().Generate(ctx, 41)
		require.NoError(t, err)
		assert.Equal(t, NotFound, res)
	})
}

func TestEscalations(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.Diamond().Escalation(51, "off-node", []int{99}, []int{20})
	reg := newTestRegistry(t, fixture.Source(), 2, nil)

	require.NoError(t, reg.Escalations().GenerateAll(ctx))

	content := readFile(t, reg.Escalations().Path())
	assert.Equal(t, 1, strings.Count(content, "define serviceescalation {"))
	assert.Contains(t, content, attr("service_description", "ba_10"))
	assert.Contains(t, content, attr("contact_groups", "ops"))
	assert.Contains(t, content, attr("escalation_options", "w,c"))
	assert.NotContains(t, content, "off-node")
}

func TestRegistry_ManifestOrder(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t, testutil.Diamond().Source(), 2, nil)

	_, err := reg.Services().Generate(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, reg.Services().GenerateAll(ctx))

	var names []string
	for _, p := range reg.Accumulator().Paths() {
		assert.Equal(t, reg.Dir(), filepath.Dir(p))
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{
		"centreon-bam-host.cfg",
		"centreon-bam-command.cfg",
		"centreon-bam-timeperiod.cfg",
		"centreon-bam-contacts.cfg",
		"centreon-bam-contactgroups.cfg",
		"centreon-bam-services.cfg",
	}, names)
}

func TestRegistry_InstanceFor(t *testing.T) {
	reg := newTestRegistry(t, datastore.NewMemorySource(), 1, nil)

	for _, kind := range Kinds() {
		first, err := reg.InstanceFor(kind)
		require.NoError(t, err)
		second, err := reg.InstanceFor(kind)
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, kind, first.Kind())
		assert.Equal(t, kind.FileName(), filepath.Base(first.Path()))
	}

	_, err := reg.InstanceFor(Kind("trap"))
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestRegistry_ResetStartsFresh(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.Diamond()
	source := fixture.Source()
	reg := newTestRegistry(t, source, 2, nil)

	for _, kind := range Kinds() {
		g, err := reg.InstanceFor(kind)
		require.NoError(t, err)
		require.NoError(t, g.GenerateAll(ctx))
	}
	assert.Equal(t, 1, source.Calls(datastore.TableContacts))
	paths := reg.Accumulator().Paths()
	require.NotEmpty(t, paths)

	require.NoError(t, reg.Reset())
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.True(t, errors.Is(err, os.ErrNotExist), p)
	}
	assert.Equal(t, 0, reg.Accumulator().Len())
	for kind, n := range reg.Counts() {
		assert.Zero(t, n, kind)
	}

	_, err := reg.ContactGroups().Generate(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, source.Calls(datastore.TableContacts))
}

func TestGenerate_QueryFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	fixture := testutil.Diamond()
	fixture.Source().FailOn(datastore.TableContacts, errors.New("connection reset"))
	reg := newTestRegistry(t, fixture.Source(), 2, nil)

	_, err := reg.ContactGroups().Generate(ctx, 20)
	require.Error(t, err)

	var queryErr *datastore.QueryError
	require.True(t, errors.As(err, &queryErr))
	assert.Equal(t, datastore.TableContacts, queryErr.Table)

	var genErr *GenerateError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, KindContact, genErr.Kind)
	assert.Equal(t, "30", genErr.Key)
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "emitted", Emitted.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.True(t, Skipped.Resolved())
	assert.False(t, NotFound.Resolved())
}

func TestServices_StoredNamesEmittedUnchanged(t *testing.T) {
	ctx := context.Background()
	decomposedCheck := "bam-che\u0301ck"
	decomposedHost := "cafe\u0301-01"
	fixture := testutil.NewFixture().
		Central(1, "10.0.0.1").
		Node(2, "Poller-East", false, "10.0.0.2").
		Command(1, decomposedCheck, "check_bam").
		Host(5, decomposedHost+"#S#lyon").
		BA(10, "Web", 2).
		KPI(100, 10, model.KPITypeHost, 5)

	logger := zaptest.NewLogger(t)
	reg := NewRegistry(Scope{
		NodeID:    2,
		OutputDir: t.TempDir(),
		Cache:     datastore.NewCache(fixture.Source(), logger),
		Naming:    Naming{CheckCommand: "bam-ch\u00e9ck", HostCheckCommand: "check_centreon_dummy"},
		Logger:    logger,
	})

	res, err := reg.Services().Generate(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Emitted, res)

	services := readFile(t, reg.Services().Path())
	assert.Contains(t, services, attr("check_command", decomposedCheck+"!10"))
	assert.Contains(t, services, attr("_KPI_TARGETS", "host:"+decomposedHost+"/lyon"))

	commands := readFile(t, reg.Commands().Path())
	assert.Contains(t, commands, attr("command_name", decomposedCheck))
}
