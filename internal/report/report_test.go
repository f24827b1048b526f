package report

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t77yq/bamcfg/internal/compiler"
	"github.com/t77yq/bamcfg/internal/generator"
)

func TestReport_Write(t *testing.T) {
	r := New(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))
	r.AddFailure(3, &compiler.PassError{
		NodeID: 3,
		Kind:   generator.KindHost,
		Code:   compiler.CodeNoPrimaryNode,
		Err:    generator.ErrNoPrimaryNode,
	})
	r.AddManifest(&compiler.Manifest{
		PassID:   "pass-1",
		NodeID:   2,
		Paths:    []string{"/out/2/centreon-bam-host.cfg"},
		Counts:   map[generator.Kind]int{generator.KindHost: 1, generator.KindContact: 0},
		Duration: 1500 * time.Millisecond,
	})
	assert.True(t, r.Failed())

	path := filepath.Join(t.TempDir(), "reports", "last-run.yaml")
	require.NoError(t, r.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "generated_at: 2026-10-01T12:00:00Z")
	assert.Contains(t, content, "code: no_primary_node")
	assert.Contains(t, content, "duration_ms: 1500")
	assert.NotContains(t, content, "contact")

	read, err := Read(path)
	require.NoError(t, err)
	require.Len(t, read.Nodes, 2)
	assert.Equal(t, 2, read.Nodes[0].NodeID)
	assert.Equal(t, 3, read.Nodes[1].NodeID)
	assert.Equal(t, map[string]int{"host": 1}, read.Nodes[0].Counts)
}

func TestReport_AddFailurePlainError(t *testing.T) {
	r := New(time.Now())
	r.AddFailure(4, fmt.Errorf("failed to list nodes: boom"))

	require.Len(t, r.Nodes, 1)
	assert.Equal(t, 4, r.Nodes[0].NodeID)
	assert.Empty(t, r.Nodes[0].Code)
	assert.Equal(t, "failed to list nodes: boom", r.Nodes[0].Error)
}
