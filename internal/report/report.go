// Package report writes a YAML summary of a generation run
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/t77yq/bamcfg/internal/compiler"
)

// Report summarizes one run over one or more nodes
type Report struct {
	GeneratedAt time.Time    `yaml:"generated_at"`
	Nodes       []NodeReport `yaml:"nodes"`
}

// NodeReport is the outcome of the pass of one node
type NodeReport struct {
	NodeID     int            `yaml:"node_id"`
	PassID     string         `yaml:"pass_id,omitempty"`
	Files      []string       `yaml:"files,omitempty"`
	Counts     map[string]int `yaml:"counts,omitempty"`
	DurationMS int64          `yaml:"duration_ms"`
	Error      string         `yaml:"error,omitempty"`
	Code       string         `yaml:"code,omitempty"`
}

// New creates an empty report
func New(now time.Time) *Report {
	return &Report{GeneratedAt: now.UTC()}
}

// AddManifest records a completed pass
func (r *Report) AddManifest(m *compiler.Manifest) {
	counts := make(map[string]int, len(m.Counts))
	for kind, n := range m.Counts {
		if n > 0 {
			counts[string(kind)] = n
		}
	}
	r.Nodes = append(r.Nodes, NodeReport{
		NodeID:     m.NodeID,
		PassID:     m.PassID,
		Files:      m.Paths,
		Counts:     counts,
		DurationMS: m.Duration.Milliseconds(),
	})
}

// AddFailure records an aborted pass
func (r *Report) AddFailure(nodeID int, err error) {
	node := NodeReport{NodeID: nodeID, Error: err.Error()}

	var passErr *compiler.PassError
	if errors.As(err, &passErr) {
		node.NodeID = passErr.NodeID
		node.Code = passErr.Code.String()
	}
	r.Nodes = append(r.Nodes, node)
}

// Failed reports whether any node failed
func (r *Report) Failed() bool {
	for _, n := range r.Nodes {
		if n.Error != "" {
			return true
		}
	}
	return false
}

// Write stores the report at path, replacing any previous report atomically
func (r *Report) Write(path string) error {
	sort.SliceStable(r.Nodes, func(i, j int) bool { return r.Nodes[i].NodeID < r.Nodes[j].NodeID })

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace report: %w", err)
	}
	return nil
}

// Read loads a report written by Write
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
