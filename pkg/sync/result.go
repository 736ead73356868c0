package sync

import (
	"fmt"
	"strings"

	"github.com/agentstation/kgsync/pkg/differ"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/publish"
	"github.com/agentstation/kgsync/pkg/resolve"
	"github.com/agentstation/kgsync/pkg/tombstone"
)

// Mode names a pipeline.
type Mode string

// Pipelines.
const (
	ModeCreate    Mode = "create"
	ModePatch     Mode = "patch"
	ModeTombstone Mode = "tombstone"
)

// Result represents the complete result of a pipeline run.
type Result struct {
	Mode      Mode     `json:"mode" yaml:"mode"`
	Namespace graph.ID `json:"namespace" yaml:"namespace"`
	DryRun    bool     `json:"dry_run" yaml:"dry_run"`

	Batch   *graph.Batch     `json:"batch,omitempty" yaml:"batch,omitempty"`
	Receipt *publish.Receipt `json:"receipt,omitempty" yaml:"receipt,omitempty"`

	// Create mode
	Resolution resolve.Map `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Created    int         `json:"created" yaml:"created"`
	Linked     int         `json:"linked" yaml:"linked"`

	// Patch mode
	Diffs   []*differ.EntityDiff `json:"diffs,omitempty" yaml:"diffs,omitempty"`
	Updated int                  `json:"updated" yaml:"updated"`
	Skipped int                  `json:"skipped" yaml:"skipped"`

	// Tombstone mode
	Tombstone  *tombstone.Set `json:"tombstone,omitempty" yaml:"tombstone,omitempty"`
	Tombstoned int            `json:"tombstoned" yaml:"tombstoned"`

	RelationsAdded   int `json:"relations_added" yaml:"relations_added"`
	RelationsRemoved int `json:"relations_removed" yaml:"relations_removed"`
	ValuesSet        int `json:"values_set" yaml:"values_set"`
	ValuesUnset      int `json:"values_unset" yaml:"values_unset"`
}

// HasChanges returns true if the run produced any operation.
func (r *Result) HasChanges() bool {
	return r.Batch != nil && !r.Batch.IsEmpty()
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if !r.HasChanges() {
		return fmt.Sprintf("%s: no changes", r.Mode)
	}

	var parts []string
	switch r.Mode {
	case ModeCreate:
		parts = append(parts, fmt.Sprintf("%d created", r.Created), fmt.Sprintf("%d linked", r.Linked))
	case ModePatch:
		parts = append(parts, fmt.Sprintf("%d updated", r.Updated), fmt.Sprintf("%d skipped", r.Skipped))
	case ModeTombstone:
		parts = append(parts, fmt.Sprintf("%d tombstoned", r.Tombstoned))
	}
	if r.ValuesSet > 0 {
		parts = append(parts, fmt.Sprintf("%d values set", r.ValuesSet))
	}
	if r.ValuesUnset > 0 {
		parts = append(parts, fmt.Sprintf("%d values unset", r.ValuesUnset))
	}
	if r.RelationsAdded > 0 {
		parts = append(parts, fmt.Sprintf("%d relations added", r.RelationsAdded))
	}
	if r.RelationsRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d relations removed", r.RelationsRemoved))
	}

	summary := fmt.Sprintf("%s: %s (%d ops)", r.Mode, strings.Join(parts, ", "), r.Batch.Len())
	if r.DryRun {
		summary += " (Dry run)"
	}
	return summary
}

// countOps fills the op-derived counters from the batch.
func (r *Result) countOps() {
	for _, op := range r.Batch.Ops {
		switch op.Type {
		case graph.OpCreateEntity, graph.OpUpdateEntity:
			r.ValuesSet += len(op.Entity.Values)
		case graph.OpCreateRelation:
			r.RelationsAdded++
		case graph.OpDeleteRelation:
			r.RelationsRemoved++
		case graph.OpUnsetValues:
			r.ValuesUnset += len(op.Unset.PropertyIDs)
		}
	}
}
