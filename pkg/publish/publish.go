// Package publish hands assembled batches to whatever signs and submits
// them. kgsync itself never signs or submits; publishers either write the
// batch for an external signer, log it, or apply it to an in-process store.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/kgsync/pkg/constants"
	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/graph"
	"github.com/agentstation/kgsync/pkg/logging"
)

// Publisher receives a finished batch.
type Publisher interface {
	Publish(ctx context.Context, b *graph.Batch) (*Receipt, error)
}

// Receipt records what a publisher did with a batch.
type Receipt struct {
	Batch       string               `yaml:"batch" json:"batch"`
	Namespace   graph.ID             `yaml:"namespace" json:"namespace"`
	Ops         int                  `yaml:"ops" json:"ops"`
	Counts      map[graph.OpType]int `yaml:"counts,omitempty" json:"counts,omitempty"`
	Location    string               `yaml:"location,omitempty" json:"location,omitempty"`
	DryRun      bool                 `yaml:"dry_run" json:"dry_run"`
	PublishedAt utc.Time             `yaml:"published_at" json:"published_at"`
}

func newReceipt(b *graph.Batch) *Receipt {
	return &Receipt{
		Batch:       b.Name,
		Namespace:   b.Namespace,
		Ops:         b.Len(),
		Counts:      b.Counts(),
		PublishedAt: utc.Now(),
	}
}

// Format is a batch file encoding.
type Format string

const (
	// FormatYAML writes batches as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON writes batches as JSON.
	FormatJSON Format = "json"
)

// FilePublisher writes each batch to its own file for an external signer.
type FilePublisher struct {
	dir    string
	format Format
}

// NewFilePublisher creates a publisher writing into dir.
func NewFilePublisher(dir string, format Format) *FilePublisher {
	if dir == "" {
		dir = constants.DefaultOutDir
	}
	if format != FormatJSON {
		format = FormatYAML
	}
	return &FilePublisher{dir: dir, format: format}
}

// Publish implements Publisher. Empty batches are not written.
func (p *FilePublisher) Publish(ctx context.Context, b *graph.Batch) (*Receipt, error) {
	receipt := newReceipt(b)
	if b.IsEmpty() {
		logging.Ctx(ctx).Info().Str("batch", b.Name).Msg("Nothing to publish")
		return receipt, nil
	}

	data, err := encode(b, p.format)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", p.dir, err)
	}
	name := fmt.Sprintf("%s-%s.%s", b.Name, b.CreatedAt.Format(constants.TimeFormatFilename), p.format)
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return nil, errors.WrapIO("write", path, err)
	}

	receipt.Location = path
	logging.Ctx(ctx).Info().
		Str("batch", b.Name).
		Int("ops", b.Len()).
		Str("path", path).
		Msg("Wrote batch")
	return receipt, nil
}

func encode(b *graph.Batch, format Format) ([]byte, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return nil, errors.WrapParse("json", b.Name, err)
		}
		return data, nil
	}
	data, err := yaml.MarshalWithOptions(b, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return nil, errors.WrapParse("yaml", b.Name, err)
	}
	return data, nil
}

// LogPublisher only logs the batch. It backs dry runs.
type LogPublisher struct{}

// Publish implements Publisher.
func (LogPublisher) Publish(ctx context.Context, b *graph.Batch) (*Receipt, error) {
	logger := logging.Ctx(ctx)
	for i, op := range b.Ops {
		ev := logger.Debug().Int("index", i).Str("op", string(op.Type))
		switch {
		case op.Entity != nil:
			ev = ev.Str("entity_id", op.Entity.ID.String()).Int("values", len(op.Entity.Values))
		case op.Relation != nil:
			ev = ev.Str("relation_id", op.Relation.ID.String())
		case op.Unset != nil:
			ev = ev.Str("entity_id", op.Unset.EntityID.String()).Int("properties", len(op.Unset.PropertyIDs))
		}
		ev.Msg("Dry run op")
	}

	receipt := newReceipt(b)
	receipt.DryRun = true
	logger.Info().
		Str("batch", b.Name).
		Int("ops", b.Len()).
		Msg("Dry run, batch not published")
	return receipt, nil
}

// Applier applies a batch directly, as query.Memory does.
type Applier interface {
	Apply(b *graph.Batch) error
}

// StorePublisher applies batches to an in-process store.
type StorePublisher struct {
	Store Applier
}

// Publish implements Publisher.
func (p StorePublisher) Publish(ctx context.Context, b *graph.Batch) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Store.Apply(b); err != nil {
		return nil, err
	}
	receipt := newReceipt(b)
	receipt.Location = "memory"
	return receipt, nil
}
