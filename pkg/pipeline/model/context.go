package model

import (
	"fmt"
	"log/slog"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// Field identifies a scalar carried by the validation context. Fields are bit
// flags so a step can declare the set it reads or writes as a single mask.
type Field uint16

const (
	// FieldNumGenes is the number of features in the loaded dataset.
	FieldNumGenes Field = 1 << iota
	// FieldNumLoadedCells is the number of cells before quality filtering.
	FieldNumLoadedCells
	// FieldNumBlocks is the number of samples the cells were drawn from.
	FieldNumBlocks
	// FieldNumCells is the number of cells retained by quality filtering.
	FieldNumCells
	// FieldNumHVGs is the number of highly variable genes used for the PCA.
	FieldNumHVGs
	// FieldNumPCs is the number of principal components.
	FieldNumPCs
	// FieldBlockMethod is the PCA block correction method.
	FieldBlockMethod
	// FieldClusteringMethod names the clustering step consumed downstream.
	FieldClusteringMethod
	// FieldNumClusters is the number of clusters of the chosen clustering.
	FieldNumClusters

	numFields = iota
)

var fieldNames = [numFields]string{
	"num_genes",
	"num_loaded_cells",
	"num_blocks",
	"num_cells",
	"num_hvgs",
	"num_pcs",
	"block_method",
	"clustering_method",
	"num_clusters",
}

// Fields splits a mask into its single fields, lowest bit first.
func (f Field) Fields() []Field {
	var out []Field
	for rest := uint16(f); rest != 0; rest &= rest - 1 {
		out = append(out, Field(1)<<bits.TrailingZeros16(rest))
	}

	return out
}

func (f Field) index() int {
	return bits.TrailingZeros16(uint16(f))
}

// String returns the field name, or a comma separated list for a mask.
func (f Field) String() string {
	fields := f.Fields()
	names := make([]string, 0, len(fields))
	for _, single := range fields {
		if single.index() >= numFields {
			names = append(names, fmt.Sprintf("field(%d)", single.index()))
			continue
		}
		names = append(names, fieldNames[single.index()])
	}

	return strings.Join(names, ",")
}

func (f Field) isString() bool {
	return f == FieldBlockMethod || f == FieldClusteringMethod
}

// record holds the write-once scalars. It is a plain value so copies never
// share state.
type record struct {
	set  Field
	ints [numFields]int
	strs [numFields]string
}

// Has reports whether every field of mask has been set.
func (r record) Has(mask Field) bool {
	return r.set&mask == mask
}

// Set returns the mask of fields that have a value.
func (r record) Set() Field {
	return r.set
}

func (r record) mustInt(f Field) int {
	if !r.Has(f) {
		panic(fmt.Sprintf("model: %s read before it was set", f))
	}

	return r.ints[f.index()]
}

func (r record) mustString(f Field) string {
	if !r.Has(f) {
		panic(fmt.Sprintf("model: %s read before it was set", f))
	}

	return r.strs[f.index()]
}

// NumGenes returns the number of genes. It panics when unset.
func (r record) NumGenes() int { return r.mustInt(FieldNumGenes) }

// NumLoadedCells returns the number of cells before filtering. It panics when unset.
func (r record) NumLoadedCells() int { return r.mustInt(FieldNumLoadedCells) }

// NumBlocks returns the number of samples. It panics when unset.
func (r record) NumBlocks() int { return r.mustInt(FieldNumBlocks) }

// NumCells returns the number of cells after filtering. It panics when unset.
func (r record) NumCells() int { return r.mustInt(FieldNumCells) }

// NumHVGs returns the number of highly variable genes. It panics when unset.
func (r record) NumHVGs() int { return r.mustInt(FieldNumHVGs) }

// NumPCs returns the number of principal components. It panics when unset.
func (r record) NumPCs() int { return r.mustInt(FieldNumPCs) }

// BlockMethod returns the PCA block method. It panics when unset.
func (r record) BlockMethod() string { return r.mustString(FieldBlockMethod) }

// ClusteringMethod returns the chosen clustering. It panics when unset.
func (r record) ClusteringMethod() string { return r.mustString(FieldClusteringMethod) }

// NumClusters returns the number of clusters. It panics when unset.
func (r record) NumClusters() int { return r.mustInt(FieldNumClusters) }

func (r *record) put(f Field, i int, s string) {
	r.set |= f
	if f.isString() {
		r.strs[f.index()] = s
		return
	}
	r.ints[f.index()] = i
}

func (r record) attrs() []slog.Attr {
	var attrs []slog.Attr
	for _, f := range r.set.Fields() {
		if f.isString() {
			attrs = append(attrs, slog.String(f.String(), r.strs[f.index()]))
			continue
		}
		attrs = append(attrs, slog.Int(f.String(), r.ints[f.index()]))
	}

	return attrs
}

// Delta is the set of context fields produced by one step phase.
type Delta struct {
	record
}

// SetNumGenes records the number of genes.
func (d *Delta) SetNumGenes(n int) { d.put(FieldNumGenes, n, "") }

// SetNumLoadedCells records the number of cells before filtering.
func (d *Delta) SetNumLoadedCells(n int) { d.put(FieldNumLoadedCells, n, "") }

// SetNumBlocks records the number of samples.
func (d *Delta) SetNumBlocks(n int) { d.put(FieldNumBlocks, n, "") }

// SetNumCells records the number of cells after filtering.
func (d *Delta) SetNumCells(n int) { d.put(FieldNumCells, n, "") }

// SetNumHVGs records the number of highly variable genes.
func (d *Delta) SetNumHVGs(n int) { d.put(FieldNumHVGs, n, "") }

// SetNumPCs records the number of principal components.
func (d *Delta) SetNumPCs(n int) { d.put(FieldNumPCs, n, "") }

// SetBlockMethod records the PCA block method.
func (d *Delta) SetBlockMethod(method string) { d.put(FieldBlockMethod, 0, method) }

// SetClusteringMethod records the chosen clustering.
func (d *Delta) SetClusteringMethod(method string) { d.put(FieldClusteringMethod, 0, method) }

// SetNumClusters records the number of clusters.
func (d *Delta) SetNumClusters(n int) { d.put(FieldNumClusters, n, "") }

// Merge returns the union of two deltas produced by the same step.
func (d Delta) Merge(other Delta) (Delta, error) {
	if overlap := d.set & other.set; overlap != 0 {
		return d, errors.Wrapf(ErrFieldAlreadySet, "%s", overlap)
	}
	for _, f := range other.set.Fields() {
		d.put(f, other.ints[f.index()], other.strs[f.index()])
	}

	return d, nil
}

// LogValue implements slog.LogValuer.
func (d Delta) LogValue() slog.Value {
	return slog.GroupValue(d.attrs()...)
}

// Context is the record of cross-step scalars and the format version of the
// state file being validated.
type Context struct {
	record
	version int
}

// ContextOption seeds a context with externally known values.
type ContextOption func(c *Context)

// WithNumGenes seeds the number of genes of the input dataset.
func WithNumGenes(n int) ContextOption {
	return func(c *Context) {
		c.put(FieldNumGenes, n, "")
	}
}

// NewContext returns a context for a state file of the given format version.
func NewContext(version int, opts ...ContextOption) *Context {
	c := &Context{version: version}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FormatVersion returns the state file format version, e.g. 1001000 for 1.1.0.
func (c Context) FormatVersion() int {
	return c.version
}

// AtLeast reports whether the format version is version or newer.
func (c Context) AtLeast(version int) bool {
	return c.version >= version
}

// Clone returns an independent copy.
func (c *Context) Clone() *Context {
	cp := *c

	return &cp
}

// Merge applies a delta. It fails with ErrFieldAlreadySet, leaving the context
// untouched, when the delta writes a field that is already set.
func (c *Context) Merge(d Delta) error {
	if overlap := c.set & d.set; overlap != 0 {
		return errors.Wrapf(ErrFieldAlreadySet, "%s", overlap)
	}
	for _, f := range d.set.Fields() {
		c.put(f, d.ints[f.index()], d.strs[f.index()])
	}

	return nil
}

// LogValue implements slog.LogValuer.
func (c Context) LogValue() slog.Value {
	attrs := append([]slog.Attr{slog.String("format_version", FormatVersion(c.version))}, c.attrs()...)

	return slog.GroupValue(attrs...)
}
