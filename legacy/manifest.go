package legacy

import (
	"errors"
	"fmt"
	"path"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
)

// manifest lists the groups, columns and attributes a format version reads.
// Checking it up front turns a missing piece into ErrMalformedFile before
// any column is decoded.
type manifest []groupSchema

// groupSchema describes one group. Path is relative to the root; "" is the
// root itself. Datasets and Attrs are required whenever the group exists.
type groupSchema struct {
	Path     string
	Required bool
	Datasets []string
	Optional []string
	Attrs    []string
}

var v2Manifest = manifest{
	{
		Path:     "trees",
		Required: true,
		Datasets: []string{"node", "left", "right", "time", "population", "children"},
		Attrs:    []string{"environment", "parameters"},
	},
	{
		Path:     "samples",
		Datasets: []string{"population"},
		Optional: []string{"time"},
	},
	{
		Path:     "mutations",
		Datasets: []string{"position", "node"},
		Attrs:    []string{"environment", "parameters"},
	},
}

var v3Manifest = manifest{
	{
		Path:     "",
		Optional: []string{"provenance"},
	},
	{
		Path:     "trees",
		Required: true,
		Datasets: []string{"breakpoints"},
	},
	{
		Path:     "trees/nodes",
		Required: true,
		Datasets: []string{"time", "population"},
	},
	{
		Path:     "trees/records",
		Required: true,
		Datasets: []string{"left", "right", "node", "num_children", "children"},
	},
	{
		Path:     "trees/indexes",
		Datasets: []string{"insertion_order", "removal_order"},
	},
	{
		Path:     "mutations",
		Datasets: []string{"position", "node"},
	},
}

// check verifies that root holds every required member of the manifest.
func (m manifest) check(root *hdf5.Group) error {
	for _, gs := range m {
		g, err := root.OpenGroup(gs.Path)
		if err != nil {
			if errors.Is(err, hdf5.ErrNotFound) && !gs.Required {
				continue
			}
			return fmt.Errorf("%w: group /%s: %v", ErrMalformedFile, gs.Path, err)
		}
		for _, name := range gs.Datasets {
			if !g.HasMember(name) {
				return malformed("missing column %s", path.Join("/", gs.Path, name))
			}
		}
		for _, name := range gs.Attrs {
			if !g.HasAttr(name) {
				return malformed("missing attribute %s", hdf5.JoinAttrPath(path.Join("/", gs.Path), name))
			}
		}
	}
	return nil
}
