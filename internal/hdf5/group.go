package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/go-treeseq/internal/btree"
	"github.com/robert-malhotra/go-treeseq/internal/heap"
	"github.com/robert-malhotra/go-treeseq/internal/message"
	"github.com/robert-malhotra/go-treeseq/internal/object"
)

// Group represents an HDF5 group.
type Group struct {
	file   *File
	parent *Group
	path   string
	header *object.Header

	// Write support fields
	links    []*message.Link
	attrs    []*message.Attribute
	children []pendingGroup
}

// pendingGroup is a subgroup whose header is not yet written, and the
// link that will point at it.
type pendingGroup struct {
	link  *message.Link
	group *Group
}

// member is one entry of a group being read.
type member struct {
	name    string
	address uint64
	soft    bool
}

// Name returns the group name (last component of path).
func (g *Group) Name() string {
	if g.path == "/" {
		return "/"
	}
	return path.Base(g.path)
}

// Path returns the full path to this group.
func (g *Group) Path() string {
	return g.path
}

// OpenGroup opens a subgroup by relative path.
func (g *Group) OpenGroup(relativePath string) (*Group, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}

	group, ok := obj.(*Group)
	if !ok {
		return nil, fmt.Errorf("%s: %w", relativePath, ErrNotGroup)
	}
	return group, nil
}

// OpenDataset opens a dataset by relative path.
func (g *Group) OpenDataset(relativePath string) (*Dataset, error) {
	obj, err := g.open(relativePath)
	if err != nil {
		return nil, err
	}

	dataset, ok := obj.(*Dataset)
	if !ok {
		return nil, fmt.Errorf("%s: %w", relativePath, ErrNotDataset)
	}
	return dataset, nil
}

// HasMember reports whether the group has a direct member with the given name.
func (g *Group) HasMember(name string) bool {
	if g.header == nil {
		return false
	}
	_, err := g.findChild(name)
	return err == nil
}

// open opens an object by relative path, returning a *Group or *Dataset.
func (g *Group) open(relativePath string) (interface{}, error) {
	if g.header == nil {
		return nil, ErrWriteOnly
	}

	parts := SplitPath(relativePath)
	if len(parts) == 0 {
		return g, nil
	}

	current := g
	for i, name := range parts {
		fullPath := path.Join(current.path, name)
		addr, err := current.findChild(name)
		if err != nil {
			return nil, fmt.Errorf("finding %q: %w", fullPath, err)
		}

		header, err := object.Read(g.file.reader, addr)
		if err != nil {
			return nil, fmt.Errorf("reading object header of %q: %w", fullPath, err)
		}

		if header.IsDataset() {
			if i == len(parts)-1 {
				return newDataset(g.file, fullPath, header)
			}
			return nil, fmt.Errorf("%q: %w", fullPath, ErrNotGroup)
		}
		current = &Group{file: g.file, parent: current, path: fullPath, header: header}
	}

	return current, nil
}

// findChild finds a child object by name and returns its header address.
// Only hard links are followed.
func (g *Group) findChild(name string) (uint64, error) {
	members, err := g.members()
	if err != nil {
		return 0, err
	}
	for _, m := range members {
		if m.name != name {
			continue
		}
		if m.soft {
			return 0, fmt.Errorf("soft link %q: %w", name, ErrUnsupported)
		}
		return m.address, nil
	}
	return 0, ErrNotFound
}

// members lists the group's links. New-style groups keep them in link
// messages; old-style groups in a symbol table B-tree.
func (g *Group) members() ([]member, error) {
	if info := g.header.LinkInfo(); info != nil && info.Dense(g.file.cfg) {
		return nil, fmt.Errorf("%w: dense link storage in %s", ErrUnsupported, g.path)
	}

	var members []member
	for _, link := range g.header.Links() {
		members = append(members, member{name: link.Name, address: link.Address, soft: !link.IsHard()})
	}
	if len(members) > 0 {
		return members, nil
	}

	symTable := g.symbolTable()
	if symTable == nil {
		return nil, nil
	}
	names, err := heap.ReadLocal(g.file.reader, symTable.LocalHeapAddress)
	if err != nil {
		return nil, fmt.Errorf("reading local heap: %w", err)
	}
	entries, err := btree.ReadGroup(g.file.reader, symTable.BTreeAddress, names)
	if err != nil {
		return nil, fmt.Errorf("reading B-tree: %w", err)
	}
	for _, e := range entries {
		members = append(members, member{name: e.Name, address: e.Address, soft: e.Soft})
	}
	return members, nil
}

// symbolTable returns the v1 symbol table of the group, falling back to the
// superblock scratch pad for the root group. It returns nil for v2 groups.
func (g *Group) symbolTable() *message.SymbolTable {
	if st := g.header.SymbolTable(); st != nil {
		return st
	}
	sb := g.file.superblock
	if g.path == "/" && sb.RootGroupBTreeAddress != 0 {
		return &message.SymbolTable{
			BTreeAddress:     sb.RootGroupBTreeAddress,
			LocalHeapAddress: sb.RootGroupLocalHeapAddress,
		}
	}
	return nil
}

// Members returns the names of all members (groups and datasets) in this group.
func (g *Group) Members() ([]string, error) {
	if g.header == nil {
		return nil, ErrWriteOnly
	}
	members, err := g.members()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.name
	}
	return names, nil
}

// Attrs returns the attribute names for this group.
func (g *Group) Attrs() []string {
	if g.header == nil {
		return nil
	}
	return attrNames(g.header)
}

// Attr returns an attribute by name, or nil if not found.
func (g *Group) Attr(name string) *Attribute {
	if g.header == nil {
		return nil
	}
	return findAttr(g.file, g.header, name)
}

// HasAttr returns true if the group has an attribute with the given name.
func (g *Group) HasAttr(name string) bool {
	return g.Attr(name) != nil
}

func attrNames(h *object.Header) []string {
	var names []string
	for _, a := range h.Attributes() {
		names = append(names, a.Name)
	}
	return names
}

func findAttr(f *File, h *object.Header, name string) *Attribute {
	for _, a := range h.Attributes() {
		if a.Name == name {
			return &Attribute{msg: a, decoder: f.decoder()}
		}
	}
	return nil
}
