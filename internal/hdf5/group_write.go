package hdf5

import (
	"fmt"
	"path"

	"github.com/robert-malhotra/go-treeseq/internal/message"
	"github.com/robert-malhotra/go-treeseq/internal/object"
)

// CreateGroup creates a new subgroup with the given name.
func (g *Group) CreateGroup(name string) (*Group, error) {
	if err := g.checkNewMember(name); err != nil {
		return nil, err
	}

	child := &Group{
		file:   g.file,
		parent: g,
		path:   path.Join(g.path, name),
	}
	// The address is filled in when the child's header is written.
	link := message.NewHardLink(name, 0)
	g.links = append(g.links, link)
	g.children = append(g.children, pendingGroup{link: link, group: child})
	return child, nil
}

// SetAttr attaches an attribute to the group, replacing any attribute with
// the same name. The value can be a scalar or slice of: int, int8-64,
// uint, uint8-64, float32, float64, string.
func (g *Group) SetAttr(name string, value interface{}) error {
	if !g.file.writable {
		return ErrReadOnly
	}
	if name == "" {
		return fmt.Errorf("attribute name cannot be empty")
	}

	attr, err := createAttributeMessage(name, value)
	if err != nil {
		return fmt.Errorf("creating attribute %q: %w", name, err)
	}
	if err := checkMessageSizes(g.file, []message.Encodable{attr}); err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}

	for i, existing := range g.attrs {
		if existing.Name == name {
			g.attrs[i] = attr
			return nil
		}
	}
	g.attrs = append(g.attrs, attr)
	return nil
}

// checkNewMember validates that a member with the given name can be added.
func (g *Group) checkNewMember(name string) error {
	if !g.file.writable {
		return ErrReadOnly
	}
	if g.file.closed {
		return ErrClosed
	}
	if name == "" {
		return fmt.Errorf("%w: member name cannot be empty", ErrInvalidPath)
	}
	for _, link := range g.links {
		if link.Name == name {
			return fmt.Errorf("%s: %w", path.Join(g.path, name), ErrExists)
		}
	}
	return nil
}

// writeHeader writes the headers of all subgroups, then this group's
// header holding its links and attributes, and returns its address.
func (g *Group) writeHeader() (uint64, error) {
	for _, c := range g.children {
		addr, err := c.group.writeHeader()
		if err != nil {
			return 0, err
		}
		c.link.Address = addr
	}

	msgs := object.GroupMessages(g.file.cfg, g.links)
	for _, attr := range g.attrs {
		msgs = append(msgs, attr)
	}
	addr, err := g.file.write(object.Encode(g.file.cfg, msgs), "object header")
	if err != nil {
		return 0, fmt.Errorf("group %s: %w", g.path, err)
	}
	return addr, nil
}
