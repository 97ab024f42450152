package hdf5

import (
	"errors"
	"path"
)

// WalkFunc is called for each object during traversal.
// obj is either *Group or *Dataset; err is any error encountered opening it.
// Return nil to continue walking, SkipGroup to skip the members of a group,
// or any other error to stop.
type WalkFunc func(path string, obj interface{}, err error) error

// SkipGroup can be returned from a WalkFunc called with a *Group to skip its
// members.
var SkipGroup = errors.New("skip this group")

// Walk traverses all groups and datasets in the hierarchy starting from g,
// including g itself, in member order.
//
// Example:
//
//	Walk(root, func(path string, obj interface{}, err error) error {
//	    if err != nil {
//	        return err
//	    }
//	    if ds, ok := obj.(*Dataset); ok {
//	        fmt.Println(path, ds.Shape())
//	    }
//	    return nil
//	})
func Walk(g *Group, fn WalkFunc) error {
	err := walkGroup(g, fn)
	if errors.Is(err, SkipGroup) {
		return nil
	}
	return err
}

func walkGroup(g *Group, fn WalkFunc) error {
	if err := fn(g.Path(), g, nil); err != nil {
		return err
	}

	members, err := g.Members()
	if err != nil {
		return err
	}

	for _, name := range members {
		childPath := path.Join(g.Path(), name)

		obj, err := g.open(name)
		if err != nil {
			if err := fn(childPath, nil, err); err != nil {
				return err
			}
			continue
		}

		switch o := obj.(type) {
		case *Group:
			if err := walkGroup(o, fn); err != nil && !errors.Is(err, SkipGroup) {
				return err
			}
		case *Dataset:
			if err := fn(childPath, o, nil); err != nil {
				return err
			}
		}
	}

	return nil
}

// AttrInfo contains information about an attribute during walking.
type AttrInfo struct {
	// Path is the full attribute path (e.g., "/trees@environment")
	Path string

	// ObjectPath is the path to the object containing this attribute
	ObjectPath string

	// Name is the attribute name
	Name string

	// Attr provides access to the full attribute for detailed reading
	Attr *Attribute

	// Value contains the auto-read attribute value (nil on read error)
	Value interface{}

	// Err contains any error from reading the attribute value
	Err error
}

// WalkAttrsFunc is the callback function type for WalkAttrs.
// Return nil to continue walking, or an error to stop.
type WalkAttrsFunc func(info AttrInfo) error

// WalkAttrs recursively walks all attributes of groups and datasets in the file.
func (f *File) WalkAttrs(fn WalkAttrsFunc) error {
	if f.closed {
		return ErrClosed
	}
	return Walk(f.root, func(p string, obj interface{}, err error) error {
		if err != nil {
			return nil
		}
		var holder interface {
			attributeHolder
			Attrs() []string
		}
		switch o := obj.(type) {
		case *Group:
			holder = o
		case *Dataset:
			holder = o
		default:
			return nil
		}
		for _, name := range holder.Attrs() {
			attr := holder.Attr(name)
			info := AttrInfo{
				Path:       JoinAttrPath(p, name),
				ObjectPath: p,
				Name:       name,
				Attr:       attr,
			}
			info.Value, info.Err = attr.Value()
			if err := fn(info); err != nil {
				return err
			}
		}
		return nil
	})
}
