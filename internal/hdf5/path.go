package hdf5

import (
	"fmt"
	"path"
	"strings"
)

// ParseAttrPath splits "object@name" into the absolute object path and the
// attribute name. The object part may be relative and is cleaned, so
// "trees/@environment" names the environment attribute of /trees and
// "/@format_version" an attribute of the root group.
func ParseAttrPath(p string) (objectPath, attrName string, err error) {
	at := strings.LastIndexByte(p, '@')
	if at < 0 {
		return "", "", fmt.Errorf("%w: %q has no '@' before the attribute name", ErrInvalidPath, p)
	}
	attrName = p[at+1:]
	if attrName == "" {
		return "", "", fmt.Errorf("%w: %q names no attribute", ErrInvalidPath, p)
	}
	return path.Join("/", p[:at]), attrName, nil
}

// JoinAttrPath is the inverse of ParseAttrPath.
func JoinAttrPath(objectPath, attrName string) string {
	return path.Join("/", objectPath) + "@" + attrName
}

// SplitPath returns the non-empty components of a slash-separated path.
// The root, "/" or "", has none.
func SplitPath(p string) []string {
	parts := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	if parts == nil {
		return []string{}
	}
	return parts
}
