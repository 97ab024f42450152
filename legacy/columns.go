package legacy

import (
	"errors"
	"log/slog"
	"math"
	"path"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
)

func openColumn(g *hdf5.Group, name string) (*hdf5.Dataset, error) {
	ds, err := g.OpenDataset(name)
	if err != nil {
		return nil, malformed("%s: %v", path.Join(g.Path(), name), err)
	}
	return ds, nil
}

// readFloats reads the float column g/name.
func readFloats(g *hdf5.Group, name string) ([]float64, error) {
	ds, err := openColumn(g, name)
	if err != nil {
		return nil, err
	}
	vals, err := ds.ReadFloat64()
	if err != nil {
		return nil, malformed("%v", err)
	}
	return vals, nil
}

// readInts reads the integer column g/name, which may be stored with any
// integer width.
func readInts(g *hdf5.Group, name string) ([]int32, error) {
	ds, err := openColumn(g, name)
	if err != nil {
		return nil, err
	}
	return intValues(ds)
}

// readMatrix reads the two-dimensional integer column g/name, which must
// have cols columns, flattened in row-major order.
func readMatrix(g *hdf5.Group, name string, cols uint64) ([]int32, error) {
	ds, err := openColumn(g, name)
	if err != nil {
		return nil, err
	}
	if shape := ds.Shape(); len(shape) != 2 || shape[1] != cols {
		return nil, malformed("%s has shape %v, want [n %d]", ds.Path(), shape, cols)
	}
	return intValues(ds)
}

// intValues reads an integer dataset and checks that every value fits in
// an int32.
func intValues(ds *hdf5.Dataset) ([]int32, error) {
	if !ds.IsInteger() {
		return nil, malformed("%s is %s, want an integer column", ds.Path(), ds.TypeName())
	}
	wide, err := ds.ReadInt64()
	if err != nil {
		return nil, malformed("%v", err)
	}
	vals := make([]int32, len(wide))
	for j, v := range wide {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, malformed("%s[%d] = %d out of range", ds.Path(), j, v)
		}
		vals[j] = int32(v)
	}
	return vals, nil
}

// readStrings reads the string column g/name.
func readStrings(g *hdf5.Group, name string) ([]string, error) {
	ds, err := openColumn(g, name)
	if err != nil {
		return nil, err
	}
	vals, err := ds.ReadString()
	if err != nil {
		return nil, malformed("%v", err)
	}
	return vals, nil
}

// sameLength checks that every column named in lens has n rows.
func sameLength(group string, n int, lens map[string]int) error {
	for name, l := range lens {
		if l != n {
			return malformed("%s/%s has %d rows, want %d", group, name, l, n)
		}
	}
	return nil
}

// translateGroupProvenance rebuilds the provenance record of a version 2
// group from its environment and parameters attributes. An attribute that
// cannot be read or decoded counts as an empty object; the problem is
// logged and does not fail the load.
func translateGroupProvenance(g *hdf5.Group, command string, logger *slog.Logger) []byte {
	env, params := "{}", "{}"
	var diags []Diagnostic
	for _, field := range []struct {
		name string
		dest *string
	}{{"environment", &env}, {"parameters", &params}} {
		attr := g.Attr(field.name)
		if attr == nil {
			diags = append(diags, Diagnostic{Field: field.name, Err: errors.New("attribute missing")})
			continue
		}
		s, err := attr.ReadScalarString()
		if err != nil {
			diags = append(diags, Diagnostic{Field: field.name, Err: err})
			continue
		}
		*field.dest = s
	}

	t := TranslateProvenance(command, env, params)
	for _, d := range append(diags, t.Diagnostics...) {
		logger.Warn("malformed provenance attribute",
			"group", g.Path(),
			"command", command,
			"field", d.Field,
			"error", d.Err,
		)
	}
	return t.Record
}
