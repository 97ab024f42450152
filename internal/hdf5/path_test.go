package hdf5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttrPath(t *testing.T) {
	tests := []struct {
		path       string
		wantObject string
		wantAttr   string
		joined     string
	}{
		{"/@format_version", "/", "format_version", "/@format_version"},
		{"@format_version", "/", "format_version", "/@format_version"},
		{"/trees@environment", "/trees", "environment", "/trees@environment"},
		{"trees/@environment", "/trees", "environment", "/trees@environment"},
		{"/trees/nodes/time@units", "/trees/nodes/time", "units", "/trees/nodes/time@units"},
		{"mutations@parameters", "/mutations", "parameters", "/mutations@parameters"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			obj, attr, err := ParseAttrPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantObject, obj)
			assert.Equal(t, tt.wantAttr, attr)
			assert.Equal(t, tt.joined, JoinAttrPath(obj, attr))
		})
	}
}

func TestParseAttrPathErrors(t *testing.T) {
	for _, p := range []string{"", "/trees/no/at", "/trees@"} {
		_, _, err := ParseAttrPath(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestSplitPath(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{}, SplitPath("/"))
	assert.Equal([]string{}, SplitPath(""))
	assert.Equal([]string{"trees"}, SplitPath("/trees"))
	assert.Equal([]string{"trees", "nodes"}, SplitPath("/trees/nodes/"))
	assert.Equal([]string{"trees", "nodes"}, SplitPath("trees//nodes"))
}
