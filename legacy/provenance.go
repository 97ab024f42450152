package legacy

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/carlmjohnson/versioninfo"
)

// Software names recorded in provenance documents.
const (
	legacySoftware  = "msprime"
	upgradeSoftware = "go-treeseq"
	unknownVersion  = "Unknown_version"
)

// provenanceDocument is the JSON shape of a provenance record. Field order
// is the order of the keys in the encoded record.
type provenanceDocument struct {
	Software    string         `json:"software"`
	Version     any            `json:"version"`
	Command     string         `json:"command"`
	Parameters  map[string]any `json:"parameters"`
	Environment map[string]any `json:"environment"`
}

// Diagnostic describes a provenance attribute that could not be decoded and
// was replaced by an empty document.
type Diagnostic struct {
	Field string
	Err   error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Field, d.Err)
}

// Translation is a provenance record rebuilt from legacy attributes.
type Translation struct {
	Record      []byte
	Diagnostics []Diagnostic
}

// TranslateProvenance builds a provenance record for command from the
// environment and parameters attributes of a version 2 group. Each attribute
// is expected to hold a JSON object; one that does not becomes an empty
// object and is reported in Diagnostics. The recorded version is the
// environment's msprime_version, or "Unknown_version".
func TranslateProvenance(command, environment, parameters string) Translation {
	var t Translation
	env, err := decodeObject(environment)
	if err != nil {
		t.Diagnostics = append(t.Diagnostics, Diagnostic{Field: "environment", Err: err})
	}
	params, err := decodeObject(parameters)
	if err != nil {
		t.Diagnostics = append(t.Diagnostics, Diagnostic{Field: "parameters", Err: err})
	}

	version, ok := env["msprime_version"]
	if !ok {
		version = unknownVersion
	}
	t.Record = encodeDocument(provenanceDocument{
		Software:    legacySoftware,
		Version:     version,
		Command:     command,
		Parameters:  params,
		Environment: env,
	})
	return t
}

// UpgradeProvenance builds the record appended to every loaded file, naming
// the format version it was converted from.
func UpgradeProvenance(major, minor int) []byte {
	return encodeDocument(provenanceDocument{
		Software: upgradeSoftware,
		Version:  versioninfo.Short(),
		Command:  "upgrade",
		Parameters: map[string]any{
			"source_version": []int{major, minor},
		},
		Environment: runtimeEnvironment(),
	})
}

func runtimeEnvironment() map[string]any {
	return map[string]any{
		"os": map[string]any{
			"system":  runtime.GOOS,
			"machine": runtime.GOARCH,
		},
		"go": map[string]any{
			"version": runtime.Version(),
		},
	}
}

// decodeObject decodes s as a JSON object. It always returns a non-nil map.
func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return map[string]any{}, err
	}
	if obj == nil {
		return map[string]any{}, fmt.Errorf("not a JSON object: %q", s)
	}
	return obj, nil
}

func encodeDocument(doc provenanceDocument) []byte {
	b, err := json.Marshal(doc)
	if err != nil {
		// Documents hold only values decoded from JSON or built here.
		panic(fmt.Sprintf("encoding provenance: %v", err))
	}
	return b
}
