package ml

import (
	"encoding/json"

	"sampahkita/pkg/errors"
)

// Artifact kinds, also used as file name prefixes
const (
	KindScaler      = "scaler"
	KindReducer     = "pca"
	KindPartitioner = "kmeans"
)

// ArtifactKinds lists the three files of a bundle in load order
var ArtifactKinds = []string{KindScaler, KindReducer, KindPartitioner}

const formatVersion = 1

type envelope struct {
	Kind    string          `json:"kind"`
	Version int             `json:"format_version"`
	Year    int             `json:"year"`
	Params  json.RawMessage `json:"params"`
}

// EncodeArtifact serializes one fitted object. encoding/json writes float64
// in shortest round-trip form, so decoding restores the exact parameters.
func EncodeArtifact(kind string, year int, params interface{}) ([]byte, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s params", kind)
	}
	data, err := json.MarshalIndent(envelope{
		Kind:    kind,
		Version: formatVersion,
		Year:    year,
		Params:  raw,
	}, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s artifact", kind)
	}
	return data, nil
}

// DecodeArtifact parses an artifact of the expected kind into params and returns its year
func DecodeArtifact(data []byte, kind string, params interface{}) (int, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, errors.Wrapf(err, "decode %s artifact", kind)
	}
	if env.Kind != kind {
		return 0, errors.Newf("artifact kind is %q, want %q", env.Kind, kind)
	}
	if env.Version != formatVersion {
		return 0, errors.Newf("%s artifact format version %d is not supported", kind, env.Version)
	}
	if err := json.Unmarshal(env.Params, params); err != nil {
		return 0, errors.Wrapf(err, "decode %s params", kind)
	}
	return env.Year, nil
}

// Encode serializes all three artifacts keyed by kind
func (b *Bundle) Encode() (map[string][]byte, error) {
	out := make(map[string][]byte, len(ArtifactKinds))
	objects := map[string]interface{}{
		KindScaler:      b.Scaler,
		KindReducer:     b.Reducer,
		KindPartitioner: b.Partitioner,
	}
	for _, kind := range ArtifactKinds {
		data, err := EncodeArtifact(kind, b.Year, objects[kind])
		if err != nil {
			return nil, err
		}
		out[kind] = data
	}
	return out, nil
}

// DecodeBundle rebuilds a bundle from the three artifact payloads
func DecodeBundle(files map[string][]byte) (*Bundle, error) {
	b := &Bundle{
		Scaler:      &StandardScaler{},
		Reducer:     &PCA{},
		Partitioner: &KMeans{},
	}
	targets := map[string]interface{}{
		KindScaler:      b.Scaler,
		KindReducer:     b.Reducer,
		KindPartitioner: b.Partitioner,
	}
	for i, kind := range ArtifactKinds {
		data, ok := files[kind]
		if !ok {
			return nil, errors.Newf("missing %s artifact", kind)
		}
		year, err := DecodeArtifact(data, kind, targets[kind])
		if err != nil {
			return nil, err
		}
		if i == 0 {
			b.Year = year
		} else if year != b.Year {
			return nil, errors.Newf("%s artifact is for year %d, scaler for %d", kind, year, b.Year)
		}
	}
	return b, nil
}
