package manifest

import (
	"encoding/json"

	"github.com/opencontainers/image-spec/specs-go"
	imgspecv1 "github.com/opencontainers/image-spec/specs-go/v1"
)

// Parse parses an OCI image manifest document as pushed by clients.
func Parse(content []byte) (Manifest, error) {
	var raw imgspecv1.Manifest
	if err := json.Unmarshal(content, &raw); err != nil {
		return Manifest{}, NewErrInvalidField("malformed manifest: %v", err)
	}
	if raw.SchemaVersion <= 0 {
		return Manifest{}, NewErrInvalidField("schemaVersion must be positive, got %d", raw.SchemaVersion)
	}
	if raw.Config.Digest == "" {
		return Manifest{}, NewErrInvalidField("config.digest is required")
	}
	return FromOCI(raw), nil
}

// FromOCI converts an image-spec manifest into the stored representation.
func FromOCI(m imgspecv1.Manifest) Manifest {
	var layers []Descriptor
	if m.Layers != nil {
		layers = make([]Descriptor, 0, len(m.Layers))
		for _, layer := range m.Layers {
			layers = append(layers, descriptorFromOCI(layer))
		}
	}
	return Manifest{
		SchemaVersion: m.SchemaVersion,
		MediaType:     m.MediaType,
		Config:        descriptorFromOCI(m.Config),
		Layers:        layers,
		Annotations:   m.Annotations,
	}
}

// ToOCI converts the stored representation into an image-spec manifest.
func ToOCI(m Manifest) imgspecv1.Manifest {
	var layers []imgspecv1.Descriptor
	if m.Layers != nil {
		layers = make([]imgspecv1.Descriptor, 0, len(m.Layers))
		for _, layer := range m.Layers {
			layers = append(layers, layer.ToOCI())
		}
	}
	return imgspecv1.Manifest{
		Versioned:   specs.Versioned{SchemaVersion: m.SchemaVersion},
		MediaType:   m.MediaType,
		Config:      m.Config.ToOCI(),
		Layers:      layers,
		Annotations: m.Annotations,
	}
}

// ToOCI converts the descriptor into an image-spec descriptor.
func (d Descriptor) ToOCI() imgspecv1.Descriptor {
	return imgspecv1.Descriptor{
		MediaType:   d.MediaType,
		Digest:      d.Digest,
		Size:        d.Size,
		URLs:        d.URLs,
		Annotations: d.Annotations,
	}
}

func descriptorFromOCI(d imgspecv1.Descriptor) Descriptor {
	return Descriptor{
		MediaType:   d.MediaType,
		Digest:      d.Digest,
		Size:        d.Size,
		URLs:        d.URLs,
		Annotations: d.Annotations,
	}
}
