package manifest

import (
	"github.com/opencontainers/go-digest"
)

// Descriptor is an immutable reference to a piece of content.
type Descriptor struct {
	// MediaType is the media type of the referenced content.
	MediaType string `json:"mediaType" cbor:"1,keyasint"`

	// Digest is the digest of the targeted content.
	Digest digest.Digest `json:"digest" cbor:"2,keyasint"`

	// Size specifies the size in bytes of the blob.
	Size int64 `json:"size" cbor:"3,keyasint"`

	// URLs specifies a list of URLs from which this object MAY be downloaded.
	URLs []string `json:"urls" cbor:"4,keyasint"`

	// Annotations contains arbitrary metadata relating to the targeted content.
	Annotations map[string]string `json:"annotations" cbor:"5,keyasint"`
}

// Manifest is the stored image manifest.
//
// Its identity for storage purposes is the digest of its config, see
// [Manifest.Digest]. Tags pointing at it are kept apart as aliases.
type Manifest struct {
	// SchemaVersion is the image manifest schema that this image follows.
	SchemaVersion int `json:"schemaVersion" cbor:"1,keyasint"`

	// MediaType specifies the type of this document data structure.
	MediaType string `json:"mediaType" cbor:"2,keyasint"`

	// Config references a configuration object for a container, by digest.
	Config Descriptor `json:"config" cbor:"3,keyasint"`

	// Layers is an indexed list of layers referenced by the manifest, base
	// layer first.
	Layers []Descriptor `json:"layers" cbor:"4,keyasint"`

	// Annotations contains arbitrary metadata for the image manifest.
	Annotations map[string]string `json:"annotations" cbor:"5,keyasint"`
}

// Digest returns the canonical digest the manifest is stored and aliased under.
func (m Manifest) Digest() digest.Digest {
	return m.Config.Digest
}

// Size sums the sizes of all layers, ignoring negative values.
func (m Manifest) Size() int64 {
	var size int64
	for i := range m.Layers {
		if m.Layers[i].Size < 0 {
			continue
		}
		size += m.Layers[i].Size
	}
	return size
}
