package manifest

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Core deterministic encoding keeps equal manifests byte-equal in the store.
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(err)
	}
}

// Encode serializes the manifest into its private binary form. The result
// round-trips through Decode field for field, including the difference between
// nil and empty layers, urls and annotations.
func Encode(m Manifest) ([]byte, error) {
	return encMode.Marshal(m)
}

// Decode parses bytes produced by Encode. Any failure is reported as ErrDecode.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	if err := decMode.Unmarshal(data, &m); err != nil {
		return Manifest{}, NewErrDecode(err)
	}
	return m, nil
}
