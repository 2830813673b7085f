package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	val := new(T)
	err := json.Unmarshal(bz, val)
	if err != nil {
		return *val, eris.Wrap(err, "")
	}
	return *val, nil
}

func Encode(val any) ([]byte, error) {
	bz, err := json.Marshal(val)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

// DeepCopy clones a value through an encode/decode round trip so that slices,
// maps, and pointers in the copy share no backing storage with the original.
// Used by deep-clone columns when stamping default values into slots.
func DeepCopy[T any](val T) (T, error) {
	bz, err := Encode(val)
	if err != nil {
		return val, err
	}
	return Decode[T](bz)
}
