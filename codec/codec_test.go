package codec_test

import (
	"testing"

	"github.com/strata-engine/strata/assert"
	"github.com/strata-engine/strata/codec"
)

type payload struct {
	Name   string         `json:"name"`
	Counts []int          `json:"counts"`
	Lookup map[string]int `json:"lookup"`
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := payload{Name: "stat", Counts: []int{1, 2, 3}, Lookup: map[string]int{"a": 1}}

	bz, err := codec.Encode(in)
	assert.NilError(t, err)
	out, err := codec.Decode[payload](bz)
	assert.NilError(t, err)
	assert.DeepEqual(t, in, out)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	_, err := codec.Decode[payload]([]byte("not json"))
	assert.IsError(t, err)
}

func TestDeepCopyBreaksAliasing(t *testing.T) {
	original := payload{Name: "stat", Counts: []int{1, 2, 3}, Lookup: map[string]int{"a": 1}}

	clone, err := codec.DeepCopy(original)
	assert.NilError(t, err)
	assert.DeepEqual(t, original, clone)

	clone.Counts[0] = 99
	clone.Lookup["a"] = 99
	assert.Equal(t, original.Counts[0], 1)
	assert.Equal(t, original.Lookup["a"], 1)
}
