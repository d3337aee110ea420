package glb

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/sceneforge/pkg/mesh"
)

func TestEncodeAlignment(t *testing.T) {
	out := Encode([]byte(`{"a":1}`), []byte{1, 2, 3, 4, 5})

	le := binary.LittleEndian
	assert.Equal(t, Magic, le.Uint32(out[0:]))
	assert.Equal(t, Version, le.Uint32(out[4:]))
	assert.Equal(t, uint32(len(out)), le.Uint32(out[8:]))
	assert.Zero(t, len(out)%4)

	jsonLen := le.Uint32(out[12:])
	assert.Equal(t, uint32(8), jsonLen)
	assert.Equal(t, ChunkJSON, le.Uint32(out[16:]))
	assert.Equal(t, `{"a":1} `, string(out[20:28]))

	assert.Equal(t, uint32(8), le.Uint32(out[28:]))
	assert.Equal(t, ChunkBIN, le.Uint32(out[32:]))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, out[36:44])
	assert.Len(t, out, 44)
}

func TestRoundTrip(t *testing.T) {
	jsonDoc := []byte(`{"asset":{"version":"2.0"}}`)
	bin := []byte{9, 8, 7, 6}

	c, err := Decode(Encode(jsonDoc, bin))
	require.NoError(t, err)
	assert.JSONEq(t, string(jsonDoc), string(c.JSON))
	assert.Equal(t, bin, c.BIN)
}

func TestDecodeErrors(t *testing.T) {
	valid := Encode([]byte(`{}`), []byte{1, 2, 3, 4})

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "nope")

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[4:], 1)

	binFirst := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(binFirst[16:], ChunkBIN)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", badMagic},
		{"bad version", badVersion},
		{"first chunk not json", binFirst},
		{"no bin chunk", Encode([]byte(`{}`), nil)},
		{"truncated", valid[:len(valid)-4]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(tt.data)
			assert.Nil(t, c)
			var ferr *mesh.FormatError
			require.Error(t, err)
			assert.True(t, errors.As(err, &ferr))
		})
	}
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	valid := Encode([]byte(`{}`), []byte{1, 2, 3, 4})
	// splice an unknown chunk between JSON and BIN
	extra := make([]byte, 12)
	binary.LittleEndian.PutUint32(extra[0:], 4)
	binary.LittleEndian.PutUint32(extra[4:], 0x12345678)
	data := append(append(append([]byte(nil), valid[:24]...), extra...), valid[24:]...)
	binary.LittleEndian.PutUint32(data[8:], uint32(len(data)))

	c, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, c.BIN)
}

func TestDecodeAcceptsUnpaddedLengths(t *testing.T) {
	data := Encode([]byte(`{"a":1}`), []byte{1, 2, 3, 4, 5})
	// rewrite both chunk lengths as the payload sizes before padding
	binary.LittleEndian.PutUint32(data[12:], 7)
	binary.LittleEndian.PutUint32(data[28:], 5)

	c, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(c.JSON))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, c.BIN)
}
