package counter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecByName(t *testing.T) {
	for name, expect := range map[string]string{"": FormatJSON, "json": FormatJSON, " JSON ": FormatJSON, "msgpack": FormatMsgPack} {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		assert.Equal(t, expect, codec.Name())
	}
	_, err := CodecByName("xml")
	assert.Error(t, err)
}

func TestCodecs(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgPackCodec{}} {
		data, err := codec.Marshal(Snapshot{"foo": 3, "bar": 0, "计数": 1 << 40})
		require.NoError(t, err, codec.Name())
		s, err := codec.Unmarshal(data)
		require.NoError(t, err, codec.Name())
		assert.Equal(t, Snapshot{"foo": 3, "bar": 0, "计数": 1 << 40}, s)

		data, err = codec.Marshal(nil)
		require.NoError(t, err)
		s, err = codec.Unmarshal(data)
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Empty(t, s)

		_, err = codec.Unmarshal(nil)
		assert.True(t, errors.Is(err, ErrMalformed))
	}
}

func TestJSONCodecFormat(t *testing.T) {
	data, err := JSONCodec{}.Marshal(Snapshot{"foo": 3})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"foo": 3`)

	s, err := JSONCodec{}.Unmarshal([]byte(`{"foo": 3, "bar": 0}`))
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"foo": 3, "bar": 0}, s)

	s, err = JSONCodec{}.Unmarshal([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = JSONCodec{}.Unmarshal([]byte(`{"foo": -3}`))
	assert.True(t, errors.Is(err, ErrMalformed))
	_, err = JSONCodec{}.Unmarshal([]byte(`{"": 3}`))
	assert.True(t, errors.Is(err, ErrMalformed))
}
