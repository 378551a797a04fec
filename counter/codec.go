package counter

import (
	"fmt"
	"strings"

	"github.com/d0ngw/hitcounter/cache"
)

// Codec encode and decode the snapshot
type Codec interface {
	Name() string
	Marshal(s Snapshot) ([]byte, error)
	Unmarshal(data []byte) (Snapshot, error)
}

// Codec names
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
)

// JSONCodec is the default codec, a flat json object
type JSONCodec struct{}

// Name implements Codec.Name
func (JSONCodec) Name() string {
	return FormatJSON
}

// Marshal implements Codec.Marshal
func (JSONCodec) Marshal(s Snapshot) ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	return cache.JSONEncodeBytes(s)
}

// Unmarshal implements Codec.Unmarshal
func (JSONCodec) Unmarshal(data []byte) (Snapshot, error) {
	return decode(data, cache.JSONDecodeBytes)
}

// MsgPackCodec stores the snapshot as a msgpack map
type MsgPackCodec struct{}

// Name implements Codec.Name
func (MsgPackCodec) Name() string {
	return FormatMsgPack
}

// Marshal implements Codec.Marshal
func (MsgPackCodec) Marshal(s Snapshot) ([]byte, error) {
	if s == nil {
		s = Snapshot{}
	}
	return cache.MsgPackEncodeBytes(map[string]int64(s))
}

// Unmarshal implements Codec.Unmarshal
func (MsgPackCodec) Unmarshal(data []byte) (Snapshot, error) {
	return decode(data, cache.MsgPackDecodeBytes)
}

func decode(data []byte, decodeFunc func([]byte, interface{}) error) (Snapshot, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrMalformed)
	}
	var m map[string]int64
	if err := decodeFunc(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s := Snapshot(m)
	if s == nil {
		s = Snapshot{}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// CodecByName find the codec, empty name is json
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatJSON:
		return JSONCodec{}, nil
	case FormatMsgPack:
		return MsgPackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown persist format %q", name)
}
