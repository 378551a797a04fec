// Package cache 提供缓存与持久化共用的编解码及Redis连接配置
package cache

import (
	"errors"
	"reflect"

	jsoniter "github.com/json-iterator/go"
	"github.com/ugorji/go/codec"
)

var msgpackHandle = &codec.MsgpackHandle{}

// JSON 与标准库兼容的json-iterator配置
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

var errNilBytes = errors.New("nil bytes to decode")

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]interface{}(nil))
	msgpackHandle.RawToString = true
}

// MsgPackEncodeBytes encode data to bytes use msgpack
func MsgPackEncodeBytes(data interface{}) (bytes []byte, err error) {
	enc := codec.NewEncoderBytes(&bytes, msgpackHandle)
	err = enc.Encode(data)
	return
}

// MsgPackDecodeBytes decode bytes to dest use msgpack
func MsgPackDecodeBytes(bytes []byte, dest interface{}) (err error) {
	if len(bytes) == 0 {
		return errNilBytes
	}
	dec := codec.NewDecoderBytes(bytes, msgpackHandle)
	err = dec.Decode(dest)
	return
}

// JSONEncodeBytes encode data to indented json bytes
func JSONEncodeBytes(data interface{}) ([]byte, error) {
	return JSON.MarshalIndent(data, "", "    ")
}

// JSONDecodeBytes decode json bytes to dest
func JSONDecodeBytes(bytes []byte, dest interface{}) error {
	if len(bytes) == 0 {
		return errNilBytes
	}
	return JSON.Unmarshal(bytes, dest)
}
