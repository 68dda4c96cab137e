package apiclient

import (
	"github.com/bytedance/sonic"
)

var codec = sonic.ConfigStd

func encode(v any) ([]byte, error) {
	return codec.Marshal(v)
}

func decode(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}
