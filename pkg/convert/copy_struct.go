package convert

import (
	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

// CopyStruct 按字段名将 source 拷贝到 target
func CopyStruct(target interface{}, source interface{}) error {
	if err := copier.Copy(target, source); err != nil {
		return errors.Wrap(err, "copy struct failed")
	}
	return nil
}

// StructToJSON 将结构体序列化为 JSON 字符串
func StructToJSON(v interface{}) (string, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshal struct failed")
	}
	return string(data), nil
}

// JSONToStruct 将 JSON 字符串反序列化到结构体
func JSONToStruct(data string, v interface{}) error {
	if err := sonic.Unmarshal([]byte(data), v); err != nil {
		return errors.Wrap(err, "unmarshal struct failed")
	}
	return nil
}
