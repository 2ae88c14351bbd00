package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 返回 key:message 形式的错误映射，供前端按字段展示
func (v ValidErrors) MapsToString() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// BindAndValid 绑定并校验请求参数
// 校验失败时返回翻译后的错误列表
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors
	err := c.ShouldBind(v)
	if err != nil {
		verrs, isValidatorErr := err.(val.ValidationErrors)
		if !isValidatorErr {
			errs = append(errs, &ValidError{Key: "body", Message: err.Error()})
			return false, errs
		}

		trans, hasTrans := c.Value("trans").(ut.Translator)
		if hasTrans {
			for key, value := range verrs.Translate(trans) {
				errs = append(errs, &ValidError{Key: key, Message: value})
			}
		} else {
			for _, fe := range verrs {
				errs = append(errs, &ValidError{Key: fe.Field(), Message: fe.Error()})
			}
		}
		return false, errs
	}

	return true, nil
}
