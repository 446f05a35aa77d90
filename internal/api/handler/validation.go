package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/gamerzord/latihan-magang-lms/internal/dto"
	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/pkg/response"
)

// 自定义校验标签
const (
	datetimeFlexTag     = "datetime_flex"
	scheduleCategoryTag = "schedule_category"
	notBlankTag         = "notblank"
)

var translator ut.Translator

// 注册到 gin 默认校验器，handler 包被引用即生效
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, translator)

	// 错误字段使用 json / form 标签名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return ""
	})

	_ = v.RegisterValidation(datetimeFlexTag, validateDateTimeFlex)
	_ = v.RegisterValidation(scheduleCategoryTag, validateScheduleCategory)
	// 仅含空白的文本会被 service 修剪为空串
	_ = v.RegisterValidation(notBlankTag, validators.NotBlank)

	registerTranslation(v, datetimeFlexTag, "{0} must be an RFC3339 timestamp or a YYYY-MM-DD date")
	registerTranslation(v, scheduleCategoryTag, "{0} must be one of study, exam, meeting, personal or other")
	registerTranslation(v, notBlankTag, "{0} must not be blank")
}

func registerTranslation(v *validator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func validateDateTimeFlex(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := dto.ParseDateTime(s, time.UTC, false)
	return err == nil
}

func validateScheduleCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.CategoryStudy, model.CategoryExam, model.CategoryMeeting, model.CategoryPersonal, model.CategoryOther:
		return true
	}
	return false
}

// bindError 将绑定失败统一输出为 422 字段错误
func bindError(c *gin.Context, err error) {
	if bodyTooLarge(c, err) {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			key := fe.Field()
			if _, exists := fields[key]; exists {
				continue
			}
			if translator != nil {
				fields[key] = fe.Translate(translator)
			} else {
				fields[key] = fe.Error()
			}
		}
		response.ValidationFailed(c, fields)
		return
	}
	response.ValidationFailed(c, map[string]string{"body": "请求体格式无效"})
}

// bodyTooLarge 请求体超出 BodyLimit 上限时写入 413
func bodyTooLarge(c *gin.Context, err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		response.TooLarge(c)
		return true
	}
	return false
}

// fieldError 单字段校验失败
func fieldError(c *gin.Context, field, msg string) {
	response.ValidationFailed(c, map[string]string{field: msg})
}
