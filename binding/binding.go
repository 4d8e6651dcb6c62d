package binding

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// 在排版之前把文本中的 ${path} 占位符替换为调用方提供的数据，
// 用于歌词、倒计时一类的动态字幕。路径段以 . 分隔，纯数字段按
// 下标访问序列。数据缺失或路径不存在时保留原占位符。

var placeholder = regexp.MustCompile(`\$\{([^{}]+)\}`)

// Interpolate 替换 text 中的全部占位符。data 为 nil 时原样返回。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		val, ok := lookup(data, strings.Split(path, "."))
		if !ok {
			return match
		}
		return fmt.Sprint(val)
	})
}

// lookup 沿路径段逐层下钻。
func lookup(data any, segments []string) (any, bool) {
	current := data
	for _, seg := range segments {
		if idx, err := strconv.Atoi(seg); err == nil {
			next, ok := index(current, idx)
			if !ok {
				return nil, false
			}
			current = next
			continue
		}
		next, ok := field(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func field(data any, key string) (any, bool) {
	switch m := data.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	}
	// 结构体字段按导出名匹配，方便直接绑定配置对象
	rv := reflect.ValueOf(data)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		f := rv.FieldByName(key)
		if f.IsValid() && f.CanInterface() {
			return f.Interface(), true
		}
	}
	return nil, false
}

func index(data any, idx int) (any, bool) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if idx < 0 || idx >= rv.Len() {
		return nil, false
	}
	return rv.Index(idx).Interface(), true
}
