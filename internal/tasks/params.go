package tasks

import (
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/iceymoss/go-task-dropbox/internal/core"
)

// DecodeParams 把 map 参数解码到 out（mapstructure tag），未声明的字段返回 UnknownArgumentError
func DecodeParams(taskName string, params map[string]any, out any) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		Metadata:         &md,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return err
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return &core.UnknownArgumentError{Task: taskName, Args: md.Unused}
	}
	return nil
}
