package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Everforest Dark palette, reduced to what the console output needs
const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorTime   = "\x1b[38;5;107m"
	colorName   = "\x1b[38;5;208m"
	colorKey    = "\x1b[38;5;109m"
	colorWarn   = "\x1b[38;5;179m"
	colorWarnBg = "\x1b[48;5;58m"
	colorErr    = "\x1b[38;5;167m"
	colorErrBg  = "\x1b[48;5;52m"
)

// useColor toggles ANSI colors in console output
var useColor = true

// SetColor enables or disables ANSI colors in console output
func SetColor(enabled bool) {
	useColor = enabled
}

var bufferPool = buffer.NewPool()

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  walker  Node visited  node_id=0x... kind=struct"
//
// Context fields (added via With) live in the embedded map encoder and are
// printed, sorted by key, after the entry's own fields.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: clone}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(paint(colorTime, ent.Time.Format("15:04:05")))

	// Level: only show for WARN/ERROR and above
	if ent.Level > zapcore.InfoLevel || ent.Level == zapcore.DebugLevel {
		final.AppendString("  ")
		final.AppendString(levelString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(paint(colorName, abbreviateName(ent.LoggerName)))
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	pairs := make([]string, 0, len(fields)+len(enc.Fields))
	for _, field := range fields {
		if field.Type == zapcore.SkipType {
			continue
		}
		pairs = append(pairs, formatPair(field.Key, fieldValue(field)))
	}

	contextKeys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		contextKeys = append(contextKeys, k)
	}
	sort.Strings(contextKeys)
	for _, k := range contextKeys {
		pairs = append(pairs, formatPair(k, enc.Fields[k]))
	}

	if len(pairs) > 0 {
		final.AppendString("  ")
		final.AppendString(strings.Join(pairs, " "))
	}

	final.AppendString("\n")
	return final, nil
}

// fieldValue materializes a zap field through a throwaway map encoder so
// that every field type (arrays, objects, errors) renders.
func fieldValue(field zapcore.Field) interface{} {
	m := zapcore.NewMapObjectEncoder()
	field.AddTo(m)
	if v, ok := m.Fields[field.Key]; ok {
		return v
	}
	// zap.Error stores under "error" regardless of the field key
	for _, v := range m.Fields {
		return v
	}
	return ""
}

func formatPair(key string, value interface{}) string {
	return paint(colorKey, key) + "=" + fmt.Sprintf("%v", value)
}

func paint(color, s string) string {
	if !useColor {
		return s
	}
	return color + s + colorReset
}

// levelString returns the level label, bold with background for WARN/ERROR
func levelString(level zapcore.Level) string {
	switch {
	case level == zapcore.WarnLevel:
		return paint(colorBold+colorWarnBg+colorWarn, "WARN")
	case level >= zapcore.ErrorLevel:
		return paint(colorBold+colorErrBg+colorErr, level.CapitalString())
	default:
		return level.CapitalString()
	}
}

// abbreviateName shortens component names: python.synth -> p.synth
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}
