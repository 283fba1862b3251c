package logging

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ANSI escape codes for per-severity console coloring.
const (
	colorGrey   = "\033[37m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorRedBg  = "\033[41m"
	colorReset  = "\033[0m"
)

// levelColors maps each severity tier to a fixed terminal color. Levels
// absent from the map pass through uncolored.
var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel:  colorGrey,
	zapcore.InfoLevel:   colorCyan,
	zapcore.WarnLevel:   colorYellow,
	zapcore.ErrorLevel:  colorRed,
	zapcore.DPanicLevel: colorRedBg,
	zapcore.PanicLevel:  colorRedBg,
	zapcore.FatalLevel:  colorRedBg,
}

// timeLayout renders timestamps with millisecond precision, e.g.
// "2026-08-31 14:07:02,184".
const timeLayout = "2006-01-02 15:04:05,000"

// lineCore renders entries through the configured line template
// ({time}, {name}, {level}, {message} placeholders) and writes one line per
// entry to its sink. It implements zapcore.Core directly so the console and
// file sinks share the template while only the console gets colored.
type lineCore struct {
	zapcore.LevelEnabler
	out    zapcore.WriteSyncer
	format string
	color  bool
	fields []zapcore.Field
}

func newLineCore(out zapcore.WriteSyncer, enab zapcore.LevelEnabler, format string, color bool) *lineCore {
	return &lineCore{
		LevelEnabler: enab,
		out:          out,
		format:       format,
		color:        color,
	}
}

func (c *lineCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = make([]zapcore.Field, 0, len(c.fields)+len(fields))
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return &clone
}

func (c *lineCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *lineCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	_, err := c.out.Write([]byte(c.render(ent, fields)))
	return err
}

func (c *lineCore) Sync() error {
	return c.out.Sync()
}

// render produces the final log line, including structured fields appended
// as key=value pairs in stable order.
func (c *lineCore) render(ent zapcore.Entry, fields []zapcore.Field) string {
	line := strings.NewReplacer(
		"{time}", ent.Time.Format(timeLayout),
		"{name}", ent.LoggerName,
		"{level}", levelName(ent.Level),
		"{message}", ent.Message,
	).Replace(c.format)

	if len(c.fields) > 0 || len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}

		keys := make([]string, 0, len(enc.Fields))
		for k := range enc.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		sb.WriteString(line)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, enc.Fields[k])
		}
		line = sb.String()
	}

	if c.color {
		if color, ok := levelColors[ent.Level]; ok {
			line = color + line + colorReset
		}
	}

	return line + "\n"
}

// levelName reports the level's display name. The panic tiers all surface as
// CRITICAL, matching the severity vocabulary used in configuration.
func levelName(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return "CRITICAL"
	default:
		return level.CapitalString()
	}
}

func normalizeLevelName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
