package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats of the standard writer.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewConfig 返回默认日志配置
func NewConfig() Config {
	return Config{
		Level:        slog.LevelInfo,
		AddSource:    true,
		AttrReplacer: NormalizeSourceAttrReplacer(),
		StdFormat:    FormatText,
		StdWriter:    os.Stderr,
		Path:         "",
		MaxSize:      30,
		MaxAge:       0,
		MaxBackups:   0,
		Compress:     false,
	}
}

// Config 日志配置
type Config struct {
	// Level 日志输出级别, 默认为 LevelInfo
	Level slog.Level
	// AddSource 是否输出日志所在文件和位置
	AddSource bool
	// AttrReplacer 重写特定属性, 默认 NormalizeSourceAttrReplacer
	AttrReplacer AttrReplacer

	// StdFormat 标准输出的格式, 可选值: ["text", "json"]
	StdFormat string
	// StdWriter 标准输出的 io.Writer, 默认为 os.Stderr, stdout is left to command output
	StdWriter io.Writer

	// Path 日志文件路径, 如果为空表示不输出日志到文件
	Path string
	// MaxSize 单个日志文件最大体积, 单位为 MB, 超过该大小自动切分, 默认为 30 MB
	MaxSize int
	// MaxAge 日志文件最多保留的天数, 默认一直保留
	MaxAge int
	// MaxBackups 日志文件最多保留的个数, 默认一直保留
	MaxBackups int
	// Compress 是否压缩切片的日志文件, 默认不压缩
	Compress bool
}

// Validate checks the config before building a handler.
func (c *Config) Validate() error {
	switch c.StdFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unsupported log format %q, must be one of [%s, %s]", c.StdFormat, FormatText, FormatJSON)
	}
	if c.MaxSize < 0 || c.MaxAge < 0 || c.MaxBackups < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}
	return nil
}

// BuildHandler creates a new slog.Handler with config. The file output, if any,
// is always JSON.
func (c *Config) BuildHandler() slog.Handler {
	opts := c.buildHandlerOptions()
	stdWriter := c.StdWriter
	if stdWriter == nil {
		stdWriter = os.Stderr
	}

	stdCreator := TextHandlerCreator
	if c.StdFormat == FormatJSON {
		stdCreator = JSONHandlerCreator
	}
	handlers := []slog.Handler{
		NewLeveledHandlerCreator(stdCreator)(stdWriter, opts),
	}
	if fw := c.buildFileWriter(); fw != nil {
		handlers = append(handlers, NewLeveledHandlerCreator(JSONHandlerCreator)(fw, opts))
	}
	if len(handlers) == 1 {
		return handlers[0]
	}
	return MultiHandler(handlers...)
}

func (c *Config) buildFileWriter() io.Writer {
	if c.Path == "" {
		// 未设置日志文件路径
		return nil
	}
	return &lumberjack.Logger{
		Filename:   c.Path,
		MaxSize:    c.MaxSize,
		MaxAge:     c.MaxAge,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

func (c *Config) buildHandlerOptions() *slog.HandlerOptions {
	var replace func(groups []string, attr slog.Attr) slog.Attr
	if c.AttrReplacer != nil {
		replace = c.AttrReplacer
	}
	return &slog.HandlerOptions{
		AddSource:   c.AddSource,
		Level:       c.Level,
		ReplaceAttr: replace,
	}
}
