package logger

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// Setup 按运行环境初始化全局日志：dev 输出彩色控制台格式，其余输出 JSON
func Setup(env, level string) {
	setup(env, level, os.Stderr)
}

func setup(env, level string, out io.Writer) {
	var writer log.Writer = &log.IOWriter{Writer: out}
	if env == "" || env == "dev" {
		writer = &log.ConsoleWriter{
			Writer:         out,
			ColorOutput:    out == os.Stderr,
			EndWithMessage: true,
		}
	}

	lvl := log.InfoLevel
	if level != "" {
		lvl = log.ParseLevel(level)
	}
	log.DefaultLogger = log.Logger{
		Level:      lvl,
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     writer,
	}
}
