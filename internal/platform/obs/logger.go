package obs

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console logger at the given level ("debug", "info", ...)
// writing to w.
func NewLogger(w io.Writer, level string) (*zap.SugaredLogger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("new logger: parse level %q: %w", level, err)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		lvl,
	)

	return zap.New(core).Named("scenarios").Sugar(), nil
}

// Install makes logger the process-wide zap logger and returns a restore func.
func Install(logger *zap.SugaredLogger) func() {
	return zap.ReplaceGlobals(logger.Desugar())
}
