package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/trendline/schema"
	"github.com/rs/zerolog/log"
)

// Color variables for console output.
var (
	BlockerColor  = color.New(color.FgRed, color.Bold)     // BlockerColor represents standard danger.
	CriticalColor = color.New(color.FgMagenta, color.Bold) // CriticalColor represents strong, distinct warning.
	MajorColor    = color.New(color.FgYellow)              // MajorColor represents standard caution, not bold.
	MinorColor    = color.New(color.FgCyan)                // MinorColor represents informational signal.
)

// GetColorSeverity returns a colored severity label for console output (table).
func GetColorSeverity(s schema.Severity) string {
	text := string(s)
	switch s {
	case schema.BlockerSeverity:
		return BlockerColor.Sprint(text)
	case schema.CriticalSeverity:
		return CriticalColor.Sprint(text)
	case schema.MajorSeverity:
		return MajorColor.Sprint(text)
	case schema.MinorSeverity:
		return MinorColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.Error().Err(err).Msg(msg)
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message.
func LogWarn(msg string, err error) {
	log.Warn().Err(err).Msg(msg)
}

// GetDBFilePath returns the path to the default SQLite DB file.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trendline.db"
	}
	return filepath.Join(homeDir, ".trendline.db")
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TruncatePath truncates a component key to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave space for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
