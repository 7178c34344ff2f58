// Command resp3dump decodes RESP3 messages from a file, a hex literal or
// stdin and prints each decoded value tree.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	resp3decoder "github.com/raniellyferreira/resp3-inmemory-decoder"
	"github.com/raniellyferreira/resp3-inmemory-decoder/lua"
	"github.com/raniellyferreira/resp3-inmemory-decoder/protocol"
)

func main() {
	var hexFlag = flag.String("hex", "", "Decode a hex-encoded message literal instead of reading a file")
	var compactFlag = flag.Bool("compact", false, "Print one line per message instead of an indented tree")
	var sumFlag = flag.Bool("sum", false, "Print the content digest of each message")
	var maxDepthFlag = flag.Int("max-depth", 0, "Maximum aggregate nesting depth (0 = unlimited)")
	var scriptFlag = flag.String("script", "", "Run a Lua script against each decoded message")
	var verboseFlag = flag.Bool("v", false, "Enable debug logging")
	var versionFlag = flag.Bool("version", false, "Print version information")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: resp3dump [flags] [file]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reads complete RESP3 messages from the file argument, a -hex literal,")
		fmt.Fprintln(os.Stderr, "or stdin, and prints each decoded value tree.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *versionFlag {
		info := resp3decoder.VersionInfo()
		fmt.Printf("resp3dump %s\n", info["version"])
		if commit, ok := info["commit"]; ok {
			fmt.Printf("  commit: %s\n", commit)
		}
		if built, ok := info["buildTime"]; ok {
			fmt.Printf("  built:  %s\n", built)
		}
		os.Exit(0)
	}

	level := zerolog.WarnLevel
	if *verboseFlag {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "resp3dump").Logger().Level(level)

	buf, err := readInput(*hexFlag, flag.Arg(0))
	if err != nil {
		logger.Error().Err(err).Msg("failed to read input")
		os.Exit(1)
	}
	if len(buf) == 0 {
		logger.Warn().Msg("empty input")
		return
	}

	var engine *lua.Engine
	var script string
	if *scriptFlag != "" {
		data, err := os.ReadFile(*scriptFlag)
		if err != nil {
			logger.Error().Err(err).Msg("failed to read script")
			os.Exit(1)
		}
		engine = lua.NewEngine()
		script = string(data)
	}

	dec, err := resp3decoder.New(
		resp3decoder.WithMaxDepth(*maxDepthFlag),
		resp3decoder.WithLogger(&zerologAdapter{logger: logger}),
	)
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	reader := dec.Reader(buf)
	index := 0
	for reader.Remaining() > 0 {
		start := reader.Offset()
		value, err := reader.ReadNext()
		if err != nil {
			logger.Error().Err(err).Int("message", index+1).Msg("decode failed")
			os.Exit(1)
		}
		end := reader.Offset()
		index++

		var verdict string
		if engine != nil {
			result, err := engine.Eval(script, value)
			if err != nil {
				logger.Error().Err(err).Int("message", index).Msg("script failed")
				os.Exit(1)
			}
			verdict = formatVerdict(result)
		}

		if *compactFlag {
			line := fmt.Sprintf("[%d:%d] %s %s", start, end, value.Type, value)
			if *sumFlag {
				line += fmt.Sprintf(" sum=%016x", value.Sum64())
			}
			if engine != nil {
				line += " script=" + verdict
			}
			fmt.Println(line)
			continue
		}

		fmt.Printf("--- message %d: bytes %d-%d\n", index, start, end)
		fmt.Println(protocol.Render(value))
		if *sumFlag {
			fmt.Printf("sum: %016x\n", value.Sum64())
		}
		if engine != nil {
			fmt.Printf("script: %s\n", verdict)
		}
	}

	logger.Debug().Int("messages", index).Int("bytes", len(buf)).Msg("done")
}

// readInput resolves the message bytes from the hex literal, the file
// argument, or stdin, in that order of precedence.
func readInput(hexLiteral, path string) ([]byte, error) {
	if hexLiteral != "" {
		return parseHex(hexLiteral)
	}
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

// parseHex decodes a hex literal, ignoring whitespace so dumps can be
// pasted with their original line breaks.
func parseHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex literal: %w", err)
	}
	return data, nil
}

// formatVerdict renders a script result for display
func formatVerdict(result interface{}) string {
	switch v := result.(type) {
	case nil:
		return "nil"
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// zerologAdapter bridges the library's Logger interface onto zerolog
type zerologAdapter struct {
	logger zerolog.Logger
}

func (a *zerologAdapter) Debug(msg string, fields ...resp3decoder.Field) {
	a.emit(a.logger.Debug(), msg, fields)
}

func (a *zerologAdapter) Info(msg string, fields ...resp3decoder.Field) {
	a.emit(a.logger.Info(), msg, fields)
}

func (a *zerologAdapter) Error(msg string, fields ...resp3decoder.Field) {
	a.emit(a.logger.Error(), msg, fields)
}

func (a *zerologAdapter) emit(event *zerolog.Event, msg string, fields []resp3decoder.Field) {
	for _, f := range fields {
		event = event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}
