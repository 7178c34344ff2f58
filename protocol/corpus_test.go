package protocol_test

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raniellyferreira/resp3-inmemory-decoder/protocol"
)

type corpusCase struct {
	Name   string `toml:"name"`
	Input  string `toml:"input"`
	Type   string `toml:"type"`
	Render string `toml:"render"`
}

type corpusFailure struct {
	Name   string `toml:"name"`
	Input  string `toml:"input"`
	Error  string `toml:"error"`
	Offset int    `toml:"offset"`
}

type corpus struct {
	Decode []corpusCase    `toml:"decode"`
	Fail   []corpusFailure `toml:"fail"`
}

// sentinelByName maps the corpus error labels onto the taxonomy sentinels
var sentinelByName = map[string]error{
	"end-of-message":                          protocol.ErrEndOfMessage,
	"expected-length":                         protocol.ErrExpectedLength,
	"invalid-character":                       protocol.ErrInvalidCharacter,
	"expected-crlf":                           protocol.ErrExpectedCRLF,
	"expected-eol":                            protocol.ErrExpectedEOL,
	"unexpected-character-after-null":         protocol.ErrUnexpectedCharacterAfterNull,
	"invalid-verbatim-string-format":          protocol.ErrInvalidVerbatimStringFormat,
	"invalid-character-after-verbatim-format": protocol.ErrInvalidCharacterAfterVerbatimFormat,
	"push-zero-length":                        protocol.ErrPushZeroLength,
	"push-expected-string":                    protocol.ErrPushExpectedString,
	"illegal-push-position":                   protocol.ErrIllegalPushPosition,
	"internal":                                protocol.ErrInternal,
	"unsupported":                             protocol.ErrUnsupported,
	"max-depth-exceeded":                      protocol.ErrMaxDepthExceeded,
}

func TestCorpus(t *testing.T) {
	var c corpus
	_, err := toml.DecodeFile("testdata/corpus.toml", &c)
	require.NoError(t, err)
	require.NotEmpty(t, c.Decode)
	require.NotEmpty(t, c.Fail)

	for _, tc := range c.Decode {
		t.Run("decode/"+tc.Name, func(t *testing.T) {
			reader := protocol.NewReader([]byte(tc.Input))
			value, err := reader.ReadNext()
			require.NoError(t, err)

			assert.Equal(t, tc.Type, value.Type.String())
			assert.Equal(t, tc.Render, protocol.Render(value))
			assert.Zero(t, reader.Remaining(), "message should be fully consumed")
			assert.NoError(t, value.Validate())
		})
	}

	for _, tc := range c.Fail {
		t.Run("fail/"+tc.Name, func(t *testing.T) {
			want, ok := sentinelByName[tc.Error]
			require.True(t, ok, "unknown error label %q", tc.Error)

			reader := protocol.NewReader([]byte(tc.Input))
			_, err := reader.ReadNext()
			require.Error(t, err)
			assert.ErrorIs(t, err, want)

			var de *protocol.DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.Offset, de.Offset)
		})
	}
}
