package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressible(n int) []byte {
	return bytes.Repeat([]byte("chunkvec page "), n/14+1)[:n]
}

func TestEncodeDecode(t *testing.T) {
	inputs := map[string][]byte{
		"empty":        {},
		"small":        []byte("abc"),
		"compressible": compressible(4096),
	}
	for _, typ := range []Type{None, LZ4, ZSTD} {
		for name, data := range inputs {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				block, err := Encode(data, typ)
				require.NoError(t, err)

				got, n, err := Decode(block, typ)
				require.NoError(t, err)
				assert.Equal(t, len(block), n)
				assert.Equal(t, data, got)

				got, err = ReadBlock(bytes.NewReader(block), typ)
				require.NoError(t, err)
				assert.Equal(t, data, got)
			})
		}
	}
}

func TestEncode_Shrinks(t *testing.T) {
	data := compressible(64 << 10)
	for _, typ := range []Type{LZ4, ZSTD} {
		block, err := Encode(data, typ)
		require.NoError(t, err)
		assert.Less(t, len(block), len(data)/2, typ.String())
	}

	stored, err := Encode(data, None)
	require.NoError(t, err)
	assert.Len(t, stored, HeaderSize+len(data))
}

func TestDecode_Corrupt(t *testing.T) {
	block, err := Encode(compressible(4096), ZSTD)
	require.NoError(t, err)

	_, _, err = Decode(block[:4], ZSTD)
	assert.ErrorIs(t, err, ErrCorruptBlock)

	_, _, err = Decode(block[:len(block)-1], ZSTD)
	assert.ErrorIs(t, err, ErrCorruptBlock)

	_, err = ReadBlock(bytes.NewReader(block[:len(block)-1]), ZSTD)
	assert.ErrorIs(t, err, ErrCorruptBlock)

	_, _, err = Decode(block, None)
	assert.ErrorIs(t, err, ErrCorruptBlock)
}

func TestType(t *testing.T) {
	assert.True(t, ZSTD.Valid())
	assert.False(t, Type(9).Valid())
	assert.Equal(t, "compress.Type(9)", Type(9).String())

	_, err := Encode([]byte("x"), Type(9))
	assert.Error(t, err)
}
