package keycodec

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLength(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x80}},
		{255, []byte{0x81, 0xff}},
		{256, []byte{0x82, 0x01, 0x00}},
		{65535, []byte{0x82, 0xff, 0xff}},
		{65536, []byte{0x83, 0x01, 0x00, 0x00}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, encodeLength(tt.n), "length %d", tt.n)
	}
}

func TestWrapPKCS1AsPKCS8_ShortFormFixture(t *testing.T) {
	got := WrapPKCS1AsPKCS8([]byte{0x01, 0x02})

	want := []byte{
		0x30, 0x16,
		0x02, 0x01, 0x00,
		0x30, 0x0d, 0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x01, 0x05, 0x00,
		0x04, 0x02, 0x01, 0x02,
	}
	assert.Equal(t, want, got)
}

func TestWrapPKCS1AsPKCS8_LongFormHeaders(t *testing.T) {
	tests := []struct {
		name        string
		payloadLen  int
		outerHeader []byte
		octetHeader []byte
	}{
		// 3 + 15 + 2 + 100 = 120 still fits the short form
		{"short form", 100, []byte{0x30, 0x78}, []byte{0x04, 0x64}},
		// 3 + 15 + 3 + 200 = 221
		{"one length octet", 200, []byte{0x30, 0x81, 0xdd}, []byte{0x04, 0x81, 0xc8}},
		// 3 + 15 + 4 + 300 = 322
		{"two length octets", 300, []byte{0x30, 0x82, 0x01, 0x42}, []byte{0x04, 0x82, 0x01, 0x2c}},
		// 3 + 15 + 5 + 70000 = 70023
		{"three length octets", 70000, []byte{0x30, 0x83, 0x01, 0x11, 0x87}, []byte{0x04, 0x83, 0x01, 0x11, 0x70}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.payloadLen)
			got := WrapPKCS1AsPKCS8(payload)

			require.Equal(t, tt.outerHeader, got[:len(tt.outerHeader)])
			octetAt := len(tt.outerHeader) + len(pkcs8Version) + len(rsaEncryptionAlgorithm)
			assert.Equal(t, tt.octetHeader, got[octetAt:octetAt+len(tt.octetHeader)])
			assert.Len(t, got, octetAt+len(tt.octetHeader)+tt.payloadLen)
		})
	}
}

func TestWrapPKCS1AsPKCS8_MatchesStandardLibrary(t *testing.T) {
	sizes := []int{1024, 2048, 4096}
	for _, bits := range sizes {
		if bits > 2048 && testing.Short() {
			continue
		}
		key, err := rsa.GenerateKey(rand.Reader, bits)
		require.NoError(t, err)

		want, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)

		got := WrapPKCS1AsPKCS8(x509.MarshalPKCS1PrivateKey(key))
		assert.Equal(t, want, got, "%d bit key", bits)

		parsed, err := x509.ParsePKCS8PrivateKey(got)
		require.NoError(t, err)
		assert.True(t, key.Equal(parsed))
	}
}

func TestWrapPKCS1AsPKCS8_CorruptedLengthFails(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	wrapped := WrapPKCS1AsPKCS8(x509.MarshalPKCS1PrivateKey(key))

	// A 2048 bit key needs two length octets for both the outer sequence and the octet string.
	require.Equal(t, []byte{0x30, 0x82}, wrapped[:2])
	const octetAt = 4 + 3 + 15
	require.Equal(t, []byte{0x04, 0x82}, wrapped[octetAt:octetAt+2])

	tests := []struct {
		name     string
		lengthAt int
		delta    int
	}{
		{"octet string one byte short", octetAt + 2, -1},
		{"octet string one byte long", octetAt + 2, 1},
		{"outer sequence one byte short", 2, -1},
		{"outer sequence one byte long", 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corrupted := append([]byte(nil), wrapped...)
			n := int(corrupted[tt.lengthAt])<<8 | int(corrupted[tt.lengthAt+1])
			n += tt.delta
			corrupted[tt.lengthAt] = byte(n >> 8)
			corrupted[tt.lengthAt+1] = byte(n)

			_, err := privateKeyFromPKCS8(corrupted, EncodingPKCS1)
			assert.Error(t, err)
		})
	}
}
