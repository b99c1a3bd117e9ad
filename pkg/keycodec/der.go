package keycodec

// DER tags used when framing a PKCS#8 PrivateKeyInfo by hand.
const (
	tagInteger     byte = 0x02
	tagOctetString byte = 0x04
	tagSequence    byte = 0x30
)

var (
	// INTEGER 0
	pkcs8Version = []byte{tagInteger, 0x01, 0x00}

	// SEQUENCE { OID 1.2.840.113549.1.1.1 (rsaEncryption), NULL }
	rsaEncryptionAlgorithm = []byte{
		tagSequence, 0x0d,
		0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x01,
		0x05, 0x00,
	}
)

// WrapPKCS1AsPKCS8 frames a DER encoded PKCS#1 RSAPrivateKey as a PKCS#8 PrivateKeyInfo:
//
//	SEQUENCE { INTEGER 0, SEQUENCE { rsaEncryption, NULL }, OCTET STRING { pkcs1 } }
//
// Both length fields are computed from the actual payload size and switch to the
// DER long form once a length reaches 128 bytes.
func WrapPKCS1AsPKCS8(pkcs1 []byte) []byte {
	privateKey := encodeTLV(tagOctetString, pkcs1)

	body := make([]byte, 0, len(pkcs8Version)+len(rsaEncryptionAlgorithm)+len(privateKey))
	body = append(body, pkcs8Version...)
	body = append(body, rsaEncryptionAlgorithm...)
	body = append(body, privateKey...)

	return encodeTLV(tagSequence, body)
}

func encodeTLV(tag byte, content []byte) []byte {
	length := encodeLength(len(content))
	out := make([]byte, 0, 1+len(length)+len(content))
	out = append(out, tag)
	out = append(out, length...)
	return append(out, content...)
}

// encodeLength returns the DER length octets for n.
func encodeLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var octets []byte
	for v := n; v > 0; v >>= 8 {
		octets = append([]byte{byte(v)}, octets...)
	}
	return append([]byte{0x80 | byte(len(octets))}, octets...)
}
