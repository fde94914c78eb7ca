package server

import "encoding/base64"

// emptyRDBBase64 is the canonical 88-byte empty-database RDB image for
// Redis 7.2 (spec §6). It is synthesized, never read from or written
// to disk; this server does no RDB/AOF persistence.
const emptyRDBBase64 = "UkVESVMwMDEx+glyZWRpcy12ZXIFNy4yLjD6CnJlZGlzLWJpdHPAQPoFY3RpbWXCbQi8ZfoIdXNlZC1tZW3CsMQQAPoIYW9mLWJhc2XAAP/wbjv+wP9aog=="

func emptyRDB() []byte {
	b, err := base64.StdEncoding.DecodeString(emptyRDBBase64)
	if err != nil {
		panic("invalid embedded RDB constant: " + err.Error())
	}
	return b
}
