// Package encoding converts the legacy EUC-KR text stored in fixed-length
// name fields of game asset files.
package encoding

import (
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 decodes EUC-KR bytes. Bytes that fail to decode are returned as-is.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToEUCKR encodes s as EUC-KR. Text with no EUC-KR form is returned unchanged.
func UTF8ToEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// TruncateEUCKR cuts data to at most n bytes without splitting a two-byte character.
func TruncateEUCKR(data []byte, n int) []byte {
	if len(data) <= n {
		return data
	}
	i := 0
	for i < n {
		step := 1
		if data[i] >= 0x80 {
			step = 2
		}
		if i+step > n {
			break
		}
		i += step
	}
	return data[:i]
}
