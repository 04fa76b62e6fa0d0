package extract

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// fallbackEncodings are tried in order when a text file is not valid UTF-8.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"latin1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
	{"utf16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
}

// extractPlainText reads a text file, retrying a fixed list of legacy
// encodings when the content is not valid UTF-8. The method tag records which
// decode succeeded.
func extractPlainText(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: read text file: %v", ErrLoadFailed, err)
	}
	if utf8.Valid(data) {
		return string(data), "direct_read", nil
	}
	for _, fb := range fallbackEncodings {
		decoded, err := fb.enc.NewDecoder().Bytes(data)
		if err != nil || !utf8.Valid(decoded) {
			continue
		}
		return string(decoded), "direct_read_" + fb.name, nil
	}
	return "", "", fmt.Errorf("%w: could not decode text file", ErrLoadFailed)
}
