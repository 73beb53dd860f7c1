package fallback

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MinImageCount / MaxImageCount bound every generation request.
	MinImageCount = 1
	MaxImageCount = 4
)

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value interface{}, fallback string) string {
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	return fallback
}

// ClampImageCount coerces whatever the client sent for numberOfImages into
// [1,4]. Fractions round to nearest, garbage becomes 1.
func ClampImageCount(value interface{}) int {
	n := MinImageCount
	switch v := value.(type) {
	case float64:
		n = int(math.Round(v))
	case float32:
		n = int(math.Round(float64(v)))
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			n = int(math.Round(f))
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			n = int(math.Round(f))
		}
	}
	if n < MinImageCount {
		return MinImageCount
	}
	if n > MaxImageCount {
		return MaxImageCount
	}
	return n
}

// SplitDataURL splits a data:image/...;base64,XXXX value into its MIME type
// and raw base64 payload. Plain base64 input passes through with a PNG
// default.
func SplitDataURL(value string) (mimeType, encoded string) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "data:") {
		return "image/png", value
	}
	comma := strings.Index(value, ",")
	if comma < 0 {
		return "image/png", ""
	}
	header := value[len("data:"):comma]
	encoded = value[comma+1:]
	mimeType = strings.TrimSuffix(header, ";base64")
	if mimeType == "" {
		mimeType = "image/png"
	}
	return mimeType, encoded
}

// DecodeImageInput decodes one client-supplied photo (data URL or bare
// base64) into bytes plus MIME type.
func DecodeImageInput(value string) (mimeType string, data []byte, err error) {
	mimeType, encoded := SplitDataURL(value)
	if encoded == "" {
		return "", nil, fmt.Errorf("empty image payload")
	}
	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return mimeType, data, nil
}

// TruncateEncoded chops an encoded payload down to budget bytes, aligned to
// a base64 quantum so the prefix still decodes. Lossy stopgap, not
// compression: the tail of the image is simply gone.
func TruncateEncoded(encoded string, budget int) string {
	if budget <= 0 || len(encoded) <= budget {
		return encoded
	}
	cut := budget - budget%4
	return encoded[:cut]
}
