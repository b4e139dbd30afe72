package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const cursorSeparator = ","

// EncodeCursor creates an opaque cursor string from the score and thread id
// of the last item on a page.
func EncodeCursor(score float64, threadID string) string {
	key := fmt.Sprintf("%s%s%s",
		strconv.FormatFloat(score, 'g', -1, 64), cursorSeparator, threadID)
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor parses the opaque cursor string back into score and thread id.
func DecodeCursor(encodedCursor string) (float64, string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(encodedCursor)
	if err != nil {
		return 0, "", fmt.Errorf("invalid cursor encoding: %w", err)
	}

	key := string(decodedBytes)
	parts := strings.SplitN(key, cursorSeparator, 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", fmt.Errorf("invalid cursor format")
	}

	score, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid score in cursor: %w", err)
	}

	return score, parts[1], nil
}
