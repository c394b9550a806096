package settings

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/streamgate/corebridge/internal/sgerrors"
)

// ssgatePayload is the JSON document embedded, base64-encoded, inside each
// exported ssgate: line.
type ssgatePayload struct {
	Remark  string     `json:"remark,omitempty"`
	Domain  string      `json:"domain"`
	Country string      `json:"country,omitempty"`
	Socks   *SocksAuth  `json:"socks,omitempty"`
}

const ssgatePrefix = "ssgate:"

// ExportConfigs renders every saved configuration as one ssgate: line, in
// list order.
func ExportConfigs(configs []SavedConfig) []string {
	lines := make([]string, 0, len(configs))
	for _, c := range configs {
		payload := ssgatePayload{
			Remark:  string(c.Remark),
			Domain:  string(c.Domain),
			Country: string(c.Country),
			Socks:   c.Socks,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		encoded := base64.StdEncoding.EncodeToString(data)
		lines = append(lines, fmt.Sprintf("%s%s//%s", ssgatePrefix, c.Remark, encoded))
	}
	return lines
}

// ImportResult reports how many lines parsed and how many did not.
type ImportResult struct {
	Imported []SavedConfig
	Errors   int
}

// ImportConfigs parses one or more newline-separated ssgate: lines. Bad
// lines increment Errors without aborting the remaining ones, and every
// successfully parsed entry is appended with a freshly minted id — imported
// entries are never deduplicated against existing ones.
func ImportConfigs(text string) (ImportResult, error) {
	var result ImportResult

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, ssgatePrefix)

		remarkPrefix, b64, ok := strings.Cut(line, "//")
		if !ok {
			result.Errors++
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			result.Errors++
			continue
		}

		var payload ssgatePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			result.Errors++
			continue
		}
		if payload.Domain == "" {
			result.Errors++
			continue
		}

		// The JSON-level remark wins when present; the ssgate:<prefix>
		// literal is only a fallback for payloads that omit it. See
		// DESIGN.md for why this precedence is intentional, not a bug.
		remark := payload.Remark
		if remark == "" {
			remark = remarkPrefix
		}

		result.Imported = append(result.Imported, SavedConfig{
			ID:      NewConfigID(),
			Remark:  NullString(remark),
			Domain:  NullString(payload.Domain),
			Country: NullString(payload.Country),
			Socks:   payload.Socks,
		})
	}

	if len(result.Imported) == 0 && result.Errors > 0 {
		return result, sgerrors.New(sgerrors.KindConfig, "no valid ssgate configurations found")
	}
	return result, nil
}
