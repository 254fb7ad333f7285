package config

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/qrbrand/internal/migrate"
)

func init() {
	migrate.Config.Register(migrate.Migration{
		Version:     2,
		Description: "split font settings into [font] and rename qr.ec",
		Upgrade:     upgradeV2,
	})
}

// upgradeV2 is the first schema change. Version 1 files kept the font path
// under [caption] as "font" and named the error correction level "ec".
func upgradeV2(data []byte) ([]byte, error) {
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse v1 config: %w", err)
	}

	if qr, ok := doc["qr"].(map[string]any); ok {
		if ec, ok := qr["ec"]; ok {
			if _, exists := qr["error_correction"]; !exists {
				qr["error_correction"] = ec
			}
			delete(qr, "ec")
		}
	}

	if caption, ok := doc["caption"].(map[string]any); ok {
		if file, ok := caption["font"]; ok {
			font, _ := doc["font"].(map[string]any)
			if font == nil {
				font = map[string]any{}
				doc["font"] = font
			}
			if _, exists := font["file"]; !exists {
				font["file"] = file
			}
			delete(caption, "font")
		}
	}

	doc["version"] = 2

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("encode v2 config: %w", err)
	}
	return buf.Bytes(), nil
}
