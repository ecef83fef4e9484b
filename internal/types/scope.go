package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// ChannelScope maps the channel roles of one community.
// An empty NSFWChannelID means the main channel is unrestricted.
type ChannelScope struct {
	CommunityID   string
	MainChannelID string
	NSFWChannelID string
}

// HasNSFW reports whether a dedicated NSFW channel is configured.
func (s ChannelScope) HasNSFW() bool {
	return s.NSFWChannelID != ""
}

type scopeRecord struct {
	Main Snowflake  `json:"main"`
	NSFW *Snowflake `json:"nsfw"`
}

// DecodeScopes parses the channel scope table keyed by community id.
// A bare integer value is the legacy form and means main channel only.
func DecodeScopes(data []byte) (map[string]ChannelScope, error) {
	var doc map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	scopes := make(map[string]ChannelScope, len(doc))
	for communityID, raw := range doc {
		raw = bytes.TrimSpace(raw)

		if len(raw) > 0 && raw[0] != '{' {
			main, err := flexString(raw)
			if err != nil {
				return nil, fmt.Errorf("community %s: %w", communityID, err)
			}

			if main == "" {
				continue
			}

			scopes[communityID] = ChannelScope{CommunityID: communityID, MainChannelID: main}

			continue
		}

		var record scopeRecord
		if err := sonic.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("community %s: %w", communityID, err)
		}

		scope := ChannelScope{CommunityID: communityID, MainChannelID: string(record.Main)}
		if record.NSFW != nil {
			scope.NSFWChannelID = string(*record.NSFW)
		}

		scopes[communityID] = scope
	}

	return scopes, nil
}

// EncodeScopes serializes the channel scope table in the object form.
func EncodeScopes(scopes map[string]ChannelScope) ([]byte, error) {
	doc := make(map[string]scopeRecord, len(scopes))
	for communityID, scope := range scopes {
		record := scopeRecord{Main: Snowflake(scope.MainChannelID)}
		if scope.HasNSFW() {
			nsfw := Snowflake(scope.NSFWChannelID)
			record.NSFW = &nsfw
		}

		doc[communityID] = record
	}

	return sonic.ConfigStd.MarshalIndent(doc, "", "    ")
}
