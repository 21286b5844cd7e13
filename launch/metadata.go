package launch

import (
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/krazyTry/launchpad-go/shared"
)

// TokenMetadata is the display identity of a launched token.
type TokenMetadata struct {
	Name   string
	Symbol string
	URI    string
}

// ParseTokenMetadata validates raw metadata JSON and extracts the fields the
// launchpad cares about. Unknown fields are ignored.
func ParseTokenMetadata(raw []byte) (*TokenMetadata, error) {
	const op = "launch.ParseTokenMetadata"
	if !gjson.ValidBytes(raw) {
		return nil, shared.ConfigErrf(op, "metadata is not valid JSON")
	}

	name := gjson.GetBytes(raw, "name")
	symbol := gjson.GetBytes(raw, "symbol")
	uri := gjson.GetBytes(raw, "uri")

	if !name.Exists() || name.String() == "" {
		return nil, shared.ConfigErrf(op, "metadata name missing")
	}
	if !symbol.Exists() || symbol.String() == "" {
		return nil, shared.ConfigErrf(op, "metadata symbol missing")
	}
	if !uri.Exists() || uri.String() == "" {
		return nil, shared.ConfigErrf(op, "metadata uri missing")
	}
	if n := utf8.RuneCountInString(name.String()); n > shared.MaxMetadataNameLen {
		return nil, shared.ConfigErrf(op, "metadata name length %d exceeds %d", n, shared.MaxMetadataNameLen)
	}
	if n := utf8.RuneCountInString(symbol.String()); n > shared.MaxMetadataSymbolLen {
		return nil, shared.ConfigErrf(op, "metadata symbol length %d exceeds %d", n, shared.MaxMetadataSymbolLen)
	}
	if n := len(uri.String()); n > shared.MaxMetadataURILen {
		return nil, shared.ConfigErrf(op, "metadata uri length %d exceeds %d", n, shared.MaxMetadataURILen)
	}

	return &TokenMetadata{
		Name:   name.String(),
		Symbol: symbol.String(),
		URI:    uri.String(),
	}, nil
}
