package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind tells which variant an AttributeValue holds.
type ValueKind int

const (
	ValueOther ValueKind = iota
	ValueString
	ValueNumber
)

// AttributeValue is an NFT trait value: a string, a number, or anything else
// the metadata author put there (kept raw, scored as zero).
type AttributeValue struct {
	kind ValueKind
	str  string
	num  float64
	raw  json.RawMessage
}

// StringValue wraps s.
func StringValue(s string) AttributeValue { return AttributeValue{kind: ValueString, str: s} }

// NumberValue wraps f.
func NumberValue(f float64) AttributeValue { return AttributeValue{kind: ValueNumber, num: f} }

// Kind reports the held variant.
func (v AttributeValue) Kind() ValueKind { return v.kind }

// Number returns the numeric value when the attribute is a number.
func (v AttributeValue) Number() (float64, bool) { return v.num, v.kind == ValueNumber }

// Text returns the string value when the attribute is a string.
func (v AttributeValue) Text() (string, bool) { return v.str, v.kind == ValueString }

func (v AttributeValue) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return string(v.raw)
	}
}

// UnmarshalJSON accepts any JSON value.
func (v *AttributeValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty attribute value")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*v = NumberValue(f)
		return nil
	default:
		*v = AttributeValue{kind: ValueOther, raw: append(json.RawMessage(nil), b...)}
		return nil
	}
}

// MarshalJSON writes the value back in its original JSON form.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.str)
	case ValueNumber:
		return json.Marshal(v.num)
	default:
		if len(v.raw) == 0 {
			return []byte("null"), nil
		}
		return v.raw, nil
	}
}

// NFTAttribute is one trait of a token.
type NFTAttribute struct {
	TraitType string         `json:"trait_type"`
	Value     AttributeValue `json:"value"`
}

// NFTAttributeSet is a token's metadata document. Content is whatever the
// metadata URI served; nothing beyond JSON shape is validated.
type NFTAttributeSet struct {
	Name       string         `json:"name"`
	ImageURI   string         `json:"image"`
	Attributes []NFTAttribute `json:"attributes"`
}

// NFTToken is an ownership record returned by the indexer.
type NFTToken struct {
	OwnerAddress string `json:"owner_address"`
	CollectionID string `json:"collection_id"`
	TokenName    string `json:"token_name"`
	TokenURI     string `json:"token_uri"`
}
