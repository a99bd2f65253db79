package service

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/jjenkins/revera/internal/model"
)

// ParseResult contains the listings decoded from a feed
type ParseResult struct {
	Listings []model.Listing
	Rejected []error
	Checksum string
}

// Parser decodes listing feeds
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a JSON array of listings, or an object with a "listings"
// array. Invalid or duplicate records are collected in Rejected and left out.
func (p *Parser) Parse(content []byte) (*ParseResult, error) {
	result := &ParseResult{
		Checksum: p.calculateChecksum(content),
	}

	raw, err := decodeRecords(content)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	for idx, r := range raw {
		var l model.Listing
		if err := json.Unmarshal(r, &l); err != nil {
			result.Rejected = append(result.Rejected, fmt.Errorf("record %d: %w", idx, err))
			continue
		}
		if err := l.Validate(); err != nil {
			result.Rejected = append(result.Rejected, fmt.Errorf("record %d: %w", idx, err))
			continue
		}
		if seen[l.ID] {
			result.Rejected = append(result.Rejected, fmt.Errorf("record %d: duplicate id %q", idx, l.ID))
			continue
		}
		seen[l.ID] = true
		result.Listings = append(result.Listings, l)
	}

	return result, nil
}

func decodeRecords(content []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty listings document")
	}

	var records []json.RawMessage
	if trimmed[0] == '{' {
		var wrapped struct {
			Listings []json.RawMessage `json:"listings"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode listings document: %w", err)
		}
		records = wrapped.Listings
	} else if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("failed to decode listings document: %w", err)
	}
	return records, nil
}

// calculateChecksum computes MD5 hash of content
func (p *Parser) calculateChecksum(content []byte) string {
	hash := md5.Sum(content)
	return hex.EncodeToString(hash[:])
}
