package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"anoa.com/proofofgrind/pkg/apperror"
)

const tokenURIPrefix = "data:application/json;base64,"

type tokenMetadata struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Attributes  []tokenAttribute `json:"attributes"`
}

type tokenAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// TokenURI renders the registration token's metadata as an inline data URI.
func (s *grinderService) TokenURI(tokenID uint64) (string, error) {
	s.mu.RLock()
	addr, ok := s.tokens[tokenID]
	rec := s.records[addr]
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: token %d", apperror.ErrNotFound, tokenID)
	}
	return encodeTokenURI(statsOf(rec))
}

func encodeTokenURI(st Stats) (string, error) {
	meta := tokenMetadata{
		Name:        fmt.Sprintf("Proof of Grind #%d", st.TokenID),
		Description: fmt.Sprintf("Grinder badge for %s. Grind daily, keep the streak alive.", st.Address),
		Attributes: []tokenAttribute{
			{TraitType: "Tier", Value: st.Tier.String()},
			{TraitType: "Total Grinds", Value: st.TotalGrinds},
			{TraitType: "Current Streak", Value: st.CurrentStreak},
			{TraitType: "Best Streak", Value: st.BestStreak},
			{TraitType: "Points", Value: st.Points},
		},
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode token metadata: %w", err)
	}
	return tokenURIPrefix + base64.StdEncoding.EncodeToString(raw), nil
}
