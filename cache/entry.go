package cache

import (
	"encoding/json"
	"time"

	"github.com/civica/policyrag/core"
)

// payload is the JSON document stored in the external cache. Vectors are
// not cached; a cached result only needs what the caller sees.
type payload struct {
	Results   []payloadResult `json:"results"`
	CachedAt  time.Time       `json:"cachedAt"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type payloadResult struct {
	ID            uint64  `json:"id"`
	Text          string  `json:"text"`
	Source        string  `json:"source"`
	Position      int     `json:"position"`
	FinalScore    float64 `json:"finalScore"`
	Distance      float64 `json:"distance"`
	LocationScore float64 `json:"locationScore,omitempty"`
	BoostApplied  bool    `json:"boostApplied,omitempty"`
}

func encodePayload(results []core.RankedResult, now time.Time, ttl time.Duration) ([]byte, error) {
	p := payload{
		Results:   make([]payloadResult, 0, len(results)),
		CachedAt:  now.UTC(),
		ExpiresAt: now.Add(ttl).UTC(),
	}
	for _, res := range results {
		p.Results = append(p.Results, payloadResult{
			ID:            uint64(res.Chunk.ID),
			Text:          res.Chunk.Text,
			Source:        res.Chunk.Source,
			Position:      res.Chunk.Position,
			FinalScore:    res.FinalScore,
			Distance:      res.Distance,
			LocationScore: res.LocationScore,
			BoostApplied:  res.BoostApplied,
		})
	}
	return json.Marshal(p)
}

// decodePayload rebuilds results from a stored document. Expired
// payloads return ok=false.
func decodePayload(data []byte, now time.Time) ([]core.RankedResult, bool) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	if !p.ExpiresAt.After(now) {
		return nil, false
	}

	results := make([]core.RankedResult, 0, len(p.Results))
	for _, r := range p.Results {
		results = append(results, core.RankedResult{
			Chunk: &core.Chunk{
				ID:       core.ID(r.ID),
				Text:     r.Text,
				Source:   r.Source,
				Position: r.Position,
			},
			FinalScore:    r.FinalScore,
			Distance:      r.Distance,
			LocationScore: r.LocationScore,
			BoostApplied:  r.BoostApplied,
		})
	}
	return results, true
}
