package places

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rendis/gridplaces/internal/model"
)

type detailResponse struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Result       json.RawMessage `json:"result"`
}

// PlaceDetail fetches one place. Every failure is logged and reported as
// absent; it never aborts the caller's batch.
func (c *Client) PlaceDetail(ctx context.Context, placeID string, fields []string, language string) (*model.RawDetail, bool) {
	log := c.log.With().Str("place_id", placeID).Logger()
	key := DetailCacheKey(language, fields, placeID)

	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key)
		if err != nil {
			log.Debug().Err(err).Msg("CACHE_MISS")
		} else if d, ok := decodeDetail(cached); ok {
			log.Debug().Msg("CACHE_HIT")
			return d, true
		}
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(fields, ","))
	if language != "" {
		params.Set("language", language)
	}

	var resp detailResponse
	if err := c.getJSON(ctx, "details", params, &resp); err != nil {
		log.Error().Err(err).Msg("DETAIL_FAILED")
		return nil, false
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		log.Warn().Str("status", resp.Status).Msg("DETAIL_ABSENT")
		return nil, false
	default:
		log.Error().Err(&APIError{Status: resp.Status, Message: resp.ErrorMessage}).Msg("DETAIL_FAILED")
		return nil, false
	}

	d, ok := decodeDetail(resp.Result)
	if !ok {
		log.Error().Msg("DETAIL_MALFORMED")
		return nil, false
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, resp.Result); err != nil {
			log.Debug().Err(err).Msg("CACHE_SET_FAILED")
		}
	}
	return d, true
}

// decodeDetail rejects payloads without a place_id, including a null result.
func decodeDetail(data []byte) (*model.RawDetail, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var d model.RawDetail
	if err := json.Unmarshal(data, &d); err != nil || d.PlaceID == "" {
		return nil, false
	}
	return &d, true
}
