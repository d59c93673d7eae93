package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rendis/gridplaces/internal/model"
)

// NearbyRequest is one tile's search.
type NearbyRequest struct {
	Point     model.GridPoint
	Radius    int
	Keyword   string
	PlaceType string
	Language  string
}

type searchResponse struct {
	Status        string `json:"status"`
	ErrorMessage  string `json:"error_message"`
	NextPageToken string `json:"next_page_token"`
	Results       []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

// NearbySearch collects place IDs around req.Point, following up to MaxPages
// pages. A failure on the first page is returned; a failure on a later page
// is logged and the IDs gathered so far are returned.
func (c *Client) NearbySearch(ctx context.Context, req NearbyRequest) (*IDSet, error) {
	ids := NewIDSet()
	log := c.log.With().Int("row", req.Point.Row).Int("col", req.Point.Col).Logger()

	params := url.Values{}
	params.Set("location", req.Point.Location())
	params.Set("radius", strconv.Itoa(req.Radius))
	if req.Keyword != "" {
		params.Set("keyword", req.Keyword)
	}
	if req.PlaceType != "" {
		params.Set("type", req.PlaceType)
	}
	if req.Language != "" {
		params.Set("language", req.Language)
	}

	for page := 1; page <= MaxPages; page++ {
		resp, err := c.searchPage(ctx, params)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			log.Warn().Err(err).Int("page", page).Int("ids", ids.Len()).Msg("PAGE_FAILED keeping partial results")
			return ids, nil
		}

		for _, r := range resp.Results {
			ids.Add(r.PlaceID)
		}
		log.Debug().Int("page", page).Int("results", len(resp.Results)).Msg("PAGE")

		if resp.NextPageToken == "" || page == MaxPages {
			break
		}

		// The token only becomes valid after a short delay.
		if err := sleep(ctx, c.pageTokenDelay); err != nil {
			log.Warn().Err(err).Int("page", page+1).Msg("PAGE_FAILED keeping partial results")
			return ids, nil
		}
		params = url.Values{}
		params.Set("pagetoken", resp.NextPageToken)
	}
	return ids, nil
}

func (c *Client) searchPage(ctx context.Context, params url.Values) (*searchResponse, error) {
	var resp searchResponse
	if err := c.getJSON(ctx, "nearbysearch", params, &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case "OK", "ZERO_RESULTS":
		return &resp, nil
	default:
		return nil, fmt.Errorf("nearby search: %w", &APIError{Status: resp.Status, Message: resp.ErrorMessage})
	}
}
