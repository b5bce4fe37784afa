package twelvelabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// SearchRequest describes one semantic search.
type SearchRequest struct {
	IndexID   string
	QueryText string
	// Options are the modalities searched, e.g. visual and audio.
	Options []string
	// VideoIDs restricts the search to these videos when non-empty.
	VideoIDs []string
	// Limit caps the total number of clips returned across pages.
	Limit int
}

// Clip is one search hit.
type Clip struct {
	VideoID      string   `json:"video_id"`
	Score        float64  `json:"score"`
	Confidence   string   `json:"confidence"`
	Start        float64  `json:"start"`
	End          float64  `json:"end"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Modules      []Module `json:"modules,omitempty"`
}

// Module carries per-modality evidence for a clip.
type Module struct {
	Type         string     `json:"type"`
	Visual       []Evidence `json:"visual,omitempty"`
	Conversation []Evidence `json:"conversation,omitempty"`
}

// Evidence is a single textual evidence item.
type Evidence struct {
	Value string `json:"value"`
}

type searchResponse struct {
	Data     []Clip `json:"data"`
	PageInfo struct {
		NextPageToken string `json:"next_page_token"`
	} `json:"page_info"`
}

// Search runs a semantic search and follows pagination until Limit clips are
// collected or the results are exhausted.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]Clip, error) {
	if strings.TrimSpace(req.IndexID) == "" {
		return nil, errors.New("twelvelabs search: index id required")
	}
	if strings.TrimSpace(req.QueryText) == "" {
		return nil, errors.New("twelvelabs search: query text required")
	}
	if req.Limit <= 0 {
		return nil, nil
	}

	first, err := c.searchFirstPage(ctx, req)
	if err != nil {
		return nil, err
	}
	clips := appendLimited(nil, first.Data, req.Limit)
	token := first.PageInfo.NextPageToken
	for len(clips) < req.Limit && token != "" {
		endpoint, err := c.endpoint("search", token)
		if err != nil {
			return nil, err
		}
		var page searchResponse
		if err := c.getJSON(ctx, "search next page", endpoint, &page); err != nil {
			return nil, err
		}
		clips = appendLimited(clips, page.Data, req.Limit)
		token = page.PageInfo.NextPageToken
	}
	return clips, nil
}

func (c *Client) searchFirstPage(ctx context.Context, req SearchRequest) (searchResponse, error) {
	var resp searchResponse
	endpoint, err := c.endpoint("search")
	if err != nil {
		return resp, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := [][2]string{
		{"index_id", req.IndexID},
		{"query_text", req.QueryText},
		{"page_limit", strconv.Itoa(req.Limit)},
	}
	for _, option := range req.Options {
		fields = append(fields, [2]string{"search_options", option})
	}
	if len(req.VideoIDs) > 0 {
		filter, err := json.Marshal(map[string][]string{"id": req.VideoIDs})
		if err != nil {
			return resp, fmt.Errorf("twelvelabs search: encode filter: %w", err)
		}
		fields = append(fields, [2]string{"filter", string(filter)})
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return resp, fmt.Errorf("twelvelabs search: encode form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return resp, fmt.Errorf("twelvelabs search: encode form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return resp, fmt.Errorf("twelvelabs search: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if err := c.doJSON(ctx, "search", c.httpClient, httpReq, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

func appendLimited(dst, src []Clip, limit int) []Clip {
	for _, clip := range src {
		if len(dst) >= limit {
			break
		}
		dst = append(dst, clip)
	}
	return dst
}
