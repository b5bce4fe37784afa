package twelvelabs

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// Index is a TwelveLabs index.
type Index struct {
	ID        string       `json:"_id"`
	Name      string       `json:"index_name"`
	Models    []IndexModel `json:"models,omitempty"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
}

// IndexModel names a video understanding model and the modalities it indexes.
type IndexModel struct {
	Name    string   `json:"model_name"`
	Options []string `json:"model_options"`
}

type createIndexRequest struct {
	Name   string       `json:"index_name"`
	Models []IndexModel `json:"models"`
}

type listIndexesResponse struct {
	Data []Index `json:"data"`
}

// FindIndex looks up an index by exact name.
func (c *Client) FindIndex(ctx context.Context, name string) (Index, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Index{}, false, errors.New("twelvelabs find index: name required")
	}
	endpoint, err := c.endpoint("indexes")
	if err != nil {
		return Index{}, false, err
	}
	query := url.Values{}
	query.Set("index_name", name)
	var resp listIndexesResponse
	if err := c.getJSON(ctx, "list indexes", endpoint+"?"+query.Encode(), &resp); err != nil {
		return Index{}, false, err
	}
	for _, index := range resp.Data {
		if index.Name == name {
			return index, true, nil
		}
	}
	return Index{}, false, nil
}

// CreateIndex creates an index using one model over the given modalities.
func (c *Client) CreateIndex(ctx context.Context, name, model string, options []string) (Index, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Index{}, errors.New("twelvelabs create index: name required")
	}
	endpoint, err := c.endpoint("indexes")
	if err != nil {
		return Index{}, err
	}
	models := []IndexModel{{Name: model, Options: options}}
	var created Index
	if err := c.postJSON(ctx, "create index", endpoint, createIndexRequest{Name: name, Models: models}, &created); err != nil {
		return Index{}, err
	}
	if strings.TrimSpace(created.ID) == "" {
		return Index{}, errors.New("twelvelabs create index: response missing id")
	}
	created.Name = name
	if len(created.Models) == 0 {
		created.Models = models
	}
	return created, nil
}
