package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/habitual/internal/models"
)

func (c *Client) ShareStats(ctx context.Context) (models.ShareStats, error) {
	var stats models.ShareStats
	err := c.Do(ctx, http.MethodGet, "/share/stats", nil, &stats)
	return stats, err
}

func (c *Client) CreateShareLink(ctx context.Context, req models.ShareRequest) (models.ShareLink, error) {
	var link models.ShareLink
	err := c.Do(ctx, http.MethodPost, "/share/create", req, &link)
	return link, err
}

func (c *Client) ShareLinks(ctx context.Context) ([]models.ShareLink, error) {
	var links []models.ShareLink
	err := c.Do(ctx, http.MethodGet, "/share/user/links", nil, &links)
	return links, err
}

func (c *Client) DeleteShareLink(ctx context.Context, id models.ID) error {
	return c.Do(ctx, http.MethodDelete, "/share/"+url.PathEscape(id.String()), nil, nil)
}

// SharedProgress fetches the public view behind a share link.
func (c *Client) SharedProgress(ctx context.Context, id models.ID) (models.SharedProgress, error) {
	var shared models.SharedProgress
	err := c.Do(ctx, http.MethodGet, "/share/"+url.PathEscape(id.String()), nil, &shared)
	return shared, err
}
