// Package storyblok mirrors ingested shows into the Storyblok management API.
package storyblok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/playlist"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/repository"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/configuration"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

const (
	requestTimeout = 60 * time.Second
	maxErrorBody   = 512
)

var ErrNotConfigured = errors.New("storyblok management API not configured")

// APIError is returned for any non-2xx management API response.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storyblok %s failed (HTTP %d): %s", e.Operation, e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	token      string
	spaceID    string
	folderID   int64
	component  string
	httpClient *http.Client
}

func NewClient(cfg configuration.Storyblok, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	component := cfg.Component
	if component == "" {
		component = "show"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.ManagementToken,
		spaceID:    cfg.SpaceID,
		folderID:   cfg.ShowsFolderID,
		component:  component,
		httpClient: httpClient,
	}
}

type trackBlok struct {
	UID       string `json:"_uid"`
	Component string `json:"component"`
	Position  int    `json:"position"`
	Hour      *int   `json:"hour,omitempty"`
	Artist    string `json:"artist"`
	Track     string `json:"track"`
}

type assetField struct {
	FieldType string `json:"fieldtype"`
	Filename  string `json:"filename"`
	Alt       string `json:"alt"`
}

type showContent struct {
	Component     string      `json:"component"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	MixcloudURL   string      `json:"mixcloud_url"`
	MixcloudEmbed string      `json:"mixcloud_embed"`
	PublishedDate string      `json:"published_date"`
	ShowID        int64       `json:"show_id"`
	CoverImage    *assetField `json:"cover_image,omitempty"`
	Tracklist     []trackBlok `json:"tracklist"`
}

type storyPayload struct {
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	ParentID int64       `json:"parent_id,omitempty"`
	Content  showContent `json:"content"`
}

type createStoryRequest struct {
	Story   storyPayload `json:"story"`
	Publish int          `json:"publish"`
}

type createStoryResponse struct {
	Story struct {
		ID       int64  `json:"id"`
		Slug     string `json:"slug"`
		FullSlug string `json:"full_slug"`
	} `json:"story"`
}

type signedAsset struct {
	ID        int64             `json:"id"`
	PostURL   string            `json:"post_url"`
	Fields    map[string]string `json:"fields"`
	PublicURL string            `json:"public_url"`
	PrettyURL string            `json:"pretty_url"`
}

// CreateShowStory uploads the optional cover, then creates and publishes the
// show story in the configured folder. The returned slug is the one Storyblok assigned.
func (c *Client) CreateShowStory(ctx context.Context, input dto.ShowStoryInput, tracks []playlist.ParsedTrack, cover *dto.CoverImage) (*dto.StoryRef, error) {
	if c.token == "" || c.spaceID == "" {
		return nil, ErrNotConfigured
	}
	log := logger.FromContext(ctx).WithField("showId", input.ShowID)

	content := showContent{
		Component:     c.component,
		Title:         input.Title,
		Description:   input.Description,
		MixcloudURL:   input.MixcloudURL,
		MixcloudEmbed: input.MixcloudEmbed,
		PublishedDate: input.PublishedDate.UTC().Format("2006-01-02 15:04"),
		ShowID:        input.ShowID,
		Tracklist:     make([]trackBlok, 0, len(tracks)),
	}
	for _, t := range tracks {
		content.Tracklist = append(content.Tracklist, trackBlok{
			UID:       uuid.NewString(),
			Component: "track",
			Position:  t.Position,
			Hour:      t.Hour,
			Artist:    t.Artist,
			Track:     t.Track,
		})
	}

	if cover != nil {
		assetURL, err := c.uploadAsset(ctx, cover)
		if err != nil {
			return nil, err
		}
		content.CoverImage = &assetField{FieldType: "asset", Filename: assetURL, Alt: input.Title}
		log.WithField("asset", assetURL).Info("Storyblok cover uploaded")
	}

	req := createStoryRequest{
		Story: storyPayload{
			Name:     input.Title,
			Slug:     input.Slug,
			ParentID: c.folderID,
			Content:  content,
		},
		Publish: 1,
	}
	var resp createStoryResponse
	if err := c.doJSON(ctx, "create story", http.MethodPost, c.spaceURL("/stories/"), req, &resp); err != nil {
		return nil, err
	}
	if resp.Story.ID == 0 {
		return nil, fmt.Errorf("storyblok create story: response missing story id")
	}

	slug := resp.Story.Slug
	if slug == "" {
		slug = input.Slug
	}
	log.WithFields(map[string]interface{}{"storyId": resp.Story.ID, "slug": slug}).Info("Storyblok story created")
	return &dto.StoryRef{ID: resp.Story.ID, Slug: slug}, nil
}

// uploadAsset runs the signed upload: request a signature, post the file to
// the returned URL, then finalize.
func (c *Client) uploadAsset(ctx context.Context, cover *dto.CoverImage) (string, error) {
	var signed signedAsset
	body := map[string]interface{}{"filename": cover.Filename}
	if err := c.doJSON(ctx, "sign asset", http.MethodPost, c.spaceURL("/assets/"), body, &signed); err != nil {
		return "", err
	}
	if signed.PostURL == "" {
		return "", fmt.Errorf("storyblok sign asset: response missing post_url")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range signed.Fields {
		if err := form.WriteField(k, v); err != nil {
			return "", err
		}
	}
	part, err := form.CreateFormFile("file", cover.Filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(cover.Data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	uploadReq, err := http.NewRequestWithContext(ctx, http.MethodPost, signed.PostURL, &buf)
	if err != nil {
		return "", err
	}
	uploadReq.Header.Set("Content-Type", form.FormDataContentType())
	if err := c.send(uploadReq, "upload asset", nil); err != nil {
		return "", err
	}

	finishURL := c.spaceURL(fmt.Sprintf("/assets/%d/finish_upload", signed.ID))
	if err := c.doJSON(ctx, "finish asset upload", http.MethodGet, finishURL, nil, nil); err != nil {
		return "", err
	}

	if signed.PublicURL != "" {
		return signed.PublicURL, nil
	}
	return signed.PrettyURL, nil
}

func (c *Client) spaceURL(path string) string {
	return fmt.Sprintf("%s/spaces/%s%s", c.baseURL, c.spaceID, path)
}

func (c *Client) doJSON(ctx context.Context, operation, method, url string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, operation, out)
}

func (c *Client) send(req *http.Request, operation string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storyblok %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("storyblok %s: read body: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("storyblok %s: decode response: %w", operation, err)
	}
	return nil
}

var _ repository.IShowMirror = (*Client)(nil)
