// Package client talks to the workspace REST API. It implements the folder
// source and file uploader the ingestion coordinator needs, so a local
// directory can be ingested against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/workspace"
	wsSvc "cirrus/internal/domain/services/workspace"
)

// Client is a REST client bound to one bearer token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client. A nil httpClient uses http.DefaultClient.
func New(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

var (
	_ wsSvc.FolderSource = (*Client)(nil)
	_ wsSvc.FileUploader = (*Client)(nil)
)

// ListFolders lists live child folders of parentID (nil = root)
func (c *Client) ListFolders(ctx context.Context, parentID *string) ([]models.Folder, error) {
	path := "/folders"
	if parentID != nil {
		path += "?parent_id=" + url.QueryEscape(*parentID)
	}

	var resp struct {
		Folders []models.Folder `json:"folders"`
	}
	if err := c.do(ctx, "list folders", http.MethodGet, path, nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// ListFiles lists live files in folderID (nil = root)
func (c *Client) ListFiles(ctx context.Context, folderID *string) ([]models.File, error) {
	var resp struct {
		Files []models.File `json:"files"`
	}
	path := "/folders/" + url.PathEscape(scopeID(folderID)) + "/files"
	if err := c.do(ctx, "list files", http.MethodGet, path, nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// FindChildFolderByName implements FolderSource
func (c *Client) FindChildFolderByName(ctx context.Context, parentID *string, name string) (*models.Folder, error) {
	folders, err := c.ListFolders(ctx, parentID)
	if err != nil {
		return nil, err
	}
	for i := range folders {
		if folders[i].Name == name {
			return &folders[i], nil
		}
	}
	return nil, nil
}

// CreateFolder implements FolderSource
func (c *Client) CreateFolder(ctx context.Context, parentID *string, name string) (*models.Folder, error) {
	body, err := json.Marshal(wsSvc.CreateFolderRequest{Name: name, ParentID: parentID})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var resp struct {
		Folder *models.Folder `json:"folder"`
	}
	if err := c.do(ctx, "create folder", http.MethodPost, "/folders", bytes.NewReader(body), "application/json", &resp); err != nil {
		return nil, err
	}
	return resp.Folder, nil
}

// FindFileByName implements FileUploader. It returns the oldest live file
// with exactly this name.
func (c *Client) FindFileByName(ctx context.Context, folderID *string, name string) (*models.File, error) {
	files, err := c.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var found *models.File
	for i := range files {
		if files[i].Name == name && (found == nil || files[i].CreatedAt.Before(found.CreatedAt)) {
			found = &files[i]
		}
	}
	return found, nil
}

// UploadFile implements FileUploader. The content is streamed as multipart.
func (c *Client) UploadFile(ctx context.Context, folderID *string, name string, file wsSvc.IngestFile) (*models.File, error) {
	content, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.RelativePath, err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer content.Close()
		pw.CloseWithError(writeUpload(mw, folderID, name, file.ContentType, content))
	}()

	var resp struct {
		File *models.File `json:"file"`
	}
	if err := c.do(ctx, "upload file", http.MethodPost, "/files/upload", pr, mw.FormDataContentType(), &resp); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return resp.File, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeUpload(mw *multipart.Writer, folderID *string, name, contentType string, content io.Reader) error {
	if folderID != nil {
		if err := mw.WriteField("folder_id", *folderID); err != nil {
			return err
		}
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

// DownloadURL returns a time-limited download URL for a file
func (c *Client) DownloadURL(ctx context.Context, fileID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, "download", http.MethodGet, "/files/"+url.PathEscape(fileID)+"/download", nil, "", &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// GetFolder fetches a visible folder
func (c *Client) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	var resp struct {
		Folder *models.Folder `json:"folder"`
	}
	if err := c.do(ctx, "get folder", http.MethodGet, "/folders/"+url.PathEscape(id), nil, "", &resp); err != nil {
		return nil, err
	}
	return resp.Folder, nil
}

func scopeID(id *string) string {
	if id == nil {
		return "root"
	}
	return *id
}

// do sends one request and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.logger.Debug("request failed", "op", op, "status", resp.StatusCode, "error", apiErr.Message)
		if resp.StatusCode >= http.StatusInternalServerError {
			return &domain.TransportError{Op: op, Err: apiErr}
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
