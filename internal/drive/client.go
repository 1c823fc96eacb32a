// Package drive resolves logical ward file references to local filesystem
// paths, downloading from a Google Drive folder and caching the blobs on
// disk. The contract consumed by the rest of the application is only
// LocalPath and ListWardFiles; Drive failures degrade to "no ward data" at
// the call sites rather than crashing anything.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"ward-notes-server/internal/config"
	"ward-notes-server/internal/wards"
)

// CacheTTL is how long a downloaded PDF is served before being re-fetched.
const CacheTTL = 24 * time.Hour

// API is the slice of the Drive service the client needs. Tests substitute
// fakes.
type API interface {
	List(ctx context.Context, folderID string) ([]wards.RemoteFile, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Client caches Drive blobs under cacheDir with a mtime-based TTL.
type Client struct {
	api      API
	cacheDir string
	ttl      time.Duration
	log      *zap.Logger
}

// NewClient builds a Client against the real Drive API using a stored OAuth
// token. It fails when the token file is absent; callers treat that as
// "Drive not configured" and serve local PDFs.
func NewClient(ctx context.Context, cfg config.GoogleDriveConfig, dataDir string, log *zap.Logger) (*Client, error) {
	raw, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("reading drive token %s: %w", cfg.TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("decoding drive token: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gdrive.DriveReadonlyScope},
	}
	service, err := gdrive.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}

	return newClient(driveAPI{service}, filepath.Join(dataDir, "pdf_cache"), log), nil
}

func newClient(api API, cacheDir string, log *zap.Logger) *Client {
	return &Client{api: api, cacheDir: cacheDir, ttl: CacheTTL, log: log}
}

// LocalPath returns a local file for the given Drive file, downloading when
// the cached copy is absent or older than the TTL.
func (c *Client) LocalPath(ctx context.Context, fileID, filename string) (string, error) {
	cached := filepath.Join(c.cacheDir, fileID+"_"+filename)

	if info, err := os.Stat(cached); err == nil {
		if time.Since(info.ModTime()) < c.ttl {
			return cached, nil
		}
	}

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache dir: %w", err)
	}

	body, err := c.api.Download(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", filename, err)
	}
	defer body.Close()

	tmp, err := os.CreateTemp(c.cacheDir, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		return "", err
	}

	c.log.Info("cached drive file", zap.String("file", filename), zap.String("path", cached))
	return cached, nil
}

// ListWardFiles lists the folder and keeps only ward record PDFs. It
// implements wards.FileLister.
func (c *Client) ListWardFiles(ctx context.Context, folderID string) ([]wards.RemoteFile, error) {
	files, err := c.api.List(ctx, folderID)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if strings.HasPrefix(f.Name, "ward_") && strings.HasSuffix(f.Name, "_records.pdf") {
			out = append(out, f)
		}
	}
	return out, nil
}

// driveAPI adapts *gdrive.Service to the API interface.
type driveAPI struct {
	service *gdrive.Service
}

func (d driveAPI) List(ctx context.Context, folderID string) ([]wards.RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='application/pdf' and trashed=false", folderID)
	var out []wards.RemoteFile
	pageToken := ""
	for {
		call := d.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, f := range list.Files {
			out = append(out, wards.RemoteFile{ID: f.Id, Name: f.Name})
		}
		if list.NextPageToken == "" {
			return out, nil
		}
		pageToken = list.NextPageToken
	}
}

func (d driveAPI) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := d.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
