// Package upload talks to the submission endpoints: the multipart upload and
// the folder/file indexes used for review.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/YashubuStudio/Vconf-webgl-glTF/internal/logger"
	"github.com/YashubuStudio/Vconf-webgl-glTF/viewport"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 60 * time.Second
	maxResponse    = 1 << 20

	fallbackServerMessage = "サーバーエラー"
)

var (
	ErrNoModel       = errors.New("folder has no model file")
	ErrInvalidFolder = errors.New("invalid folder name")

	modelFilePattern = regexp.MustCompile(`(?i)\.(glb|gltf|zip)$`)
)

// Result is the endpoint's JSON reply.
type Result struct {
	Success     bool   `json:"success"`
	FolderID    string `json:"folder_id"`
	PresenterID string `json:"presenter_id"`
	Error       string `json:"error,omitempty"`
}

type Client struct {
	Endpoint      string // upload.php
	RegenerateURL string // regenerate.php
	UploadsBase   string // directory holding index.json
	HTTP          *http.Client
}

func NewClient(endpoint, regenerateURL, uploadsBase string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Endpoint:      endpoint,
		RegenerateURL: regenerateURL,
		UploadsBase:   uploadsBase,
		HTTP:          &http.Client{Timeout: timeout},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// Submit sends p as one multipart request. An invalid presenter id is rejected before any request.
func (c *Client) Submit(ctx context.Context, p *Payload) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	body, contentType, err := encodeForm(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	logger.Info("uploading",
		zap.String("folder", p.FolderID),
		zap.String("presenter", p.PresenterID),
		zap.String("model", p.ModelName),
		zap.Int("bytes", body.Len()))

	var res Result
	if err := c.do(req, &res); err != nil {
		logger.Warn("upload failed", zap.Error(err))
		return nil, err
	}
	if res.Error != "" {
		return nil, &ServerError{Status: http.StatusOK, Message: res.Error}
	}
	logger.Info("upload finished", zap.String("folder", res.FolderID), zap.String("presenter", res.PresenterID))
	return &res, nil
}

func encodeForm(p *Payload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range [][2]string{
		{"folder_id", p.FolderID},
		{"presenter_id", p.PresenterID},
		{"passcode", p.Passcode},
	} {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := writeFile(w, "file", p.ModelName, "application/octet-stream", p.Model); err != nil {
		return nil, "", err
	}
	for i, v := range viewport.Views {
		if err := writeFile(w, v.Field, v.Field+".png", "image/png", p.Views[i]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, field, name, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

// do sends req and decodes a JSON reply into v. Error replies become *ServerError,
// everything that prevents reading a reply becomes *NetworkError.
func (c *Client) do(req *http.Request, v interface{}) error {
	op := req.Method + " " + req.URL.Path
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := fallbackServerMessage
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &ServerError{Status: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, v)
}

// Regenerate asks the server to rescan the uploads directory and rewrite its indexes.
func (c *Client) Regenerate(ctx context.Context) ([]string, error) {
	var res struct {
		Success bool     `json:"success"`
		Folders []string `json:"folders"`
		Error   string   `json:"error"`
	}
	if err := c.getJSON(ctx, c.RegenerateURL, &res); err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, &ServerError{Status: http.StatusOK, Message: res.Error}
	}
	return res.Folders, nil
}

// Folders reads the top level index.
func (c *Client) Folders(ctx context.Context) ([]string, error) {
	var folders []string
	if err := c.getJSON(ctx, c.uploadURL("index.json"), &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// Files reads the index of one submission folder.
func (c *Client) Files(ctx context.Context, folder string) ([]string, error) {
	if !validFolderName(folder) {
		return nil, ErrInvalidFolder
	}
	var files []string
	if err := c.getJSON(ctx, c.uploadURL(folder, "index.json"), &files); err != nil {
		return nil, err
	}
	return files, nil
}

// ModelFile returns the first model file name in files.
func ModelFile(files []string) (string, bool) {
	for _, f := range files {
		if modelFilePattern.MatchString(f) {
			return f, true
		}
	}
	return "", false
}

// DownloadModel copies the model file of folder to w and returns its name.
func (c *Client) DownloadModel(ctx context.Context, folder string, w io.Writer) (string, error) {
	files, err := c.Files(ctx, folder)
	if err != nil {
		return "", err
	}
	name, ok := ModelFile(files)
	if !ok {
		return "", ErrNoModel
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uploadURL(folder, name), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &NetworkError{Op: "GET " + name, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServerError{Status: resp.StatusCode, Message: resp.Status}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", &NetworkError{Op: "GET " + name, Err: err}
	}
	return name, nil
}

func (c *Client) uploadURL(elem ...string) string {
	parts := make([]string, len(elem))
	for i, e := range elem {
		parts[i] = url.PathEscape(e)
	}
	return strings.TrimRight(c.UploadsBase, "/") + "/" + strings.Join(parts, "/")
}

func validFolderName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
