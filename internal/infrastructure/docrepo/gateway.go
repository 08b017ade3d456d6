// Package docrepo talks to the external document repository that stores
// template files. Files are addressed by an opaque id.
package docrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
	"github.com/commhub/backend/internal/domain/shared"
	"github.com/commhub/backend/internal/infrastructure/outbound"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// maxFileSize bounds downloaded template files
const maxFileSize = 20 << 20

var fileRefPattern = regexp.MustCompile(`^[A-Za-z0-9!_.-]{1,128}$`)

// ErrFileNotFound is returned when the repository has no file for a reference
var ErrFileNotFound = shared.NotFound("Template file not found")

// Config holds document repository settings
type Config struct {
	BaseURL      string // e.g. https://graph.microsoft.com/v1.0
	DriveID      string
	FolderID     string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	AllowedHosts []string
	Timeout      time.Duration
}

// Gateway fetches, creates and replaces files in a drive-style repository
type Gateway struct {
	baseURL  *url.URL
	driveID  string
	folderID string
	tokens   *TokenCache
	client   *outbound.Client
	logger   *zap.Logger
}

// Option configures a Gateway
type Option func(*Gateway)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithTokenCache replaces the credential cache
func WithTokenCache(tokens *TokenCache) Option {
	return func(g *Gateway) {
		g.tokens = tokens
	}
}

// WithHTTPClient replaces the guarded HTTP client
func WithHTTPClient(client *outbound.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// NewGateway creates a gateway. Credentials are obtained with the OAuth2
// client credentials grant unless a token cache is supplied.
func NewGateway(cfg Config, opts ...Option) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("document repository base URL is required")
	}
	if cfg.DriveID == "" {
		return nil, errors.New("document repository drive ID is required")
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid document repository base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	allowed := cfg.AllowedHosts
	if len(allowed) == 0 {
		allowed = []string{base.Hostname()}
		if tu, err := url.Parse(cfg.TokenURL); err == nil && tu.Hostname() != "" {
			allowed = append(allowed, tu.Hostname())
		}
	}

	g := &Gateway{
		baseURL:  base,
		driveID:  cfg.DriveID,
		folderID: cfg.FolderID,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		g.client = outbound.NewClient("document_repository", outbound.NewGuard(allowed...), cfg.Timeout, outbound.WithLogger(g.logger))
	}
	if g.tokens == nil {
		if err := g.client.Guard().Check(cfg.TokenURL); err != nil {
			return nil, fmt.Errorf("token URL rejected: %w", errors.Unwrap(err))
		}
		g.tokens = NewTokenCache(ClientCredentials(cfg))
	}
	if err := g.client.Guard().CheckURL(base); err != nil {
		return nil, fmt.Errorf("base URL rejected: %w", errors.Unwrap(err))
	}
	return g, nil
}

// ClientCredentials fetches repository tokens with the OAuth2 client credentials grant
func ClientCredentials(cfg Config) TokenFetcher {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	return TokenFetcherFunc(func(ctx context.Context) (*oauth2.Token, error) {
		return cc.Token(context.WithValue(ctx, oauth2.HTTPClient, hc))
	})
}

// ValidateFileRef checks that a file reference is a single safe path segment
func ValidateFileRef(ref string) error {
	if !fileRefPattern.MatchString(ref) || ref == "." || ref == ".." {
		return shared.NewDomainError("INVALID_FILE_REF", "Invalid template file reference")
	}
	return nil
}

// Fetch downloads the content of a file
func (g *Gateway) Fetch(ctx context.Context, fileRef string) ([]byte, error) {
	if err := ValidateFileRef(fileRef); err != nil {
		return nil, err
	}
	resp, err := g.do(ctx, http.MethodGet, g.itemURL(fileRef, "content"), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := g.checkStatus(resp, "fetch", fileRef); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, g.unavailable("fetch", fileRef, fmt.Errorf("read body: %w", err))
	}
	if len(data) > maxFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "Template file exceeds the maximum size")
	}
	return data, nil
}

// Create uploads a new file into the configured folder and returns its id
func (g *Gateway) Create(ctx context.Context, fileName string, content []byte) (string, error) {
	name := safeFileName(fileName)
	folder := g.folderID
	if folder == "" {
		folder = "root"
	}
	target := g.driveURL("items", folder+":", name+":", "content")
	q := target.Query()
	q.Set("@microsoft.graph.conflictBehavior", "rename")
	target.RawQuery = q.Encode()

	resp, err := g.do(ctx, http.MethodPut, target, content)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := g.checkStatus(resp, "create", name); err != nil {
		return "", err
	}
	var item struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return "", g.unavailable("create", name, fmt.Errorf("decode response: %w", err))
	}
	if ValidateFileRef(item.ID) != nil {
		return "", g.unavailable("create", name, fmt.Errorf("repository returned unusable id %q", item.ID))
	}

	g.logger.Info("Template file created",
		zap.String("file_ref", item.ID),
		zap.String("file_name", name),
		zap.Int("size", len(content)),
	)
	return item.ID, nil
}

// Replace overwrites the content of an existing file. The id is unchanged.
func (g *Gateway) Replace(ctx context.Context, fileRef string, content []byte) error {
	if err := ValidateFileRef(fileRef); err != nil {
		return err
	}
	resp, err := g.do(ctx, http.MethodPut, g.itemURL(fileRef, "content"), content)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if err := g.checkStatus(resp, "replace", fileRef); err != nil {
		return err
	}
	g.logger.Info("Template file replaced", zap.String("file_ref", fileRef), zap.Int("size", len(content)))
	return nil
}

func (g *Gateway) do(ctx context.Context, method string, target *url.URL, body []byte) (*http.Response, error) {
	token, err := g.tokens.AccessToken(ctx)
	if err != nil {
		return nil, g.unavailable("token", "", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, g.unavailable("build request", "", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, communication.ErrSsrfBlocked) {
			return nil, err
		}
		return nil, g.unavailable(method, target.Path, err)
	}
	return resp, nil
}

func (g *Gateway) checkStatus(resp *http.Response, op, ref string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		g.logger.Warn("Template file not found in repository", zap.String("op", op), zap.String("file_ref", ref))
		return ErrFileNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		g.tokens.Invalidate()
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return g.unavailable(op, ref, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
}

func (g *Gateway) unavailable(op, ref string, cause error) error {
	g.logger.Error("Document repository call failed",
		zap.String("op", op),
		zap.String("file_ref", ref),
		zap.Error(cause),
	)
	return communication.Failure(communication.ErrRepositoryUnavailable, cause)
}

func (g *Gateway) itemURL(fileRef string, suffix ...string) *url.URL {
	return g.driveURL(append([]string{"items", fileRef}, suffix...)...)
}

func (g *Gateway) driveURL(segments ...string) *url.URL {
	u := *g.baseURL
	escaped := make([]string, 0, len(segments)+2)
	escaped = append(escaped, "drives", url.PathEscape(g.driveID))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.RawPath = u.EscapedPath() + "/" + strings.Join(escaped, "/")
	unescaped, err := url.PathUnescape(u.RawPath)
	if err == nil {
		u.Path = unescaped
	}
	return &u
}

// safeFileName keeps the base name of an upload and forces the .docx extension
func safeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	clean := strings.Trim(b.String(), ". ")
	if clean == "" {
		clean = "template"
	}
	if !strings.HasSuffix(strings.ToLower(clean), ".docx") {
		clean += ".docx"
	}
	return clean
}
