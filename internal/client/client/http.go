package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/common"
	"github.com/dmitrijs2005/qaforum/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

// HTTPClient talks to the forum REST API.
type HTTPClient struct {
	baseURL *url.URL
	base    http.RoundTripper
	timeout time.Duration
	creds   CredentialSource
	limiter *rate.Limiter
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithTransport replaces the underlying round tripper (http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.base = rt }
}

// WithTimeout bounds every request, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithRateLimit caps outgoing requests; rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a client for the API rooted at baseURL. creds supplies
// the credential for authenticated calls.
func NewHTTPClient(baseURL string, creds CredentialSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}

	c := &HTTPClient{
		baseURL: u,
		base:    http.DefaultTransport,
		timeout: 10 * time.Second,
		creds:   creds,
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// credentialTokenSource adapts a CredentialSource to oauth2 so the bearer
// header is attached by oauth2.Transport.
type credentialTokenSource struct {
	src CredentialSource
}

func (s credentialTokenSource) Token() (*oauth2.Token, error) {
	if s.src == nil {
		return nil, ErrNoCredential
	}
	tok, ok := s.src.Credential()
	if !ok || tok == "" {
		return nil, ErrNoCredential
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

func (c *HTTPClient) anonymous() *http.Client {
	return &http.Client{Transport: c.base, Timeout: c.timeout}
}

// authenticated returns an http.Client that attaches the token from src to
// every request. It is the only place credentials are put on the wire.
func (c *HTTPClient) authenticated(src oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.base},
		Timeout:   c.timeout,
	}
}

func (c *HTTPClient) session() *http.Client {
	return c.authenticated(credentialTokenSource{src: c.creds})
}

func (c *HTTPClient) do(ctx context.Context, hc *http.Client, method string, path []string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	endpoint := c.baseURL.JoinPath(path...).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return c.mapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "api call",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"elapsed", time.Since(started))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return c.mapTransportError(ctx, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return mapStatus(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *HTTPClient) mapTransportError(ctx context.Context, err error) error {
	if errors.Is(err, ErrNoCredential) {
		return ErrNoCredential
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

type messageBody struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func mapStatus(status int, data []byte) error {
	var m messageBody
	_ = json.Unmarshal(data, &m)
	msg := m.Msg
	if msg == "" {
		msg = m.Message
	}
	return &ServerError{StatusCode: status, Message: strings.TrimSpace(msg)}
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func (c *HTTPClient) CheckUser(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrNoCredential
	}

	var resp struct {
		User *models.Identity `json:"user"`
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	if err := c.do(ctx, c.authenticated(src), http.MethodGet, []string{"api", "user", "checkUser"}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.Username == "" {
		return nil, fmt.Errorf("%w: identity missing", ErrMalformedResponse)
	}
	return resp.User, nil
}

type tokenResponse struct {
	Token string `json:"token"`
	Msg   string `json:"msg"`
}

func (c *HTTPClient) SignIn(ctx context.Context, creds models.Credentials) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, c.anonymous(), http.MethodPost, []string{"api", "user", "signin"}, creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: token missing", ErrMalformedResponse)
	}
	return resp.Token, nil
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, c.anonymous(), http.MethodPost, []string{"api", "user", "register"}, reg, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: token missing", ErrMalformedResponse)
	}
	return resp.Token, nil
}

func (c *HTTPClient) ListQuestions(ctx context.Context) ([]models.Question, error) {
	var resp struct {
		Questions *[]models.Question `json:"questions"`
	}
	if err := c.do(ctx, c.anonymous(), http.MethodGet, []string{"api", "question", "get"}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Questions == nil {
		return nil, fmt.Errorf("%w: questions missing", ErrMalformedResponse)
	}
	return *resp.Questions, nil
}

func (c *HTTPClient) GetQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	var resp struct {
		Question *models.Question `json:"question"`
	}
	if err := c.do(ctx, c.anonymous(), http.MethodGet, []string{"api", "question", id(questionID)}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Question == nil {
		return nil, fmt.Errorf("%w: question missing", ErrMalformedResponse)
	}
	return resp.Question, nil
}

type postQuestionBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type editQuestionBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

func (c *HTTPClient) PostQuestion(ctx context.Context, p models.QuestionPayload) error {
	body := postQuestionBody{Title: p.Title, Description: p.Description}
	if len(p.Tags) > 0 {
		body.Tags = p.Tags
	}
	return c.do(ctx, c.session(), http.MethodPost, []string{"api", "question", "post"}, body, nil)
}

func (c *HTTPClient) EditQuestion(ctx context.Context, questionID int64, p models.QuestionPayload) error {
	body := editQuestionBody{Title: p.Title, Description: p.Description, Tag: strings.Join(p.Tags, ",")}
	return c.do(ctx, c.session(), http.MethodPut, []string{"api", "question", id(questionID)}, body, nil)
}

func (c *HTTPClient) DeleteQuestion(ctx context.Context, questionID int64) error {
	return c.do(ctx, c.session(), http.MethodDelete, []string{"api", "question", id(questionID)}, nil, nil)
}

func (c *HTTPClient) ListAnswers(ctx context.Context, questionID int64) ([]models.Answer, error) {
	var resp struct {
		Answers *[]models.Answer `json:"answers"`
		Msg     string           `json:"msg"`
	}
	if err := c.do(ctx, c.anonymous(), http.MethodGet, []string{"api", "answer", id(questionID)}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Answers == nil {
		if resp.Msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, resp.Msg)
		}
		return nil, fmt.Errorf("%w: answers missing", ErrMalformedResponse)
	}
	return *resp.Answers, nil
}

func (c *HTTPClient) GetAnswer(ctx context.Context, answerID int64) (*models.Answer, error) {
	var resp struct {
		Answer *models.Answer `json:"answer"`
	}
	if err := c.do(ctx, c.session(), http.MethodGet, []string{"api", "answer", "single", id(answerID)}, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Answer == nil {
		return nil, fmt.Errorf("%w: answer missing", ErrMalformedResponse)
	}
	return resp.Answer, nil
}

type postAnswerBody struct {
	QuestionID int64  `json:"questionid"`
	Answer     string `json:"answer"`
}

type editAnswerBody struct {
	Answer string `json:"answer"`
}

func (c *HTTPClient) PostAnswer(ctx context.Context, p models.AnswerPayload) error {
	body := postAnswerBody{QuestionID: p.QuestionID, Answer: p.Text}
	return c.do(ctx, c.session(), http.MethodPost, []string{"api", "answer"}, body, nil)
}

func (c *HTTPClient) EditAnswer(ctx context.Context, answerID int64, p models.AnswerPayload) error {
	return c.do(ctx, c.session(), http.MethodPut, []string{"api", "answer", id(answerID)}, editAnswerBody{Answer: p.Text}, nil)
}

func (c *HTTPClient) DeleteAnswer(ctx context.Context, answerID int64) error {
	return c.do(ctx, c.session(), http.MethodDelete, []string{"api", "answer", id(answerID)}, nil, nil)
}
