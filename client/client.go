package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator"

	"freight-app/shipment"
)

var validate = validator.New()

// User is the authenticated operator as the API describes it.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == "admin" }

// AuthResponse is the payload of a successful login.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
	ExpiresIn   int    `json:"expires_in"`
}

// APIError is any non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Detail  map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// ActiveSessionError is the login conflict: the account is already signed in
// elsewhere. The caller may retry the same credentials with force=true to
// take the session over.
type ActiveSessionError struct {
	Message   string
	ExpiresAt *time.Time
}

func (e *ActiveSessionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "account is already active on another device"
}

// Config wires a Client. OnUnauthorized fires whenever an authenticated call
// comes back 401, so the owner can drop the session and cached state.
type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	OnUnauthorized func()
}

// Client talks to the freight API. The session (token + user) lives here
// explicitly rather than in process-wide state.
type Client struct {
	baseURL        string
	http           *http.Client
	onUnauthorized func()

	mu    sync.RWMutex
	token string
	user  *User
}

func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:        cfg.BaseURL,
		http:           httpClient,
		onUnauthorized: cfg.OnUnauthorized,
	}
}

// Token returns the current access token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentUser returns the signed-in user, nil when signed out.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// SetSession installs a session obtained elsewhere (a stored token).
func (c *Client) SetSession(token string, user *User) {
	c.mu.Lock()
	c.token = token
	c.user = user
	c.mu.Unlock()
}

// ClearSession forgets the local session without calling the API.
func (c *Client) ClearSession() {
	c.SetSession("", nil)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Force    bool   `json:"force"`
}

// Login authenticates and installs the session on success. When the account
// is active on another device and force is false, the error is an
// *ActiveSessionError carrying the server's message and expiry.
func (c *Client) Login(ctx context.Context, username, password string, force bool) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{username, password, force}, &resp, false)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok {
			if code, _ := apiErr.Detail["code"].(string); code == "active_session" {
				conflict := &ActiveSessionError{Message: apiErr.Message}
				if active, ok := apiErr.Detail["active_session"].(map[string]interface{}); ok {
					if raw, _ := active["expires_at"].(string); raw != "" {
						conflict.ExpiresAt = shipment.ParseTime(raw)
					}
				}
				return nil, conflict
			}
		}
		return nil, err
	}
	c.SetSession(resp.AccessToken, &resp.User)
	return &resp, nil
}

// RegisterRequest creates an operator account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout revokes the session server-side and always clears it locally, even
// when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
	c.ClearSession()
	return err
}

type forgotPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

func (c *Client) ForgotPassword(ctx context.Context, username, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", forgotPasswordRequest{username, newPassword}, nil, false)
}

// ListShipments fetches up to limit raw shipment records, newest first.
func (c *Client) ListShipments(ctx context.Context, limit int) ([]shipment.Raw, error) {
	path := "/shipments/"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []shipment.Raw
	if err := c.do(ctx, http.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateShipmentRequest is the create payload. The date fields are required
// before anything goes on the wire.
type CreateShipmentRequest struct {
	CustomerName           string  `json:"customer_name" validate:"required"`
	CollectionFrom         string  `json:"collection_from" validate:"required"`
	DeliverTo              string  `json:"deliver_to" validate:"required"`
	PickupDate             string  `json:"pickup_date" validate:"required"`
	DeliveryDate           string  `json:"delivery_date" validate:"required"`
	ShipmentType           string  `json:"shipment_type" validate:"required"`
	Status                 string  `json:"status,omitempty"`
	RevenueAmount          float64 `json:"revenue_amount"`
	CostAmount             float64 `json:"cost_amount"`
	DriverCommission       float64 `json:"driver_commission"`
	LorryNo                string  `json:"lorry_no,omitempty"`
	LorryCompany           string  `json:"lorry_company,omitempty"`
	DriverName             string  `json:"driver_name,omitempty"`
	DeliveryOrderNo        string  `json:"delivery_order_no,omitempty"`
	CompanyInvoiceNo       string  `json:"company_invoice_no,omitempty"`
	CreditorInvoiceNo      string  `json:"creditor_invoice_no,omitempty"`
	PodImageURL            string  `json:"pod_image_url,omitempty"`
	CreditorInvoiceFileURL string  `json:"creditor_invoice_file_url,omitempty"`
	Remarks                string  `json:"remarks"`
}

func (c *Client) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*shipment.Raw, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	var out shipment.Raw
	if err := c.do(ctx, http.MethodPost, "/shipments/", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateShipment sends a sparse patch: only the fields in the map travel.
func (c *Client) UpdateShipment(ctx context.Context, id string, patch map[string]interface{}) (*shipment.Raw, error) {
	var out shipment.Raw
	if err := c.do(ctx, http.MethodPatch, "/shipments/"+id, patch, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteShipment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/shipments/"+id, nil, nil, true)
}

// UploadResult is the answer of a successful file upload.
type UploadResult struct {
	URL         string `json:"url"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadFile posts one file as multipart form data.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploads/", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.asAPIError(resp, true)
	}
	var out UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do runs one JSON request. authed attaches the bearer token and arms the
// unauthorized callback; the public auth endpoints pass false so a failed
// login never tears down an existing session.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.asAPIError(resp, authed)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// asAPIError turns an error response into an *APIError, firing the
// unauthorized callback on 401s from authenticated calls.
func (c *Client) asAPIError(resp *http.Response, authed bool) error {
	if resp.StatusCode == http.StatusUnauthorized && authed && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Detail) > 0 {
		var message string
		if json.Unmarshal(envelope.Detail, &message) == nil {
			apiErr.Message = message
		} else {
			var detail map[string]interface{}
			if json.Unmarshal(envelope.Detail, &detail) == nil {
				apiErr.Detail = detail
				if msg, _ := detail["message"].(string); msg != "" {
					apiErr.Message = msg
				}
			}
		}
	}
	if apiErr.Message == "" && len(data) > 0 && data[0] != '{' {
		apiErr.Message = string(bytes.TrimSpace(data))
	}
	return apiErr
}
