package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"fitmeal/platform/internal/domain"
)

// User mirrors the server's user representation.
type User struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	CreatedAt         time.Time   `json:"createdAt"`
	CustomerIDs       []string    `json:"customerIds,omitempty"`
	TrainerID         *string     `json:"trainerId,omitempty"`
	TrainerAssignedAt *time.Time  `json:"trainerAssignedAt,omitempty"`
	ProfileImageURL   string      `json:"profileImageUrl,omitempty"`
}

type loginResponse struct {
	tokenPair
	User User `json:"user"`
}

// Login authenticates and stores the new session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, Request{Method: http.MethodPost, Path: "/api/auth/login", Body: body, Header: jsonHeader()}, "")
	if err != nil {
		return nil, err
	}
	if _, err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out loginResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	err = c.store.Save(Tokens{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		Role:         out.User.Role,
		Email:        out.User.Email,
	})
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout revokes the refresh token on the server and clears the local
// session. The local session is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	tokens, err := c.store.Load()
	if err != nil {
		return err
	}
	defer func() { _ = c.store.Clear() }()
	if tokens.RefreshToken == "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"refreshToken": tokens.RefreshToken})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, Request{Method: http.MethodPost, Path: "/api/auth/logout", Body: body, Header: jsonHeader()}, tokens.AccessToken)
	if err != nil {
		return err
	}
	_, err = checkStatus(resp)
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRecipe fetches one recipe through the endpoint matching the stored role.
func (c *Client) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	tokens, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	var r domain.Recipe
	if err := c.doJSON(ctx, http.MethodGet, RecipePath(tokens.Role, id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := c.doJSON(ctx, http.MethodGet, "/api/trainer/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AssignMealPlan(ctx context.Context, customerID string, plan domain.MealPlan, notes string) (*domain.CustomerMealPlan, error) {
	in := struct {
		MealPlanData domain.MealPlan `json:"mealPlanData"`
		Notes        string          `json:"notes,omitempty"`
	}{plan, notes}

	var out domain.CustomerMealPlan
	path := "/api/trainer/customers/" + url.PathEscape(customerID) + "/meal-plans"
	if err := c.doJSON(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadProfileImage validates the image locally and only then uploads it.
// It returns the new image URL.
func (c *Client) UploadProfileImage(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if err := domain.ValidateImage(contentType, int64(len(data))); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/profile/upload-image",
		Body:   buf.Bytes(),
		Header: http.Header{"Content-Type": []string{mw.FormDataContentType()}},
	})
	if err != nil {
		return "", err
	}
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	return out.ImageURL, nil
}

// ExportRequest selects either a meal plan or a set of recipes.
type ExportRequest struct {
	MealPlanID string   `json:"mealPlanId,omitempty"`
	RecipeIDs  []string `json:"recipeIds,omitempty"`
}

// PDFFile is a downloaded export.
type PDFFile struct {
	Filename string
	Data     []byte
}

func (c *Client) ExportPDF(ctx context.Context, in ExportRequest) (*PDFFile, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/pdf/export", Body: body, Header: jsonHeader()})
	if err != nil {
		return nil, err
	}
	return &PDFFile{
		Filename: attachmentFilename(resp.Header.Get("Content-Disposition"), "export.pdf"),
		Data:     resp.Body,
	}, nil
}

func attachmentFilename(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}
	return params["filename"]
}
