package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client struct {
	service *sheets.Service
}

// serviceAccount is the subset of a Google service-account key the client needs.
type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// NewClient builds a read-only Sheets client from a service-account JSON
// blob, typically the GOOGLE_CREDENTIALS environment variable. Escaped "\n"
// sequences in the private key are accepted, since single-line env values
// usually carry them that way.
func NewClient(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*Client, error) {
	cfg, err := jwtConfigFromJSON(credentialsJSON)
	if err != nil {
		return nil, err
	}

	opts = append([]option.ClientOption{option.WithTokenSource(cfg.TokenSource(ctx))}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

func jwtConfigFromJSON(credentialsJSON []byte) (*jwt.Config, error) {
	if len(strings.TrimSpace(string(credentialsJSON))) == 0 {
		return nil, errors.New("google credentials are empty")
	}

	var sa serviceAccount
	if err := json.Unmarshal(credentialsJSON, &sa); err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}
	if sa.ClientEmail == "" {
		return nil, errors.New("google credentials: client_email is missing")
	}
	if sa.PrivateKey == "" {
		return nil, errors.New("google credentials: private_key is missing")
	}

	tokenURL := sa.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}

	return &jwt.Config{
		Email:      sa.ClientEmail,
		PrivateKey: []byte(strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")),
		Scopes:     []string{sheets.SpreadsheetsReadonlyScope},
		TokenURL:   tokenURL,
	}, nil
}

func (c *Client) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, range_).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	return resp.Values, nil
}
