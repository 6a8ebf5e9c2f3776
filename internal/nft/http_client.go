package nft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/pkg/retry"
	"github.com/jrbailey528/solanasign/pkg/telemetry"
)

// ClientConfig holds HTTP gateway client settings
type ClientConfig struct {
	BaseURL        string
	CreatorAddress string
	RequestTimeout time.Duration
	// MaxRetries bounds mint retries. The budget is deliberately small:
	// a mint is not idempotent on the gateway side.
	MaxRetries int
}

// HTTPClient implements Gateway over the issuance service's REST API
type HTTPClient struct {
	baseURL        string
	creatorAddress string
	client         *http.Client
	retrier        *retry.Retrier
}

// NewHTTPClient creates a new HTTPClient
func NewHTTPClient(cfg *ClientConfig) *HTTPClient {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &HTTPClient{
		baseURL:        cfg.BaseURL,
		creatorAddress: cfg.CreatorAddress,
		client:         &http.Client{Timeout: timeout},
		retrier: retry.New(&retry.Config{
			MaxRetries:      maxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		}),
	}
}

type mintRequest struct {
	Metadata             *domain.TicketMetadata `json:"metadata"`
	CreatorAddress       string                 `json:"creator_address,omitempty"`
	SellerFeeBasisPoints int                    `json:"seller_fee_basis_points"`
	MaxSupply            int                    `json:"max_supply"`
}

type ownerResponse struct {
	WalletAddress string `json:"wallet_address"`
}

// Mint requests a new on-chain token for the given metadata
func (c *HTTPClient) Mint(ctx context.Context, metadata *domain.TicketMetadata) (*MintResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "nft.gateway.mint")
	defer span.End()

	span.SetAttributes(attribute.String("metadata_name", metadata.Name))

	body, err := json.Marshal(&mintRequest{
		Metadata:             metadata,
		CreatorAddress:       c.creatorAddress,
		SellerFeeBasisPoints: metadata.SellerFeeBasisPoints,
		MaxSupply:            metadata.MaxSupply,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mint request: %w", err)
	}

	var result MintResult
	err = c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.post(ctx, "/mint", body, &result)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %s", domain.ErrMintFailed, err)
	}

	span.SetAttributes(attribute.String("mint_address", result.MintAddress))
	span.SetStatus(codes.Ok, "")
	return &result, nil
}

// FindOwnerByMint resolves the current on-chain holder of a mint
func (c *HTTPClient) FindOwnerByMint(ctx context.Context, mintAddress string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "nft.gateway.find_owner")
	defer span.End()

	span.SetAttributes(attribute.String("mint_address", mintAddress))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/owners/"+mintAddress, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build owner request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("owner lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("owner lookup returned status %d", resp.StatusCode)
	}

	var owner ownerResponse
	if err := json.NewDecoder(resp.Body).Decode(&owner); err != nil {
		return "", fmt.Errorf("failed to decode owner response: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return owner.WalletAddress, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		// Client errors never succeed on retry
		return retry.Permanent(fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("failed to decode gateway response: %w", err))
	}
	return nil
}
