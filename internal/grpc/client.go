package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Varun5711/shortlinks/internal/models"
)

// Client is the typed link-service client used by the gateway and the
// redirect service. Errors come back as service package errors.
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

func NewLinkServiceClient(address string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create link-service client for %s: %w", address, err)
	}

	return &Client{
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
	}, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	err := c.conn.Invoke(ctx, fullMethod(method), req, resp, grpc.CallContentSubtype(CodecName))
	return fromStatus(err)
}

func (c *Client) CreateLink(ctx context.Context, ownerID string, req models.CreateLinkRequest) (*models.Link, error) {
	resp := &LinkResponse{}
	err := c.invoke(ctx, "CreateLink", &CreateLinkRequest{
		OwnerID:     ownerID,
		OriginalURL: req.OriginalURL,
		ShortCode:   req.ShortCode,
		Title:       req.Title,
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp.Link, nil
}

func (c *Client) UpdateLink(ctx context.Context, ownerID string, req models.UpdateLinkRequest) (*models.Link, error) {
	resp := &LinkResponse{}
	err := c.invoke(ctx, "UpdateLink", &UpdateLinkRequest{
		OwnerID:     ownerID,
		LinkID:      req.LinkID,
		OriginalURL: req.OriginalURL,
		Title:       req.Title,
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp.Link, nil
}

func (c *Client) DeleteLink(ctx context.Context, ownerID, linkID string) error {
	return c.invoke(ctx, "DeleteLink", &DeleteLinkRequest{OwnerID: ownerID, LinkID: linkID}, &DeleteLinkResponse{})
}

func (c *Client) GetLink(ctx context.Context, ownerID, linkID string) (*models.Link, error) {
	resp := &LinkResponse{}
	if err := c.invoke(ctx, "GetLink", &GetLinkRequest{OwnerID: ownerID, LinkID: linkID}, resp); err != nil {
		return nil, err
	}
	return resp.Link, nil
}

func (c *Client) ListLinks(ctx context.Context, ownerID string) ([]*models.Link, error) {
	resp := &ListLinksResponse{}
	if err := c.invoke(ctx, "ListLinks", &ListLinksRequest{OwnerID: ownerID}, resp); err != nil {
		return nil, err
	}
	return resp.Links, nil
}

func (c *Client) ResolveLink(ctx context.Context, shortCode string) (*models.Link, error) {
	resp := &LinkResponse{}
	if err := c.invoke(ctx, "ResolveLink", &ResolveLinkRequest{ShortCode: shortCode}, resp); err != nil {
		return nil, err
	}
	return resp.Link, nil
}

// IncrementClicks makes Client usable as a clicks.Sink.
func (c *Client) IncrementClicks(ctx context.Context, shortCode string) error {
	return c.invoke(ctx, "IncrementClicks", &IncrementClicksRequest{ShortCode: shortCode}, &IncrementClicksResponse{})
}

// Ping asks the standard health service whether link-service is serving.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("link-service health check failed: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("link-service is %s", resp.GetStatus())
	}
	return nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
