package grpc

import (
	"context"

	"github.com/Varun5711/shortlinks/internal/models"
	"github.com/Varun5711/shortlinks/internal/service"
)

// Server exposes service.LinkService over gRPC.
type Server struct {
	svc *service.LinkService
}

func NewServer(svc *service.LinkService) *Server {
	return &Server{svc: svc}
}

func (s *Server) CreateLink(ctx context.Context, req *CreateLinkRequest) (*LinkResponse, error) {
	link, err := s.svc.Create(ctx, req.OwnerID, models.CreateLinkRequest{
		OriginalURL: req.OriginalURL,
		ShortCode:   req.ShortCode,
		Title:       req.Title,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &LinkResponse{Link: link}, nil
}

func (s *Server) UpdateLink(ctx context.Context, req *UpdateLinkRequest) (*LinkResponse, error) {
	link, err := s.svc.Update(ctx, req.OwnerID, models.UpdateLinkRequest{
		LinkID:      req.LinkID,
		OriginalURL: req.OriginalURL,
		Title:       req.Title,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &LinkResponse{Link: link}, nil
}

func (s *Server) DeleteLink(ctx context.Context, req *DeleteLinkRequest) (*DeleteLinkResponse, error) {
	if err := s.svc.Delete(ctx, req.OwnerID, req.LinkID); err != nil {
		return nil, toStatus(err)
	}
	return &DeleteLinkResponse{Success: true}, nil
}

func (s *Server) GetLink(ctx context.Context, req *GetLinkRequest) (*LinkResponse, error) {
	link, err := s.svc.Get(ctx, req.OwnerID, req.LinkID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LinkResponse{Link: link}, nil
}

func (s *Server) ListLinks(ctx context.Context, req *ListLinksRequest) (*ListLinksResponse, error) {
	links, err := s.svc.List(ctx, req.OwnerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListLinksResponse{Links: links, Total: len(links)}, nil
}

func (s *Server) ResolveLink(ctx context.Context, req *ResolveLinkRequest) (*LinkResponse, error) {
	link, err := s.svc.Resolve(ctx, req.ShortCode)
	if err != nil {
		return nil, toStatus(err)
	}
	return &LinkResponse{Link: link}, nil
}

func (s *Server) IncrementClicks(ctx context.Context, req *IncrementClicksRequest) (*IncrementClicksResponse, error) {
	if err := s.svc.RecordClick(ctx, req.ShortCode); err != nil {
		return nil, toStatus(err)
	}
	return &IncrementClicksResponse{}, nil
}
