package grpc

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Varun5711/shortlinks/internal/service"
	"github.com/Varun5711/shortlinks/internal/validation"
)

const (
	errorDomain          = "shortlinks"
	reasonCodeTaken      = "SHORT_CODE_TAKEN"
	reasonCodeExhausted  = "CODE_GENERATION_EXHAUSTED"
	metadataShortCode    = "short_code"
	metadataSuggestions  = "suggestions"
	internalErrorMessage = "internal error"
)

// toStatus maps the service error taxonomy onto gRPC status codes.
// Unexpected errors lose their text so internals never reach a caller.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	var verr *validation.Error
	var taken *service.CodeTakenError

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())

	case errors.As(err, &verr):
		br := &errdetails.BadRequest{}
		for _, f := range verr.Fields {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       f.Field,
				Description: f.Message,
			})
		}
		return withDetails(codes.InvalidArgument, verr.Error(), br)

	case errors.As(err, &taken):
		info := &errdetails.ErrorInfo{
			Reason: reasonCodeTaken,
			Domain: errorDomain,
			Metadata: map[string]string{
				metadataShortCode:   taken.Code,
				metadataSuggestions: strings.Join(taken.Suggestions, ","),
			},
		}
		return withDetails(codes.AlreadyExists, taken.Error(), info)

	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, service.ErrNotFound.Error())

	case errors.Is(err, service.ErrCodeGenerationExhausted):
		info := &errdetails.ErrorInfo{Reason: reasonCodeExhausted, Domain: errorDomain}
		return withDetails(codes.Unavailable, service.ErrCodeGenerationExhausted.Error(), info)

	default:
		return status.Error(codes.Internal, internalErrorMessage)
	}
}

func withDetails(code codes.Code, msg string, details ...any) error {
	st := status.New(code, msg)
	for _, d := range details {
		switch d := d.(type) {
		case *errdetails.BadRequest:
			if withD, err := st.WithDetails(d); err == nil {
				st = withD
			}
		case *errdetails.ErrorInfo:
			if withD, err := st.WithDetails(d); err == nil {
				st = withD
			}
		}
	}
	return st.Err()
}

// fromStatus turns a status received by a client back into service errors,
// so callers on either side of the wire handle one taxonomy.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return service.ErrUnauthenticated

	case codes.InvalidArgument:
		verr := &validation.Error{}
		for _, d := range st.Details() {
			if br, ok := d.(*errdetails.BadRequest); ok {
				for _, v := range br.GetFieldViolations() {
					verr.Fields = append(verr.Fields, validation.FieldError{Field: v.GetField(), Message: v.GetDescription()})
				}
			}
		}
		if len(verr.Fields) == 0 {
			verr.Fields = append(verr.Fields, validation.FieldError{Message: st.Message()})
		}
		return verr

	case codes.AlreadyExists:
		if info := errorInfo(st, reasonCodeTaken); info != nil {
			taken := &service.CodeTakenError{Code: info.GetMetadata()[metadataShortCode]}
			if s := info.GetMetadata()[metadataSuggestions]; s != "" {
				taken.Suggestions = strings.Split(s, ",")
			}
			return taken
		}
		return service.ErrCodeTaken

	case codes.NotFound:
		return service.ErrNotFound

	case codes.Unavailable:
		if errorInfo(st, reasonCodeExhausted) != nil {
			return service.ErrCodeGenerationExhausted
		}
		return fmt.Errorf("link-service unavailable: %w", err)

	default:
		return fmt.Errorf("link-service: %w", err)
	}
}

func errorInfo(st *status.Status, reason string) *errdetails.ErrorInfo {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetReason() == reason {
			return info
		}
	}
	return nil
}
